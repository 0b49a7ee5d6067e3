package tree

import (
	"strconv"
	"strings"
)

// Value reads <name Value="..."/> below n.
func Value(n *Node, name, fallback string) string {
	return n.Child(name).Attr("Value", fallback)
}

// Param reads <name><Manual Value="..."/></name> below n, the shape of every
// automatable parameter in a live set.
func Param(n *Node, name, fallback string) string {
	return n.Path(name, "Manual").Attr("Value", fallback)
}

func ParseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}

func ParseInt(s string, fallback int64) int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// some writers emit integral values as "3.0"
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return fallback
		}
		return int64(f)
	}
	return i
}

func ParseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return fallback
}

func Float(n *Node, name string, fallback float64) float64 {
	return ParseFloat(Value(n, name, ""), fallback)
}

func Int(n *Node, name string, fallback int64) int64 {
	return ParseInt(Value(n, name, ""), fallback)
}

func Bool(n *Node, name string, fallback bool) bool {
	return ParseBool(Value(n, name, ""), fallback)
}

func ParamFloat(n *Node, name string, fallback float64) float64 {
	return ParseFloat(Param(n, name, ""), fallback)
}

func ParamInt(n *Node, name string, fallback int64) int64 {
	return ParseInt(Param(n, name, ""), fallback)
}

func ParamBool(n *Node, name string, fallback bool) bool {
	return ParseBool(Param(n, name, ""), fallback)
}

func AttrFloat(n *Node, name string, fallback float64) float64 {
	return ParseFloat(n.Attr(name, ""), fallback)
}

func AttrInt(n *Node, name string, fallback int64) int64 {
	return ParseInt(n.Attr(name, ""), fallback)
}

func AttrBool(n *Node, name string, fallback bool) bool {
	return ParseBool(n.Attr(name, ""), fallback)
}
