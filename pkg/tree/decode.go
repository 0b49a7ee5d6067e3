package tree

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Open reads a live set from disk. Gzip-compressed and plain XML files are both accepted.
func Open(name string) (*Node, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	defer f.Close()

	root, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return root, nil
}

// Decode parses a (possibly gzip-compressed) XML document and returns its root element.
func Decode(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "peek")
	}

	var src io.Reader = br
	if len(head) == 2 && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer zr.Close()
		src = zr
	}

	dec := xml.NewDecoder(src)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				n.SetAttr(a.Name.Local, a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("xml: empty document")
	}
	return root, nil
}
