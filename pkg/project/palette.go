package project

import (
	"strconv"

	"github.com/Garik-/alsmidi/pkg/ipd"
)

// palette is the fixed clip/track color table, indexed by the Color value.
var palette = [...]string{
	"FF94A6", "FFA529", "CC9927", "F7F47C", "BFFB00", "1AFF2F", "25FFA8", "5CFFE8", "8BC5FF", "5480E4",
	"92A7FF", "D86CE4", "E553A0", "FFFFFF", "FF3636", "F66C03", "99724B", "FFF034", "87FF67", "3DC300",
	"00BFAF", "19E9FF", "10A4EE", "007DC0", "886CE4", "B677C6", "FF39D4", "D0D0D0", "E2675A", "FFA374",
	"D3AD71", "EDFFAE", "D2E498", "BAD074", "9BC48D", "D4FDE1", "CDF1F8", "B9C1E3", "CDBBE4", "AE98E5",
	"E5DCE1", "A9A9A9", "C6928B", "B78256", "99836A", "BFBA69", "A6BE00", "7DB04D", "88C2BA", "9BB3C4",
	"85A5C2", "8393CC", "A595B5", "BF9FBE", "BC7196", "7B7B7B", "AF3333", "A95131", "724F41", "DBC300",
	"85961F", "539F31", "0A9C8E", "236384", "1A2F96", "2F52A2", "624BAD", "A34BAD", "CC2E6E", "3C3C3C",
}

var (
	white = ipd.Color{1, 1, 1}
	grey  = ipd.Color{0.8, 0.8, 0.8}
)

// hexToRGB converts RRGGBB to a 0..1 triple; malformed input is white.
func hexToRGB(s string) ipd.Color {
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return white
	}
	return ipd.Color{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}
}

// paletteColor resolves a palette index, using fallback when out of range.
func paletteColor(index int64, fallback ipd.Color) ipd.Color {
	if index < 0 || index >= int64(len(palette)) {
		return fallback
	}
	return hexToRGB(palette[index])
}
