package midi

import (
	"math"

	"github.com/Garik-/alsmidi/pkg/ipd"
)

var (
	signPrefix  = []byte{0x53, 0x69, 0x67, 0x6e, 0x01, 0xff} // "Sign"
	presPrefix  = []byte{0x50, 0x72, 0x65, 0x53, 0x01, 0xff} // "PreS"
	anvilPrefix = []byte{0x05, 0x0f, 0x34}
)

func rgbBytes(c ipd.Color) (r, g, b byte) {
	conv := func(v float64) byte {
		return byte(math.Max(0, math.Min(255, math.Round(v*255))))
	}
	return conv(c[0]), conv(c[1]), conv(c[2])
}

// colorEvents encodes a track color three ways, for the sequencers that read each layout.
// The first two store B, G, R; the third packs the channels into 7 bit data bytes.
func colorEvents(c ipd.Color) []Event {
	r, g, b := rgbBytes(c)

	sign := append(append([]byte(nil), signPrefix...), b, g, r)
	pres := append(append([]byte(nil), presPrefix...), b, g, r)
	anvil := append(append([]byte(nil), anvilPrefix...),
		b&0x0f,
		(g<<4)&0x7f+b>>4,
		(r<<5)&0x7f+g>>3,
		r>>2,
		0x00,
	)

	return []Event{
		{Kind: KindSequencerData, Data: sign},
		{Kind: KindSequencerData, Data: pres},
		{Kind: KindSequencerData, Data: anvil},
	}
}
