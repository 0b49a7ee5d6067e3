package midi

import (
	"math"

	"go.uber.org/zap"
)

const (
	// DefaultController is CC 11, expression.
	DefaultController = 11
	// DefaultGridTicks is one native time unit of a live set.
	DefaultGridTicks = 30
)

// Options configures the note and automation encoders.
type Options struct {
	Logger *zap.Logger
	// Name is the source file name without extension; it names the bundles.
	Name string
	// Program is sent on every note stream.
	Program uint8
	// Controller carries automation values; 0 means DefaultController.
	Controller uint8
	// GridTicks is the interpolation step of automation; 0 means DefaultGridTicks.
	GridTicks int64
	Curve     Curve
	// FirstChannel starts every channel sequence; 0 starts at channel 0.
	FirstChannel int
}

// Validate reports options the encoders cannot honor.
func (o Options) Validate() error {
	_, err := allocator(o.FirstChannel)
	return err
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) controller() uint8 {
	if o.Controller == 0 {
		return DefaultController
	}
	return o.Controller & 0x7f
}

func (o Options) gridTicks() int64 {
	if o.GridTicks <= 0 {
		return DefaultGridTicks
	}
	return o.GridTicks
}

// channels returns a fresh allocator, falling back to channel 0 on invalid options.
func (o Options) channels(log *zap.Logger) *ChannelAllocator {
	a, err := allocator(o.FirstChannel)
	if err != nil {
		log.Warn("invalid first channel, starting at 0", zap.Error(err))
		return &ChannelAllocator{}
	}
	return a
}

// validTempo rejects zero, negative, NaN and infinite tempos.
func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 1)
}

func tempoMicroseconds(bpm float64) uint32 {
	return uint32(math.Round(60_000_000 / bpm))
}
