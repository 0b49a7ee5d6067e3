package midi

import (
	"errors"
	"fmt"
)

// percussion channel, zero based
const drumChannel = 9

const numChannels = 16

// ErrInvalidArgument reports a caller contract violation.
var ErrInvalidArgument = errors.New("invalid argument")

// ChannelAllocator hands out channels round robin, never the percussion channel.
// Use one allocator per encoding pass.
type ChannelAllocator struct {
	next int
}

// NewChannelAllocator starts the sequence at first (1..15).
func NewChannelAllocator(first int) (*ChannelAllocator, error) {
	if first < 1 || first >= numChannels {
		return nil, fmt.Errorf("%w: first channel must be in 1..%d, got %d", ErrInvalidArgument, numChannels-1, first)
	}
	a := &ChannelAllocator{next: first}
	if a.next == drumChannel {
		a.next++
	}
	return a, nil
}

// Next returns 0..8, 10..15 and wraps around.
func (a *ChannelAllocator) Next() uint8 {
	ch := a.next
	a.next++
	if a.next == drumChannel {
		a.next++
	}
	if a.next >= numChannels {
		a.next = 0
	}
	return uint8(ch)
}

// allocator returns a fresh allocator; first == 0 starts at channel 0.
func allocator(first int) (*ChannelAllocator, error) {
	if first == 0 {
		return &ChannelAllocator{}, nil
	}
	return NewChannelAllocator(first)
}
