package midi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type nextChunkType int

const (
	eventChunk nextChunkType = iota + 1
	trackChunk
)

type timeFormat int

const (
	MetricalTF timeFormat = iota + 1
	TimeCodeTF
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
)

// Decoder reads a standard MIDI file back into streams of the event model.
// Messages the model has no kind for are skipped; their delta carries over
// to the next decoded event so absolute ticks are preserved.
type Decoder struct {
	r        io.ReadSeeker
	offset   int64
	chunkEnd int64
	status   byte
	carry    uint32
	current  *Stream

	Format              uint16
	TicksPerQuarterNote uint16
	TimeFormat          timeFormat
	Streams             []*Stream
}

func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{r: r, offset: 0}
}

func (d *Decoder) Decode() error {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d.offset = 0
	d.Streams = nil

	id, headerSize, err := d.IDnSize()
	if err != nil {
		return err
	}

	if id != headerChunkID {
		return fmt.Errorf("%w - %v", ErrFmtNotSupported, id)
	}

	if headerSize != 6 {
		return fmt.Errorf("%w - expected header size to be 6, was %d", ErrFmtNotSupported, headerSize)
	}

	var header struct {
		Format    uint16
		NumTracks uint16
		Division  uint16
	}
	if err := binary.Read(d.r, binary.BigEndian, &header); err != nil {
		return err
	}
	d.offset += 6
	d.Format = header.Format

	if (header.Division & 0x8000) == 0 {
		d.TicksPerQuarterNote = header.Division & 0x7FFF
		d.TimeFormat = MetricalTF
	} else {
		d.TimeFormat = TimeCodeTF
	}

	nextChunk := trackChunk
	for {
		switch nextChunk {
		case eventChunk:
			nextChunk, err = d.parseEvent()
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
		case trackChunk:
			nextChunk, err = d.parseTrack()
			if err == io.EOF {
				_, err = d.r.Seek(0, io.SeekStart)
				return err
			}
		}

		if err != nil {
			return fmt.Errorf("offset %d: %w", d.offset, err)
		}
	}
}

// Bundle returns the decoded streams under the given name.
func (d *Decoder) Bundle(name string) *Bundle {
	return &Bundle{Name: name, TicksPerQuarterNote: d.TicksPerQuarterNote, Streams: d.Streams}
}

func (d *Decoder) parseTrack() (nextChunkType, error) {
	if d.chunkEnd > d.offset {
		if _, err := d.r.Seek(d.chunkEnd, io.SeekStart); err != nil {
			return trackChunk, err
		}
		d.offset = d.chunkEnd
	}

	id, size, err := d.IDnSize()
	if err != nil {
		return trackChunk, err
	}
	if id != trackChunkID {
		return trackChunk, fmt.Errorf("%w - expected track chunk ID %v, got %v", ErrUnexpectedData, trackChunkID, id)
	}

	d.chunkEnd = d.offset + int64(size)
	d.status = 0
	d.carry = 0
	d.current = new(Stream)
	d.Streams = append(d.Streams, d.current)

	return eventChunk, nil
}

func (d *Decoder) add(e Event) {
	e.Delta += d.carry
	d.carry = 0
	d.current.Events = append(d.current.Events, e)
}

func (d *Decoder) parseEvent() (nextChunkType, error) {
	if d.offset >= d.chunkEnd {
		// chunk without end of track
		return trackChunk, nil
	}

	timeDelta, err := d.varLen()
	if err != nil {
		return eventChunk, err
	}
	d.carry += timeDelta

	// status byte give us the msg type and channel.
	statusByte, err := d.readByte()
	if err != nil {
		return eventChunk, err
	}

	if statusByte&0x80 == 0 {
		if !channelMessage(d.status) {
			return eventChunk, fmt.Errorf("%w - data byte %#x without running status", ErrUnexpectedData, statusByte)
		}
		statusByte = d.status

		d.offset -= 1
		if _, err := d.r.Seek(-1, io.SeekCurrent); err != nil {
			return eventChunk, err
		}
	}

	e := Event{Channel: statusByte & 0x0F}
	msgType := statusByte >> 4
	if channelMessage(statusByte) {
		d.status = statusByte
	}

	// Extract values based on message type
	switch msgType {

	case 0xA, 0xE:
		if err := d.skip(2); err != nil {
			return eventChunk, err
		}

	case 0xD:
		if err := d.skip(1); err != nil {
			return eventChunk, err
		}

	case 0x8, 0x9:
		e.Kind = KindNoteOff
		if msgType == 0x9 {
			e.Kind = KindNoteOn
		}
		if e.Key, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		if e.Velocity, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		d.add(e)

	case 0xB:
		e.Kind = KindControlChange
		if e.Controller, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		if e.Value, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		d.add(e)

	case 0xC:
		e.Kind = KindProgramChange
		if e.Program, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		d.add(e)

	case 0xF:
		d.status = 0
		if statusByte == 0xFF {
			return d.parseMetaMsg()
		}
		// sysex
		l, err := d.varLen()
		if err != nil {
			return eventChunk, err
		}
		if err := d.skip(int64(l)); err != nil {
			return eventChunk, err
		}
	}

	return eventChunk, nil
}

func (d *Decoder) parseMetaMsg() (nextChunkType, error) {
	typ, err := d.readByte()
	if err != nil {
		return eventChunk, err
	}

	data, err := d.varLenTxt()
	if err != nil {
		return eventChunk, err
	}

	var e Event
	switch typ {
	case 0x2F:
		e.Kind = KindEndOfTrack
		d.add(e)
		return trackChunk, nil

	case 0x51:
		if len(data) != 3 {
			return eventChunk, fmt.Errorf("%w - tempo of %d bytes", ErrUnexpectedData, len(data))
		}
		e.Kind = KindTempo
		e.MicrosecondsPerBeat = uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])

	case 0x58:
		if len(data) != 4 {
			return eventChunk, fmt.Errorf("%w - time signature of %d bytes", ErrUnexpectedData, len(data))
		}
		e.Kind = KindTimeSignature
		e.Numerator = data[0]
		e.Denominator = 1 << data[1]

	case 0x03:
		e.Kind = KindTrackName
		e.Text = string(data)
		if d.current.Name == "" {
			d.current.Name = e.Text
		}

	case 0x7F:
		e.Kind = KindSequencerData
		e.Data = data

	default:
		return eventChunk, nil
	}

	d.add(e)
	return eventChunk, nil
}

// ReadBundle decodes a whole file.
func ReadBundle(r io.ReadSeeker, name string) (*Bundle, error) {
	d := NewDecoder(r)
	if err := d.Decode(); err != nil {
		return nil, err
	}
	if d.TimeFormat != MetricalTF {
		return nil, fmt.Errorf("%w - time code division", ErrFmtNotSupported)
	}
	return d.Bundle(name), nil
}
