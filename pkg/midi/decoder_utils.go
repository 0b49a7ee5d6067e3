package midi

import (
	"encoding/binary"
	"fmt"
	"io"
)

// add offset
func (d *Decoder) readByte() (byte, error) {
	var b byte
	err := binary.Read(d.r, binary.BigEndian, &b)
	if err == nil {
		d.offset += 1 // read byte
	}
	return b, err
}

func (d *Decoder) uint7() (uint8, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return b & 0x7f, nil
}

func (d *Decoder) skip(n int64) error {
	if _, err := d.r.Seek(n, io.SeekCurrent); err != nil {
		return err
	}
	d.offset += n
	return nil
}

// maxVarLen is the longest variable length quantity a file may hold (0x0FFFFFFF).
const maxVarLen = 4

// varLen reads a variable length quantity: 7 bits per byte, high bit set on all but the last.
func (d *Decoder) varLen() (uint32, error) {
	var val uint32
	for i := 0; i < maxVarLen; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		val = val<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return val, nil
		}
	}
	return 0, fmt.Errorf("%w - variable length quantity longer than %d bytes", ErrUnexpectedData, maxVarLen)
}

// channelMessage reports whether status starts a channel voice message, 0x80..0xEF.
func channelMessage(status byte) bool {
	return status >= 0x80 && status < 0xF0
}

// varLenTxt reads a length prefixed payload.
func (d *Decoder) varLenTxt() ([]byte, error) {
	l, err := d.varLen()
	if err != nil {
		return nil, err
	}
	if d.offset+int64(l) > d.chunkEnd {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	d.offset += int64(l)
	return buf, nil
}

func (d *Decoder) IDnSize() ([4]byte, uint32, error) {
	var ID [4]byte
	if err := binary.Read(d.r, binary.BigEndian, &ID); err != nil {
		return ID, 0, err
	}
	d.offset += 4 // [4]byte ID

	var blockSize uint32
	if err := binary.Read(d.r, binary.BigEndian, &blockSize); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return ID, 0, err
	}
	d.offset += 4 // uint32 blockSize

	return ID, blockSize, nil
}
