// Package bytestream implements a growable binary buffer with independent
// read/write cursors and a configurable byte order, the way
// tools/byte_stream.h does in the original C++ toolkit.
package bytestream

import (
	"encoding/binary"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/byteorder"
)

const minGrowth = 1024

// Stream is a growable byte buffer with separate read and write cursors.
// The zero value is not usable; use New.
type Stream struct {
	buf   []byte
	rpos  int
	wpos  int
	order byteorder.Order
}

// New creates an empty stream with the given initial capacity and byte order.
func New(initialCap int, order byteorder.Order) *Stream {
	if initialCap < 0 {
		initialCap = 0
	}
	return &Stream{buf: make([]byte, initialCap), order: order}
}

// Order reports the stream's current byte order.
func (s *Stream) Order() byteorder.Order { return s.order }

// SetOrder changes the byte order applied to subsequent typed reads/writes.
func (s *Stream) SetOrder(o byteorder.Order) { s.order = o }

// Len returns the number of unread bytes.
func (s *Stream) Len() int { return s.wpos - s.rpos }

// Cap returns the current backing capacity.
func (s *Stream) Cap() int { return cap(s.buf) }

// ReadPos and WritePos expose the cursors for diagnostics and tests.
func (s *Stream) ReadPos() int  { return s.rpos }
func (s *Stream) WritePos() int { return s.wpos }

// Bytes returns the unread portion of the buffer. The slice aliases the
// stream's internal storage and is invalidated by any subsequent write.
func (s *Stream) Bytes() []byte { return s.buf[s.rpos:s.wpos] }

// Reserve ensures capacity for at least n additional bytes beyond the
// current write position, following the growth policy:
// new_cap = max(n, old+1024, old+old/16).
func (s *Stream) Reserve(n int) {
	need := s.wpos + n
	if need <= cap(s.buf) {
		return
	}
	old := cap(s.buf)
	newCap := need
	if c := old + minGrowth; c > newCap {
		newCap = c
	}
	if c := old + old/16; c > newCap {
		newCap = c
	}
	grown := make([]byte, len(s.buf), newCap)
	copy(grown, s.buf)
	s.buf = grown
}

func (s *Stream) ensureWritable(n int) {
	s.Reserve(n)
	if s.wpos+n > len(s.buf) {
		s.buf = s.buf[:s.wpos+n]
	}
}

// Write appends raw bytes at the write cursor.
func (s *Stream) Write(p []byte) {
	s.ensureWritable(len(p))
	copy(s.buf[s.wpos:], p)
	s.wpos += len(p)
}

// WriteString appends a Go string's bytes plus a terminating zero byte,
// matching the C-string convention ReadCString expects. A caller passing a
// nil *string by value can't happen in Go; WriteString instead rejects the
// degenerate empty-pointer case callers sometimes pass through an interface.
func (s *Stream) WriteString(str *string) error {
	if str == nil {
		return apierr.New(apierr.NullPointer, "bytestream: nil string pointer")
	}
	s.Write([]byte(*str))
	s.Write([]byte{0})
	return nil
}

// WriteStream appends the unread contents of other without consuming it.
func (s *Stream) WriteStream(other *Stream) {
	s.Write(other.Bytes())
}

func (s *Stream) codec() binary.ByteOrder { return byteorder.Codec(s.order) }

func putUint(s *Stream, width int, v uint64) {
	s.ensureWritable(width)
	switch width {
	case 1:
		s.buf[s.wpos] = byte(v)
	case 2:
		s.codec().PutUint16(s.buf[s.wpos:], uint16(v))
	case 4:
		s.codec().PutUint32(s.buf[s.wpos:], uint32(v))
	case 8:
		s.codec().PutUint64(s.buf[s.wpos:], v)
	}
	s.wpos += width
}

func (s *Stream) PutU8(v uint8)   { putUint(s, 1, uint64(v)) }
func (s *Stream) PutI8(v int8)    { putUint(s, 1, uint64(uint8(v))) }
func (s *Stream) PutU16(v uint16) { putUint(s, 2, uint64(v)) }
func (s *Stream) PutI16(v int16)  { putUint(s, 2, uint64(uint16(v))) }
func (s *Stream) PutU32(v uint32) { putUint(s, 4, uint64(v)) }
func (s *Stream) PutI32(v int32)  { putUint(s, 4, uint64(uint32(v))) }
func (s *Stream) PutU64(v uint64) { putUint(s, 8, v) }
func (s *Stream) PutI64(v int64)  { putUint(s, 8, uint64(v)) }

// checkReadable fails with AccessViolation if fewer than n unread bytes remain.
func (s *Stream) checkReadable(n int) error {
	if s.rpos+n > s.wpos {
		return apierr.New(apierr.AccessViolation, "bytestream: read past write cursor").
			WithContext("rpos", s.rpos).WithContext("n", n).WithContext("wpos", s.wpos)
	}
	return nil
}

func getUint(s *Stream, width int) (uint64, error) {
	if err := s.checkReadable(width); err != nil {
		return 0, err
	}
	var v uint64
	switch width {
	case 1:
		v = uint64(s.buf[s.rpos])
	case 2:
		v = uint64(s.codec().Uint16(s.buf[s.rpos:]))
	case 4:
		v = uint64(s.codec().Uint32(s.buf[s.rpos:]))
	case 8:
		v = s.codec().Uint64(s.buf[s.rpos:])
	}
	s.rpos += width
	return v, nil
}

func (s *Stream) GetU8() (uint8, error) {
	v, err := getUint(s, 1)
	return uint8(v), err
}

func (s *Stream) GetI8() (int8, error) {
	v, err := getUint(s, 1)
	return int8(uint8(v)), err
}

func (s *Stream) GetU16() (uint16, error) {
	v, err := getUint(s, 2)
	return uint16(v), err
}

func (s *Stream) GetI16() (int16, error) {
	v, err := getUint(s, 2)
	return int16(uint16(v)), err
}

func (s *Stream) GetU32() (uint32, error) {
	v, err := getUint(s, 4)
	return uint32(v), err
}

func (s *Stream) GetI32() (int32, error) {
	v, err := getUint(s, 4)
	return int32(uint32(v)), err
}

func (s *Stream) GetU64() (uint64, error) {
	return getUint(s, 8)
}

func (s *Stream) GetI64() (int64, error) {
	v, err := getUint(s, 8)
	return int64(v), err
}

// ReadCString reads bytes up to and including the next zero byte and returns
// them as a string without the terminator.
func (s *Stream) ReadCString() (string, error) {
	for i := s.rpos; i < s.wpos; i++ {
		if s.buf[i] == 0 {
			out := string(s.buf[s.rpos:i])
			s.rpos = i + 1
			return out, nil
		}
	}
	return "", apierr.New(apierr.AccessViolation, "bytestream: unterminated string")
}

// SeekRead moves the read cursor to an absolute position. It must not exceed
// the write cursor.
func (s *Stream) SeekRead(pos int) error {
	if pos < 0 || pos > s.wpos {
		return apierr.New(apierr.AccessViolation, "bytestream: read cursor out of range").
			WithContext("pos", pos).WithContext("wpos", s.wpos)
	}
	s.rpos = pos
	return nil
}

// FlushReadPtr compacts the buffer, discarding already-consumed bytes:
// the read cursor resets to zero and the write cursor becomes the prior
// unread length.
func (s *Stream) FlushReadPtr() {
	if s.rpos == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.rpos:s.wpos])
	s.wpos = n
	s.rpos = 0
}

// Reset empties the stream without releasing its backing array.
func (s *Stream) Reset() {
	s.rpos = 0
	s.wpos = 0
}
