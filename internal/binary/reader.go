// Package binary provides helpers for reading and writing fixed-layout
// big-endian records from seekable streams.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrStringTooLong is returned when a string does not fit a fixed buffer
// together with its NUL terminator.
var ErrStringTooLong = errors.New("string does not fit fixed-size field")

// ReadRangeAt seeks r to offset and reads exactly n bytes.
// A short read is reported as io.ErrUnexpectedEOF (or io.EOF when nothing was read).
func ReadRangeAt(r io.ReadSeeker, offset int64, n int) ([]byte, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to 0x%X: %w", offset, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%X: %w", n, offset, err)
	}
	return buf, nil
}

// Uint32At returns the big-endian uint32 at offset in b.
func Uint32At(b []byte, offset int) uint32 {
	return binary.BigEndian.Uint32(b[offset : offset+4])
}

// Uint64At returns the big-endian uint64 at offset in b.
func Uint64At(b []byte, offset int) uint64 {
	return binary.BigEndian.Uint64(b[offset : offset+8])
}

// PutUint32At writes v big-endian at offset in b.
func PutUint32At(b []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(b[offset:offset+4], v)
}

// PutUint64At writes v big-endian at offset in b.
func PutUint64At(b []byte, offset int, v uint64) {
	binary.BigEndian.PutUint64(b[offset:offset+8], v)
}

// CString converts bytes to a string, stopping at the first null byte.
// Unlike display strings, the contents are not trimmed: parameters are paths.
func CString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// PutCString copies s into dst followed by a null byte and zeroes the rest of dst.
func PutCString(dst []byte, s string) error {
	if len(s) >= len(dst) {
		return fmt.Errorf("%w: %d bytes into %d", ErrStringTooLong, len(s), len(dst))
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

// BytesEqual compares two byte slices for equality.
func BytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether data starts with magic.
func HasPrefix(data, magic []byte) bool {
	return len(data) >= len(magic) && BytesEqual(data[:len(magic)], magic)
}
