// Package types holds the on-disk record shapes for the cabinet format and
// the small primitive helpers used to read and write them. Nothing here
// knows about folders, data blocks, or files as a collection — that
// structure lives in internal/parsers and internal/services.
package types

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint16 reads a little-endian uint16, wrapping a short read as
// ErrTruncatedStream.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedStream, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a little-endian uint32, wrapping a short read as
// ErrTruncatedStream.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedStream, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadUint8 reads a single byte, wrapping EOF as ErrTruncatedStream.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedStream, err)
	}
	return buf[0], nil
}

// WriteUint16 writes v little-endian.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint32 writes v little-endian.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadNulTerminatedString reads bytes until a NUL byte (consumed, not
// included) or EOF. A premature EOF is not an error here: the bytes
// accumulated so far are returned, mirroring the on-disk format's guarantee
// that well-formed input always terminates the string with a NUL — callers
// that need to reject malformed input do so by checking the surrounding
// record's declared lengths, not here.
func ReadNulTerminatedString(r io.Reader) (string, error) {
	var buf []byte
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == 0 {
				return string(buf), nil
			}
			buf = append(buf, b[0])
		}
		if err != nil {
			return string(buf), nil
		}
	}
}

// WriteNulTerminatedString writes s followed by a NUL byte. The byte
// representation of s is used as-is: Go strings are already UTF-8, and
// ASCII text is a byte-identical subset of UTF-8, so there is nothing to
// transcode here. Callers decide whether the ASCII or UTF-8 attribute bit
// applies by inspecting the bytes before calling this.
func WriteNulTerminatedString(w io.Writer, s string) error {
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

// IsASCIIBytes reports whether every byte of b is <= 0x7F.
func IsASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c > 0x7F {
			return false
		}
	}
	return true
}
