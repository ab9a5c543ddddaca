// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package refpack

import (
	"errors"
	"fmt"
	"io"
)

const (
	// FlagCompressedSize marks a compressed-size field before the uncompressed size.
	FlagCompressedSize = 0x01
	// FlagUnknown is set by some encoders and carries no meaning for decoding.
	FlagUnknown = 0x40
	// FlagLargeFile widens both size fields from 3 to 4 bytes.
	FlagLargeFile = 0x80

	// Signature is the second byte of every RefPack header.
	Signature = 0xFB

	flagMask = ^byte(FlagCompressedSize | FlagUnknown | FlagLargeFile)

	// prefixLength is the size of the compressed-size prefix some
	// containers place ahead of the signature.
	prefixLength = 4
)

// Header describes a parsed RefPack header.
type Header struct {
	// Flags is the first signature byte.
	Flags byte
	// SignatureOffset is 0 or 4.
	SignatureOffset int
	// UncompressedSize is the payload size after decompression.
	UncompressedSize int
	// DataOffset is where the opcode stream begins.
	DataOffset int
}

// LargeFile reports whether the size fields are 4 bytes wide.
func (h Header) LargeFile() bool {
	return h.Flags&FlagLargeFile != 0
}

// checkSignature tests the two signature bytes.
func checkSignature(b0, b1 byte) bool {
	return b0&flagMask == 0x10 && b1 == Signature
}

// sizeFieldLength returns the width of the size fields for the given flags.
func sizeFieldLength(flags byte) int {
	if flags&FlagLargeFile != 0 {
		return 4
	}

	return 3
}

// HasSignature reports whether data starts with a RefPack signature at
// offset 0 or offset 4.
func HasSignature(data []byte) bool {
	if len(data) >= 2 && checkSignature(data[0], data[1]) {
		return true
	}

	return len(data) >= prefixLength+2 && checkSignature(data[prefixLength], data[prefixLength+1])
}

// ParseHeader parses a RefPack header from an in-memory buffer.
func ParseHeader(data []byte) (Header, error) {
	var sigOffset int
	switch {
	case len(data) >= 2 && checkSignature(data[0], data[1]):
		sigOffset = 0
	case len(data) >= prefixLength+2 && checkSignature(data[prefixLength], data[prefixLength+1]):
		sigOffset = prefixLength
	default:
		return Header{}, ErrUnrecognizedHeader
	}

	flags := data[sigOffset]
	fieldLen := sizeFieldLength(flags)

	index := sigOffset + 2
	if flags&FlagCompressedSize != 0 {
		index += fieldLen
	}

	start := index + fieldLen
	if start > len(data) {
		return Header{}, fmt.Errorf("%w: data starts at %d, have %d bytes", ErrTruncatedHeader, start, len(data))
	}

	return Header{
		Flags:            flags,
		SignatureOffset:  sigOffset,
		UncompressedSize: readSize(data[index:start]),
		DataOffset:       start,
	}, nil
}

// ReadHeader parses a RefPack header from a stream whose compressed blob
// starts at offset. The stream position is left after the header.
func ReadHeader(r io.ReadSeeker, offset int64) (Header, error) {
	var sig [2]byte
	if err := readAt(r, offset, sig[:]); err != nil {
		return Header{}, err
	}

	sigOffset := 0
	if !checkSignature(sig[0], sig[1]) {
		if err := readAt(r, offset+prefixLength, sig[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Header{}, ErrUnrecognizedHeader
			}
			return Header{}, err
		}
		if !checkSignature(sig[0], sig[1]) {
			return Header{}, ErrUnrecognizedHeader
		}
		sigOffset = prefixLength
	}

	flags := sig[0]
	fieldLen := sizeFieldLength(flags)

	index := sigOffset + 2
	if flags&FlagCompressedSize != 0 {
		index += fieldLen
	}

	var size [4]byte
	if err := readAt(r, offset+int64(index), size[:fieldLen]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
	}

	return Header{
		Flags:            flags,
		SignatureOffset:  sigOffset,
		UncompressedSize: readSize(size[:fieldLen]),
		DataOffset:       index + fieldLen,
	}, nil
}

// IsCompressed probes the stream for a RefPack signature at offset and
// offset+4. A stream too short to hold a signature is not compressed.
func IsCompressed(r io.ReadSeeker, offset int64) (bool, error) {
	var sig [2]byte
	for _, at := range []int64{offset, offset + prefixLength} {
		err := readAt(r, at, sig[:])
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if checkSignature(sig[0], sig[1]) {
			return true, nil
		}
	}

	return false, nil
}

// readAt seeks to offset and fills buf.
func readAt(r io.ReadSeeker, offset int64, buf []byte) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %d: %v", ErrReadHeader, offset, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %w", ErrReadHeader, err)
	}

	return nil
}

// readSize decodes a 3 or 4 byte big-endian size field.
func readSize(b []byte) int {
	n := 0
	for _, v := range b {
		n = n<<8 | int(v)
	}

	return n
}

// putSize encodes n as a big-endian size field of len(b) bytes.
func putSize(b []byte, n int) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
}
