// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package refpack

import "fmt"

// opcode lead byte boundaries.
const (
	opTwoByte  = 0x80 // 0x00-0x7F: 2 byte form
	opFourByte = 0xC0 // 0xC0-0xDF: 4 byte form, 0x80-0xBF is the 3 byte form
	opLiteral  = 0xE0 // 0xE0-0xFB: literal run
	opStop     = 0xFC // 0xFC-0xFF: terminal opcode
)

// DecompressAll inflates a RefPack blob into a newly allocated buffer.
func DecompressAll(src []byte) ([]byte, error) {
	header, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, header.UncompressedSize)
	if _, err := decompress(src, header, dst); err != nil {
		return nil, err
	}

	return dst, nil
}

// Decompress inflates the RefPack blob src into dst and returns the number
// of bytes written. dst must hold at least the uncompressed size recorded
// in the header. On error dst may hold a partial prefix and must be
// discarded.
func Decompress(src, dst []byte) (int, error) {
	header, err := ParseHeader(src)
	if err != nil {
		return 0, err
	}

	return decompress(src, header, dst)
}

func decompress(src []byte, header Header, dst []byte) (int, error) {
	size := header.UncompressedSize
	if len(dst) < size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrOutputTooSmall, size, len(dst))
	}
	out := dst[:size]

	in := header.DataOffset
	pos := 0

	for in < len(src) && src[in] < opStop {
		lead := int(src[in])
		in++

		var plain, copyLen, copyOffset int

		switch {
		case lead >= opLiteral:
			plain = ((lead & 0x1F) << 2) + 4

		case lead >= opFourByte:
			if in+3 > len(src) {
				return pos, fmt.Errorf("%w: opcode 0x%02x at %d truncated", ErrCorruptStream, lead, in-1)
			}
			b2, b3, b4 := int(src[in]), int(src[in+1]), int(src[in+2])
			in += 3

			plain = lead & 3
			copyLen = ((lead & 0x0C) << 6) + b4 + 5
			copyOffset = ((lead & 0x10) << 12) + (b2 << 8) + b3 + 1

		case lead >= opTwoByte:
			if in+2 > len(src) {
				return pos, fmt.Errorf("%w: opcode 0x%02x at %d truncated", ErrCorruptStream, lead, in-1)
			}
			b2, b3 := int(src[in]), int(src[in+1])
			in += 2

			plain = (b2 & 0xC0) >> 6
			copyLen = (lead & 0x3F) + 4
			copyOffset = ((b2 & 0x3F) << 8) + b3 + 1

		default:
			if in+1 > len(src) {
				return pos, fmt.Errorf("%w: opcode 0x%02x at %d truncated", ErrCorruptStream, lead, in-1)
			}
			b2 := int(src[in])
			in++

			plain = lead & 3
			copyLen = ((lead & 0x1C) >> 2) + 3
			copyOffset = ((lead >> 5) << 8) + b2 + 1
		}

		if in+plain > len(src) {
			return pos, fmt.Errorf("%w: literal run of %d at %d exceeds input", ErrCorruptStream, plain, in)
		}
		if pos+plain+copyLen > len(out) {
			return pos, fmt.Errorf("%w: output overrun at %d", ErrCorruptStream, pos)
		}

		copy(out[pos:pos+plain], src[in:in+plain])
		in += plain
		pos += plain

		if copyLen > 0 {
			from := pos - copyOffset
			if from < 0 {
				return pos, fmt.Errorf("%w: back-reference %d before output start at %d", ErrCorruptStream, copyOffset, pos)
			}

			// byte at a time: the source may overlap the bytes being produced
			for i := 0; i < copyLen; i++ {
				out[pos] = out[from]
				pos++
				from++
			}
		}
	}

	if in < len(src) && pos < len(out) {
		plain := int(src[in] & 3)
		in++

		if in+plain > len(src) || pos+plain > len(out) {
			return pos, fmt.Errorf("%w: terminal run of %d out of bounds", ErrCorruptStream, plain)
		}

		copy(out[pos:pos+plain], src[in:in+plain])
		pos += plain
	}

	if pos != len(out) {
		return pos, fmt.Errorf("%w: produced %d of %d bytes", ErrCorruptStream, pos, len(out))
	}

	return pos, nil
}
