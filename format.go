// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// Format is the 7-bit bitmap format code of an entry.
type Format uint8

// Supported bitmap formats.
const (
	// FormatDXT1 is DXT1 block compression with 1-bit alpha.
	FormatDXT1 Format = 0x60
	// FormatDXT3 is DXT3 block compression with explicit 4-bit alpha.
	FormatDXT3 Format = 0x61
	// FormatSixteenBit4x4 is 16-bit ARGB 4:4:4:4.
	FormatSixteenBit4x4 Format = 0x6D
	// FormatSixteenBit is 16-bit RGB 5:6:5.
	FormatSixteenBit Format = 0x78
	// FormatThirtyTwoBit is 32-bit BGRA.
	FormatThirtyTwoBit Format = 0x7D
	// FormatSixteenBitAlpha is 16-bit ARGB 1:5:5:5.
	FormatSixteenBitAlpha Format = 0x7E
	// FormatTwentyFourBit is 24-bit BGR.
	FormatTwentyFourBit Format = 0x7F
)

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatDXT1, FormatDXT3, FormatSixteenBit4x4, FormatSixteenBit,
		FormatThirtyTwoBit, FormatSixteenBitAlpha, FormatTwentyFourBit:
		return true
	default:
		return false
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatSixteenBit4x4:
		return "ARGB4444"
	case FormatSixteenBit:
		return "RGB565"
	case FormatThirtyTwoBit:
		return "BGRA8888"
	case FormatSixteenBitAlpha:
		return "ARGB1555"
	case FormatTwentyFourBit:
		return "BGR888"
	default:
		return fmt.Sprintf("Format(0x%02X)", uint8(f))
	}
}

// HasAlpha reports whether the format stores transparency.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatDXT1, FormatDXT3, FormatThirtyTwoBit, FormatSixteenBitAlpha, FormatSixteenBit4x4:
		return true
	default:
		return false
	}
}

// BlockCompressed reports whether the format stores 4x4 DXT blocks.
func (f Format) BlockCompressed() bool {
	return f == FormatDXT1 || f == FormatDXT3
}

// DataSize returns the byte size of one width x height level. DXT levels
// are rounded up to whole 4x4 blocks. Unknown formats return -1.
func (f Format) DataSize(width, height int) int {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4

	switch f {
	case FormatDXT1:
		return blocksW * blocksH * 8
	case FormatDXT3:
		return blocksW * blocksH * 16
	case FormatThirtyTwoBit:
		return width * height * 4
	case FormatTwentyFourBit:
		return width * height * 3
	case FormatSixteenBit, FormatSixteenBitAlpha, FormatSixteenBit4x4:
		return width * height * 2
	default:
		return -1
	}
}

// bcnFormat maps a DXT format onto the reference codec's format.
func (f Format) bcnFormat() bcn.Format {
	switch f {
	case FormatDXT1:
		return bcn.FormatDXT1
	case FormatDXT3:
		return bcn.FormatDXT3
	default:
		return bcn.FormatUnknown
	}
}
