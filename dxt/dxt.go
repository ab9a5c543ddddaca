// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

/*
Package dxt implements a small DXT1/DXT3 block compressor and decoder.

The compressor quantizes each 4x4 block to 5:6:5 and searches all pairs of
distinct quantized colors for the endpoint pair with the lowest projection
error. It ignores color alpha; DXT3 output carries the explicit 4-bit alpha
plane. The search is exhaustive over at most 120 pairs per block and is
deterministic, trading quality for speed against iterative cluster fit.
*/
package dxt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
)

const (
	// BlockSizeDXT1 is the encoded size of one DXT1 block.
	BlockSizeDXT1 = 8
	// BlockSizeDXT3 is the encoded size of one DXT3 block.
	BlockSizeDXT3 = 16
)

var (
	// ErrDimensions indicates the image is not a multiple of 4 in each dimension.
	ErrDimensions = errors.New("dimensions must be a multiple of 4")
	// ErrShortData indicates the encoded data is smaller than the image needs.
	ErrShortData = errors.New("block data too short")
)

// EncodeDXT1 compresses img into DXT1 color blocks.
func EncodeDXT1(img *image.NRGBA) ([]byte, error) {
	return encode(img, BlockSizeDXT1, 0)
}

// EncodeDXT3 compresses img into DXT3 blocks: 8 bytes of 4-bit alpha
// followed by an 8 byte color block.
func EncodeDXT3(img *image.NRGBA) ([]byte, error) {
	return encode(img, BlockSizeDXT3, 8)
}

func encode(img *image.NRGBA, blockSize, colorOffset int) ([]byte, error) {
	width := img.Rect.Dx()
	height := img.Rect.Dy()
	if width&3 != 0 || height&3 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	out := make([]byte, (width/4)*(height/4)*blockSize)
	var px [16]uint32

	offset := 0
	for by := 0; by < height; by += 4 {
		for bx := 0; bx < width; bx += 4 {
			block := out[offset : offset+blockSize]

			for y := 0; y < 4; y++ {
				row := img.Pix[img.PixOffset(img.Rect.Min.X+bx, img.Rect.Min.Y+by+y):]
				for x := 0; x < 4; x++ {
					p := row[x*4:]
					px[y*4+x] = uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
				}

				if colorOffset > 0 {
					block[y*2] = p4(row[3]) | p4(row[7])<<4
					block[y*2+1] = p4(row[11]) | p4(row[15])<<4
				}
			}

			CompressBlock(&px).Put(block[colorOffset:])
			offset += blockSize
		}
	}

	return out, nil
}

// p4 keeps the high nibble of an 8-bit alpha.
func p4(a uint8) uint8 {
	return a >> 4
}

// Palette returns the four colors addressed by a DXT1 color block. When
// c0 <= c1 the block is in 3-color mode and index 3 is transparent black.
func Palette(c0, c1 uint16) [4]color.NRGBA {
	return palette(c0, c1, c0 > c1)
}

func palette(c0, c1 uint16, fourColor bool) [4]color.NRGBA {
	r0, g0, b0 := unpack565(c0)
	r1, g1, b1 := unpack565(c1)

	var p [4]color.NRGBA
	p[0] = color.NRGBA{R: r0, G: g0, B: b0, A: 255}
	p[1] = color.NRGBA{R: r1, G: g1, B: b1, A: 255}

	if fourColor {
		p[2] = color.NRGBA{R: mix(r0, r1, 2, 1), G: mix(g0, g1, 2, 1), B: mix(b0, b1, 2, 1), A: 255}
		p[3] = color.NRGBA{R: mix(r0, r1, 1, 2), G: mix(g0, g1, 1, 2), B: mix(b0, b1, 1, 2), A: 255}
	} else {
		p[2] = color.NRGBA{R: mix(r0, r1, 1, 1), G: mix(g0, g1, 1, 1), B: mix(b0, b1, 1, 1), A: 255}
	}

	return p
}

func mix(a, b uint8, wa, wb int) uint8 {
	return uint8((int(a)*wa + int(b)*wb) / (wa + wb))
}

// unpack565 expands 5:6:5 to 8 bits per channel with bit replication.
func unpack565(c uint16) (uint8, uint8, uint8) {
	r := uint8(c >> 11 & 0x1F)
	g := uint8(c >> 5 & 0x3F)
	b := uint8(c & 0x1F)

	return r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2
}

// DecodeDXT1 decodes DXT1 blocks into an image of the given size. Width
// and height need not be multiples of 4.
func DecodeDXT1(data []byte, width, height int) (*image.NRGBA, error) {
	return decode(data, width, height, BlockSizeDXT1, 0)
}

// DecodeDXT3 decodes DXT3 blocks into an image of the given size.
func DecodeDXT3(data []byte, width, height int) (*image.NRGBA, error) {
	return decode(data, width, height, BlockSizeDXT3, 8)
}

func decode(data []byte, width, height, blockSize, colorOffset int) (*image.NRGBA, error) {
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	if need := bw * bh * blockSize; len(data) < need {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrShortData, need, len(data))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	offset := 0

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := data[offset : offset+blockSize]
			offset += blockSize

			c := block[colorOffset:]
			c0 := binary.LittleEndian.Uint16(c[0:])
			c1 := binary.LittleEndian.Uint16(c[2:])
			indices := binary.LittleEndian.Uint32(c[4:])
			// DXT3 color blocks always use the 4-color ramp
			colors := palette(c0, c1, c0 > c1 || colorOffset > 0)

			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x := bx*4 + px
					y := by*4 + py
					if x >= width || y >= height {
						continue
					}

					i := py*4 + px
					col := colors[(indices>>(2*i))&3]
					if colorOffset > 0 {
						col.A = ((block[i/2] >> (4 * (i & 1))) & 0x0F) * 0x11
					}

					o := img.PixOffset(x, y)
					img.Pix[o+0] = col.R
					img.Pix[o+1] = col.G
					img.Pix[o+2] = col.B
					img.Pix[o+3] = col.A
				}
			}
		}
	}

	return img, nil
}
