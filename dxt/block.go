// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package dxt

import "encoding/binary"

const (
	// quantMask rounds a 0xRRGGBB color to its 5:6:5 representable value.
	quantMask = 0xF8FCF8

	// singleColorError is the nominal score of a block with one distinct color.
	singleColorError = 1000
	initialError     = 0x40000000
)

// Block is one encoded 4x4 DXT color block.
type Block struct {
	// Color0 and Color1 are the 5:6:5 endpoints in stored order.
	Color0 uint16
	Color1 uint16
	// Indices holds 2 bits per pixel, pixel 0 in the lowest bits.
	Indices uint32
	// Steps is the interpolation step count: 3 for the opaque 4-color
	// ramp, 2 for the 3-color ramp.
	Steps int
	// Error is the squared projection error of the final endpoint pair.
	Error int
}

// Put writes the 8 byte little-endian color block into dst.
func (b Block) Put(dst []byte) {
	binary.LittleEndian.PutUint16(dst[0:], b.Color0)
	binary.LittleEndian.PutUint16(dst[2:], b.Color1)
	binary.LittleEndian.PutUint32(dst[4:], b.Indices)
}

// CompressBlock encodes 16 pixels given as 0xRRGGBB. Every pair of distinct
// quantized colors is tried as endpoints with both ramp lengths and the
// pair with the lowest error wins.
func CompressBlock(px *[16]uint32) Block {
	var unique [16]uint32
	count := 0

	for _, p := range px {
		c := p & quantMask
		seen := false
		for _, u := range unique[:count] {
			if u == c {
				seen = true
				break
			}
		}
		if !seen {
			unique[count] = c
			count++
		}
	}

	var col1, col2 uint32
	var steps, bestErr int

	if count == 1 {
		col1, col2 = unique[0], unique[0]
		steps = 3
		bestErr = singleColorError
	} else {
		bestErr = initialError
		for i := 0; i < count-1; i++ {
			for j := i + 1; j < count; j++ {
				for _, n := range [2]int{2, 3} {
					score, _ := scoreBlock(px, n, unique[i], unique[j])
					if score < bestErr {
						col1, col2 = unique[i], unique[j]
						steps = n
						bestErr = score
					}
				}
			}
		}
	}

	c0 := pack565(col1)
	c1 := pack565(col2)

	// 4-color blocks need Color0 > Color1, 3-color blocks the reverse
	if (c0 > c1) != (steps == 3) {
		c0, c1 = c1, c0
		col1, col2 = col2, col1
	}

	score, indices := scoreBlock(px, steps, col1, col2)

	return Block{
		Color0:  c0,
		Color1:  c1,
		Indices: indices,
		Steps:   steps,
		Error:   score,
	}
}

// scoreBlock projects every pixel onto the segment col1..col2 split into
// steps intervals and returns the accumulated squared error together with
// the packed index word.
func scoreBlock(px *[16]uint32, steps int, col1, col2 uint32) (int, uint32) {
	b1, g1, r1 := channels(col1)
	b2, g2, r2 := channels(col2)

	db, dg, dr := b2-b1, g2-g1, r2-r1
	dist := db*db + dg*dg + dr*dr

	score := 0
	var indices uint32

	for i := 15; i >= 0; i-- {
		b, g, r := channels(px[i])
		vb, vg, vr := b-b1, g-g1, r-r1

		xa2 := vb*vb + vg*vg + vr*vr
		xav := vb*db + vg*dg + vr*dr

		choice := 0
		if dist > 0 {
			choice = (steps*xav + dist>>1) / dist
			if choice < 0 {
				choice = 0
			} else if choice > steps {
				choice = steps
			}
		}

		score += xa2 - (2*choice*xav)/steps + (choice*choice*dist)/(steps*steps)

		indices <<= 2
		switch {
		case choice == steps:
			indices |= 1
		case choice > 0:
			indices |= uint32(choice + 1)
		}
	}

	return score, indices
}

// channels splits 0xRRGGBB into blue, green and red components.
func channels(c uint32) (int, int, int) {
	return int(c & 0xFF), int((c >> 8) & 0xFF), int((c >> 16) & 0xFF)
}

// pack565 converts a quantized 0xRRGGBB color to 5:6:5.
func pack565(c uint32) uint16 {
	b, g, r := channels(c)
	return uint16(b>>3 | (g>>2)<<5 | (r>>3)<<11)
}
