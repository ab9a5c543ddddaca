// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"image"

	"github.com/woozymasta/bcn"
)

// MaxMipCount is the largest mip count the entry header can record.
const MaxMipCount = 15

// MipInfo describes the mip chain stored after an entry's base image.
type MipInfo struct {
	// Count is the number of levels below the base image.
	Count int
	// Packed reports levels stored back to back instead of each padded
	// to a multiple of 16 bytes.
	Packed bool
}

// FullMipCount returns the number of levels a full chain for a
// width x height image has, halving while both sides stay even and above 1.
func FullMipCount(width, height int) int {
	count := 0
	for width > 1 && height > 1 && width%2 == 0 && height%2 == 0 && count < MaxMipCount {
		count++
		width >>= 1
		height >>= 1
	}

	return count
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// padAfterLevel reports whether the running data length is padded to 16
// bytes after a level of the given size. Only applies with mipmaps.
// Padded DXT1 chains pad every level, DXT3 levels are never padded
// explicitly, and DXT1 levels one pixel wide or high are padded even
// in a packed chain.
func padAfterLevel(format Format, width, height int, packed bool) bool {
	if format.BlockCompressed() {
		return !packed && format != FormatDXT3 || format == FormatDXT1 && (width == 1 || height == 1)
	}

	return !packed
}

// levelLayout returns the offset of every level relative to the start of
// the pixel data and the total data length including padding.
func levelLayout(format Format, width, height, count int, packed bool) ([]int, int) {
	offsets := make([]int, count+1)
	total := 0

	for level := 0; level <= count; level++ {
		w := mipDimension(width, level)
		h := mipDimension(height, level)

		offsets[level] = total
		total += format.DataSize(w, h)
		if count > 0 && padAfterLevel(format, w, h, packed) {
			total = pad16(total)
		}
	}

	return offsets, total
}

// chainCandidates returns the data length of a padded chain and the
// accepted lengths of a packed chain. The second packed length pads only
// by the misalignment of the last level, which older writers produce.
func chainCandidates(format Format, width, height, count int) (int, [2]int) {
	padded := 0
	sum := 0
	last := 0

	for level := 0; level <= count; level++ {
		last = format.DataSize(mipDimension(width, level), mipDimension(height, level))
		sum += last
		padded = pad16(padded + last)
	}

	_, packed := levelLayout(format, width, height, count, true)

	return padded, [2]int{packed, sum + (-last)&15}
}

// detectMipInfo infers the mip chain of an uncompressed entry from its
// declared count and either its declared length or, when that is zero,
// the distance to nextOffset. The count is dropped when neither the
// padded nor the packed layout matches.
func detectMipInfo(entry BitmapEntry, dirOffset, nextOffset int) MipInfo {
	if entry.Compressed() {
		return MipInfo{}
	}

	count := entry.declaredMipCount()
	width := int(entry.Width)
	height := int(entry.Height)
	if count == 0 || width%(1<<count) != 0 || height%(1<<count) != 0 {
		return MipInfo{}
	}

	format := entry.Format()
	if !format.Valid() {
		return MipInfo{}
	}

	length := entry.Length()
	matches := func(total int) bool {
		if length != 0 {
			return length == total+BitmapEntrySize
		}
		return dirOffset+BitmapEntrySize+total == nextOffset
	}

	padded, packed := chainCandidates(format, width, height, count)
	switch {
	case matches(padded):
		return MipInfo{Count: count}
	case matches(packed[0]), matches(packed[1]):
		return MipInfo{Count: count, Packed: true}
	default:
		return MipInfo{}
	}
}

// mipChain returns base followed by count levels, each half the size of
// the previous one. Levels come from the reference scaler; a level it
// does not provide at the expected size is box-filtered from the one above.
func mipChain(base *image.NRGBA, count int) []*image.NRGBA {
	levels := make([]*image.NRGBA, 0, count+1)
	levels = append(levels, base)
	if count == 0 {
		return levels
	}

	generated := bcn.GenerateMipmaps(base, false)
	width := base.Rect.Dx()
	height := base.Rect.Dy()

	for level := 1; level <= count; level++ {
		w := mipDimension(width, level)
		h := mipDimension(height, level)

		var next *image.NRGBA
		if level < len(generated) {
			if b := generated[level].Bounds(); b.Dx() == w && b.Dy() == h {
				next = toNRGBA(generated[level])
			}
		}
		if next == nil {
			next = halve(levels[level-1], w, h)
		}

		levels = append(levels, next)
	}

	return levels
}

// halve box-filters src down to w x h.
func halve(src *image.NRGBA, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sw := src.Rect.Dx()
	sh := src.Rect.Dy()

	for y := 0; y < h; y++ {
		y0 := min(y*2, sh-1)
		y1 := min(y*2+1, sh-1)
		for x := 0; x < w; x++ {
			x0 := min(x*2, sw-1)
			x1 := min(x*2+1, sw-1)

			o := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				sum := int(src.Pix[src.PixOffset(x0, y0)+c]) +
					int(src.Pix[src.PixOffset(x1, y0)+c]) +
					int(src.Pix[src.PixOffset(x0, y1)+c]) +
					int(src.Pix[src.PixOffset(x1, y1)+c])
				dst.Pix[o+c] = uint8((sum + 2) / 4) // #nosec G115 -- average of bytes
			}
		}
	}

	return dst
}
