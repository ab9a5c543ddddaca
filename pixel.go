// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
)

// toNRGBA returns img as a zero-origin *image.NRGBA, converting when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}

// padToBlocks extends img to a multiple of 4 in each dimension by
// repeating the last row and column.
func padToBlocks(img *image.NRGBA) *image.NRGBA {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	pw := (w + 3) &^ 3
	ph := (h + 3) &^ 3
	if pw == w && ph == h {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	for y := 0; y < ph; y++ {
		sy := min(y, h-1)
		for x := 0; x < pw; x++ {
			sx := min(x, w-1)
			copy(dst.Pix[dst.PixOffset(x, y):][:4], img.Pix[img.PixOffset(sx, sy):][:4])
		}
	}

	return dst
}

// clearTransparent returns a copy of img whose fully transparent pixels
// have black color.
func clearTransparent(img *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for y := 0; y < dst.Rect.Dy(); y++ {
		src := img.Pix[img.PixOffset(0, y):][:dst.Rect.Dx()*4]
		row := dst.Pix[dst.PixOffset(0, y):][:len(src)]
		for i := 0; i < len(src); i += 4 {
			if src[i+3] != 0 {
				copy(row[i:i+3], src[i:i+3])
			}
			row[i+3] = src[i+3]
		}
	}

	return dst
}

// encodePixels converts img to the on-disk layout of format.
func encodePixels(img *image.NRGBA, format Format, codec Codec) ([]byte, error) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	if format.BlockCompressed() {
		data, err := codec.Encode(padToBlocks(clearTransparent(img)), format)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %dx%d: %w", ErrEncodeImage, format, w, h, err)
		}
		if want := format.DataSize(w, h); len(data) != want {
			return nil, fmt.Errorf("%w: %s %dx%d: %d bytes, want %d", ErrEncodeImage, format, w, h, len(data), want)
		}
		return data, nil
	}

	size := format.DataSize(w, h)
	if size < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	out := make([]byte, size)
	o := 0

	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(0, y):][:w*4]
		for x := 0; x < w*4; x += 4 {
			r, g, b, a := row[x], row[x+1], row[x+2], row[x+3]

			switch format {
			case FormatThirtyTwoBit:
				if a == 0 {
					r, g, b = 0, 0, 0
				}
				out[o], out[o+1], out[o+2], out[o+3] = b, g, r, a
				o += 4

			case FormatTwentyFourBit:
				if a == 0 {
					r, g, b = 0, 0, 0
				}
				out[o], out[o+1], out[o+2] = b, g, r
				o += 3

			case FormatSixteenBit:
				binary.LittleEndian.PutUint16(out[o:], uint16(r>>3)<<11|uint16(g>>2)<<5|uint16(b>>3))
				o += 2

			case FormatSixteenBitAlpha:
				var v uint16
				if a >= 128 {
					v = 0x8000 | uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
				}
				binary.LittleEndian.PutUint16(out[o:], v)
				o += 2

			case FormatSixteenBit4x4:
				var v uint16
				if a != 0 {
					v = uint16(a>>4)<<12 | uint16(r>>4)<<8 | uint16(g>>4)<<4 | uint16(b>>4)
				}
				binary.LittleEndian.PutUint16(out[o:], v)
				o += 2
			}
		}
	}

	return out, nil
}

// decodePixels converts one level stored in format into an image.
func decodePixels(data []byte, w, h int, format Format, codec Codec) (*image.NRGBA, error) {
	size := format.DataSize(w, h)
	if size < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if len(data) < size {
		return nil, fmt.Errorf("%w: %s %dx%d: have %d, need %d", ErrShortPixelData, format, w, h, len(data), size)
	}
	data = data[:size]

	if format.BlockCompressed() {
		img, err := codec.Decode(data, w, h, format)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %dx%d: %w", ErrDecodeImage, format, w, h, err)
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	i := 0

	for p := 0; p < len(img.Pix); p += 4 {
		px := img.Pix[p : p+4 : p+4]

		switch format {
		case FormatThirtyTwoBit:
			px[0], px[1], px[2], px[3] = data[i+2], data[i+1], data[i], data[i+3]
			i += 4

		case FormatTwentyFourBit:
			px[0], px[1], px[2], px[3] = data[i+2], data[i+1], data[i], 0xFF
			i += 3

		case FormatSixteenBit:
			v := binary.LittleEndian.Uint16(data[i:])
			px[0] = uint8(v>>11&0x1F) << 3
			px[1] = uint8(v>>5&0x3F) << 2
			px[2] = uint8(v&0x1F) << 3
			px[3] = 0xFF
			i += 2

		case FormatSixteenBitAlpha:
			v := binary.LittleEndian.Uint16(data[i:])
			px[0] = uint8(v>>10&0x1F) << 3
			px[1] = uint8(v>>5&0x1F) << 3
			px[2] = uint8(v&0x1F) << 3
			if v&0x8000 != 0 {
				px[3] = 0xFF
			}
			i += 2

		case FormatSixteenBit4x4:
			v := binary.LittleEndian.Uint16(data[i:])
			px[0] = uint8(v>>8&0x0F) * 0x11
			px[1] = uint8(v>>4&0x0F) * 0x11
			px[2] = uint8(v&0x0F) * 0x11
			px[3] = uint8(v>>12&0x0F) * 0x11
			i += 2
		}
	}

	return img, nil
}
