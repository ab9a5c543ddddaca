// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
	"github.com/woozymasta/fsh/dxt"
)

// Codec encodes and decodes DXT1/DXT3 levels. Encode receives an image
// whose dimensions are multiples of 4; Decode returns an image of exactly
// width x height.
type Codec interface {
	Encode(img *image.NRGBA, format Format) ([]byte, error)
	Decode(data []byte, width, height int, format Format) (*image.NRGBA, error)
}

// referenceCodec delegates to the bcn cluster-fit encoder.
type referenceCodec struct {
	encode *bcn.EncodeOptions
	decode *bcn.DecodeOptions
}

// ReferenceCodec returns the high quality codec backed by bcn. Nil
// options use bcn defaults.
func ReferenceCodec(encode *bcn.EncodeOptions, decode *bcn.DecodeOptions) Codec {
	return referenceCodec{encode: encode, decode: decode}
}

func (c referenceCodec) Encode(img *image.NRGBA, format Format) ([]byte, error) {
	if !format.BlockCompressed() {
		return nil, fmt.Errorf("%w: %s is not block compressed", ErrUnsupportedFormat, format)
	}

	data, _, _, err := bcn.EncodeImageWithOptions(img, format.bcnFormat(), c.encode)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (c referenceCodec) Decode(data []byte, width, height int, format Format) (*image.NRGBA, error) {
	if !format.BlockCompressed() {
		return nil, fmt.Errorf("%w: %s is not block compressed", ErrUnsupportedFormat, format)
	}

	img, err := bcn.DecodeImageWithOptions(data, width, height, format.bcnFormat(), c.decode)
	if err != nil {
		return nil, err
	}

	return toNRGBA(img), nil
}

// fastCodec uses the package's exhaustive endpoint-pair block compressor.
type fastCodec struct{}

// FastCodec returns the codec backed by the dxt package: deterministic
// and cheaper than the reference encoder, at lower quality.
func FastCodec() Codec {
	return fastCodec{}
}

func (fastCodec) Encode(img *image.NRGBA, format Format) ([]byte, error) {
	switch format {
	case FormatDXT1:
		return dxt.EncodeDXT1(img)
	case FormatDXT3:
		return dxt.EncodeDXT3(img)
	default:
		return nil, fmt.Errorf("%w: %s is not block compressed", ErrUnsupportedFormat, format)
	}
}

func (fastCodec) Decode(data []byte, width, height int, format Format) (*image.NRGBA, error) {
	switch format {
	case FormatDXT1:
		return dxt.DecodeDXT1(data, width, height)
	case FormatDXT3:
		return dxt.DecodeDXT3(data, width, height)
	default:
		return nil, fmt.Errorf("%w: %s is not block compressed", ErrUnsupportedFormat, format)
	}
}
