// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is on the kind alone. The one
// exception is ErrAborted, which wraps the context error instead.
var (
	// ErrFormat indicates malformed or unsupported file structure.
	ErrFormat = errors.New("format error")
	// ErrIO indicates a stream read, write or seek failure.
	ErrIO = errors.New("i/o error")
	// ErrEndOfFile indicates a read started at or past the end of the data.
	ErrEndOfFile = errors.New("end of file")
	// ErrAllocation indicates a buffer size beyond supported limits.
	ErrAllocation = errors.New("allocation failed")
	// ErrParameter indicates an invalid caller-supplied argument.
	ErrParameter = errors.New("invalid parameter")
	// ErrCorruptData indicates pixel or compressed data that cannot be decoded.
	ErrCorruptData = errors.New("corrupt data")
)

var (
	// ErrBadMagic indicates the file does not start with "SHPI".
	ErrBadMagic = fmt.Errorf("%w: missing SHPI magic", ErrFormat)
	// ErrNoBitmaps indicates a header bitmap count below one.
	ErrNoBitmaps = fmt.Errorf("%w: no bitmaps", ErrFormat)
	// ErrUnsupportedFormat indicates a bitmap format code outside the supported set.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported bitmap format", ErrFormat)
	// ErrCannotRead indicates a truncated or out-of-range header, directory or entry.
	ErrCannotRead = fmt.Errorf("%w: cannot read", ErrFormat)
	// ErrCompressionHeader indicates a compressed entry without a RefPack header.
	ErrCompressionHeader = fmt.Errorf("%w: unrecognized compression header", ErrFormat)
	// ErrTooManyMipmaps indicates a mip count above 15.
	ErrTooManyMipmaps = fmt.Errorf("%w: too many mipmaps", ErrFormat)
	// ErrInvalidMipCount indicates dimensions not divisible by 2^mipCount.
	ErrInvalidMipCount = fmt.Errorf("%w: invalid mipmap count", ErrFormat)

	// ErrDXTDimensions indicates DXT output whose size is not a multiple of 4.
	ErrDXTDimensions = fmt.Errorf("%w: DXT image dimensions must be a multiple of 4", ErrParameter)
	// ErrInvalidDimensions indicates an empty image or one above 65535 pixels per side.
	ErrInvalidDimensions = fmt.Errorf("%w: invalid image dimensions", ErrParameter)
	// ErrInvalidTag indicates a directory id or entry name that is not 4 bytes.
	ErrInvalidTag = fmt.Errorf("%w: tag must be 4 bytes", ErrParameter)
	// ErrIndexOutOfRange indicates a bitmap index outside the directory.
	ErrIndexOutOfRange = fmt.Errorf("%w: bitmap index out of range", ErrParameter)
	// ErrDecoderClosed indicates use of a decoder after Close.
	ErrDecoderClosed = fmt.Errorf("%w: decoder closed", ErrParameter)
	// ErrOutputTooSmall indicates a decompression target below the payload size.
	ErrOutputTooSmall = fmt.Errorf("%w: output buffer too small", ErrParameter)

	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = fmt.Errorf("%w: size overflow", ErrAllocation)

	// ErrShortPixelData indicates less pixel data than the entry dimensions need.
	ErrShortPixelData = fmt.Errorf("%w: pixel data too short", ErrCorruptData)
	// ErrDecompress indicates a RefPack stream failed to decode.
	ErrDecompress = fmt.Errorf("%w: decompress failed", ErrCorruptData)
	// ErrDecodeImage indicates block decoding failed.
	ErrDecodeImage = fmt.Errorf("%w: decode image failed", ErrCorruptData)

	// ErrOpenFile indicates FSH file open failed.
	ErrOpenFile = fmt.Errorf("%w: open file failed", ErrIO)
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = fmt.Errorf("%w: create file failed", ErrIO)
	// ErrWrite indicates writing the encoded file failed.
	ErrWrite = fmt.Errorf("%w: write failed", ErrIO)

	// ErrEncodeImage indicates pixel or block encoding failed.
	ErrEncodeImage = fmt.Errorf("%w: encode image failed", ErrParameter)
	// ErrAborted indicates the write was canceled through its context. It
	// carries no kind; the context error is wrapped alongside it.
	ErrAborted = errors.New("write aborted")
)
