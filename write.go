// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/woozymasta/bcn"
)

// WriteOptions configures FSH writing.
type WriteOptions struct {
	// Codec encodes DXT levels. Nil uses ReferenceCodec with fast bcn settings.
	Codec Codec
	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger
	// DirectoryID is the 4 byte header tag. Empty writes "G264".
	DirectoryID string
	// EntryName is the 4 byte directory entry name. Empty writes "FiSH".
	EntryName string
	// MipCount is the number of levels stored below the base image (0-15).
	MipCount int
	// Format selects the pixel encoding. Zero writes 32-bit BGRA.
	Format Format
	// MipPacked stores mip levels back to back instead of padding each to 16 bytes.
	MipPacked bool
	// QFS compresses the whole output file with RefPack.
	QFS bool
}

func (o *WriteOptions) resolve() WriteOptions {
	var r WriteOptions
	if o != nil {
		r = *o
	}
	if r.Format == 0 {
		r.Format = FormatThirtyTwoBit
	}
	if r.Codec == nil {
		r.Codec = ReferenceCodec(&bcn.EncodeOptions{QualityLevel: bcn.QualityLevelFast}, nil)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}

	return r
}

// validate checks the image size against the requested format and mip count.
func (o *WriteOptions) validate(width, height int) error {
	if !o.Format.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, o.Format)
	}
	if width < 1 || height < 1 || width > maxUint16 || height > maxUint16 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if o.Format.BlockCompressed() && (width&3 != 0 || height&3 != 0) {
		return fmt.Errorf("%w: %dx%d", ErrDXTDimensions, width, height)
	}
	if o.MipCount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMipCount, o.MipCount)
	}
	if o.MipCount > MaxMipCount {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyMipmaps, o.MipCount, MaxMipCount)
	}
	if o.MipCount > 0 {
		if scale := 1 << o.MipCount; width%scale != 0 || height%scale != 0 {
			return fmt.Errorf("%w: %dx%d is not divisible by 2^%d", ErrInvalidMipCount, width, height, o.MipCount)
		}
	}
	if _, err := tag(o.DirectoryID, DefaultDirectoryID); err != nil {
		return fmt.Errorf("%w: directory id %q", err, o.DirectoryID)
	}
	if _, err := tag(o.EntryName, DefaultEntryName); err != nil {
		return fmt.Errorf("%w: entry name %q", err, o.EntryName)
	}

	return nil
}

// dataStart is where the single bitmap's pixel data begins.
const dataStart = HeaderSize + DirEntrySize + BitmapEntrySize

// EstimateSize returns the exact size Encode produces for a width x height
// image, before optional QFS compression.
func EstimateSize(width, height int, opts *WriteOptions) (int, error) {
	o := opts.resolve()
	if err := o.validate(width, height); err != nil {
		return 0, err
	}

	return estimate(width, height, &o)
}

func estimate(width, height int, o *WriteOptions) (int, error) {
	_, total := levelLayout(o.Format, width, height, o.MipCount, o.MipPacked)

	size := dataStart + total
	if size > maxInt32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, size)
	}
	if o.MipCount > 0 && size-HeaderSize-DirEntrySize > maxEntryLength {
		return 0, fmt.Errorf("%w: entry of %d bytes", ErrSizeOverflow, size-HeaderSize-DirEntrySize)
	}

	return size, nil
}

// Encode writes img to w as a single-bitmap FSH file.
func Encode(w io.Writer, img image.Image, opts *WriteOptions) error {
	return EncodeContext(context.Background(), w, img, opts)
}

// EncodeContext is Encode with cancellation. ctx is checked before each
// level is encoded; on cancellation nothing is written to w.
func EncodeContext(ctx context.Context, w io.Writer, img image.Image, opts *WriteOptions) error {
	o := opts.resolve()

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if err := o.validate(width, height); err != nil {
		return err
	}

	size, err := estimate(width, height, &o)
	if err != nil {
		return err
	}

	out, err := encodeFile(ctx, toNRGBA(img), size, &o)
	if err != nil {
		return err
	}

	if o.QFS {
		if out, err = wrapFile(out); err != nil {
			return err
		}
	}

	o.Logger.Debug("encoded fsh",
		slog.String("format", o.Format.String()),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("mipmaps", o.MipCount),
		slog.Bool("qfs", o.QFS),
		slog.Int("bytes", len(out)),
	)

	return writeAll(w, out)
}

func encodeFile(ctx context.Context, base *image.NRGBA, size int, o *WriteOptions) ([]byte, error) {
	width := base.Rect.Dx()
	height := base.Rect.Dy()

	dirID, _ := tag(o.DirectoryID, DefaultDirectoryID)
	name, _ := tag(o.EntryName, DefaultEntryName)
	w16, err := u16FromInt(width)
	if err != nil {
		return nil, err
	}
	h16, err := u16FromInt(height)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, size)
	buf = Header{NumBitmaps: 1, DirectoryID: dirID}.appendTo(buf)
	buf = DirEntry{Name: name, Offset: HeaderSize + DirEntrySize}.appendTo(buf)

	entry := BitmapEntry{Code: uint32(o.Format), Width: w16, Height: h16}
	buf = buf[:len(buf)+BitmapEntrySize]

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, err)
	}
	levels := mipChain(base, o.MipCount)

	for level, img := range levels {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: level %d: %w", ErrAborted, level, err)
		}

		data, err := encodePixels(img, o.Format, o.Codec)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		buf = append(buf, data...)

		if o.MipCount > 0 && padAfterLevel(o.Format, img.Rect.Dx(), img.Rect.Dy(), o.MipPacked) {
			buf = append(buf, make([]byte, dataStart+pad16(len(buf)-dataStart)-len(buf))...)
		}
	}

	if o.MipCount > 0 {
		entry.Code |= uint32(len(buf)-HeaderSize-DirEntrySize) << 8 // #nosec G115 -- bounded by estimate
		entry.Misc[3] = uint16(o.MipCount) << miscMipShift         // #nosec G115 -- at most 15
	}
	entry.put(buf[HeaderSize+DirEntrySize:])

	total, err := i32FromInt(len(buf))
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[4:], uint32(total)) // #nosec G115 -- checked above

	return buf, nil
}

// Write writes img to path as 32-bit BGRA without mipmaps.
func Write(img image.Image, path string) error {
	return WriteWithOptions(img, path, nil)
}

// WriteWithOptions writes img to path. The file is only created once
// encoding succeeded.
func WriteWithOptions(img image.Image, path string, opts *WriteOptions) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	defer func() { _ = f.Close() }()

	if err := writeAll(f, buf.Bytes()); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWrite, path, err)
	}

	return nil
}
