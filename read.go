// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/woozymasta/fsh/refpack"
)

// ReadOptions configures FSH reading.
type ReadOptions struct {
	// Codec decodes DXT levels. Nil uses ReferenceCodec(nil, nil).
	Codec Codec
	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger
	// Index selects the bitmap returned by Read and ReadConfig.
	Index int
}

func (o *ReadOptions) resolve() ReadOptions {
	var r ReadOptions
	if o != nil {
		r = *o
	}
	if r.Codec == nil {
		r.Codec = ReferenceCodec(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}

	return r
}

// Decoder gives random access to the bitmaps of one FSH file. It owns the
// decompressed payload of a RefPack-wrapped file until Close.
type Decoder struct {
	src     source
	codec   Codec
	logger  *slog.Logger
	dirs    []DirEntry
	entries []BitmapEntry
	header  Header
	wrapped bool
}

// NewDecoder opens an FSH file. The header, the directory and every
// bitmap entry are validated before it returns; an unsupported format
// anywhere in the directory fails the whole open.
func NewDecoder(r io.ReadSeeker, opts *ReadOptions) (*Decoder, error) {
	o := opts.resolve()

	src, wrapped, err := openSource(r, o.Logger)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		src:     src,
		codec:   o.Codec,
		logger:  o.Logger,
		wrapped: wrapped,
	}
	if err := d.readStructure(); err != nil {
		d.src = nil
		return nil, err
	}

	d.logger.Debug("opened fsh",
		slog.Bool("wrapped", wrapped),
		slog.Int("bitmaps", len(d.dirs)),
		slog.String("directory", string(d.header.DirectoryID[:])),
	)

	return d, nil
}

func (d *Decoder) readStructure() error {
	b, err := d.src.readAt(0, HeaderSize)
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrCannotRead, err)
	}

	header, magic := parseHeader(b)
	if string(magic[:]) != Magic {
		return fmt.Errorf("%w: %q", ErrBadMagic, magic[:])
	}
	if header.NumBitmaps < 1 {
		return fmt.Errorf("%w: count %d", ErrNoBitmaps, header.NumBitmaps)
	}

	count := int(header.NumBitmaps)
	if int64(count) > (d.src.size()-HeaderSize)/DirEntrySize {
		return fmt.Errorf("%w: directory of %d entries exceeds file size %d", ErrCannotRead, count, d.src.size())
	}

	b, err = d.src.readAt(HeaderSize, count*DirEntrySize)
	if err != nil {
		return fmt.Errorf("%w: directory: %w", ErrCannotRead, err)
	}

	dirs := make([]DirEntry, count)
	entries := make([]BitmapEntry, count)

	for i := range dirs {
		dirs[i] = parseDirEntry(b[i*DirEntrySize:])

		eb, err := d.src.readAt(int64(dirs[i].Offset), BitmapEntrySize)
		if err != nil {
			return fmt.Errorf("%w: bitmap %d at offset %d: %w", ErrCannotRead, i, dirs[i].Offset, err)
		}

		entries[i] = parseBitmapEntry(eb)
		if f := entries[i].Format(); !f.Valid() {
			return fmt.Errorf("%w: bitmap %d: code 0x%02X", ErrUnsupportedFormat, i, uint8(f))
		}
	}

	d.header = header
	d.dirs = dirs
	d.entries = entries

	return nil
}

// Close releases the decompressed payload. The decoder is unusable afterwards.
func (d *Decoder) Close() error {
	d.src = nil
	return nil
}

// Len returns the number of bitmaps.
func (d *Decoder) Len() int {
	return len(d.dirs)
}

// Header returns the file header.
func (d *Decoder) Header() Header {
	return d.header
}

// Wrapped reports whether the file was RefPack compressed as a whole.
func (d *Decoder) Wrapped() bool {
	return d.wrapped
}

func (d *Decoder) check(i int) error {
	if d.src == nil {
		return ErrDecoderClosed
	}
	if i < 0 || i >= len(d.dirs) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(d.dirs))
	}

	return nil
}

// Dir returns directory entry i.
func (d *Decoder) Dir(i int) (DirEntry, error) {
	if err := d.check(i); err != nil {
		return DirEntry{}, err
	}

	return d.dirs[i], nil
}

// Entry returns the bitmap entry of bitmap i.
func (d *Decoder) Entry(i int) (BitmapEntry, error) {
	if err := d.check(i); err != nil {
		return BitmapEntry{}, err
	}

	return d.entries[i], nil
}

// nextOffset returns the nearest directory offset above bitmap i, or the
// recorded file size when i is the last bitmap in the file.
func (d *Decoder) nextOffset(i int) int {
	own := d.dirs[i].Offset
	next := int64(uint32(d.header.Size))

	for _, dir := range d.dirs {
		if dir.Offset > own && int64(dir.Offset) < next {
			next = int64(dir.Offset)
		}
	}

	return int(next)
}

// MipInfo returns the mip chain stored with bitmap i.
func (d *Decoder) MipInfo(i int) (MipInfo, error) {
	if err := d.check(i); err != nil {
		return MipInfo{}, err
	}

	info := detectMipInfo(d.entries[i], int(d.dirs[i].Offset), d.nextOffset(i))
	d.logger.Debug("mip chain",
		slog.Int("index", i),
		slog.Int("count", info.Count),
		slog.Bool("packed", info.Packed),
	)

	return info, nil
}

// DataSize returns the stored size of bitmap i's pixel data. For a
// compressed entry this is the RefPack blob size: the declared entry
// length when set, otherwise the distance to the next bitmap or to the
// end of a single-bitmap file. For an uncompressed entry it is the size
// of the base level.
func (d *Decoder) DataSize(i int) (int, error) {
	if err := d.check(i); err != nil {
		return 0, err
	}

	entry := d.entries[i]
	if !entry.Compressed() {
		return entry.Format().DataSize(int(entry.Width), int(entry.Height)), nil
	}

	start := int(d.dirs[i].Offset) + BitmapEntrySize

	var size int
	switch {
	case entry.Length() > 0:
		// writers store the distance from the directory offset to the
		// next entry, so the length includes the bitmap entry itself
		size = entry.Length() - BitmapEntrySize
	case len(d.dirs) == 1:
		size = int(d.header.Size) - start
	default:
		size = d.nextOffset(i) - start
	}

	if avail := int(d.src.size()) - start; size > avail {
		size = avail
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: bitmap %d: compressed size %d", ErrCannotRead, i, size)
	}

	return size, nil
}

// RawData returns the stored pixel data of bitmap i in its on-disk
// encoding, decompressed when the entry is compressed. Uncompressed
// entries include their mip chain.
func (d *Decoder) RawData(i int) ([]byte, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}

	entry := d.entries[i]
	start := int64(d.dirs[i].Offset) + BitmapEntrySize
	need := entry.Format().DataSize(int(entry.Width), int(entry.Height))

	if entry.Compressed() {
		size, err := d.DataSize(i)
		if err != nil {
			return nil, err
		}
		blob, err := d.src.readAt(start, size)
		if err != nil {
			return nil, fmt.Errorf("%w: bitmap %d: %w", ErrCannotRead, i, err)
		}
		return inflate(blob, need)
	}

	info, err := d.MipInfo(i)
	if err != nil {
		return nil, err
	}
	if info.Count > 0 {
		_, total := levelLayout(entry.Format(), int(entry.Width), int(entry.Height), info.Count, info.Packed)
		if avail := d.src.size() - start; int64(total) <= avail {
			need = total
		}
	}

	data, err := d.src.readAt(start, need)
	if err != nil {
		return nil, fmt.Errorf("%w: bitmap %d: %w", ErrShortPixelData, i, err)
	}

	return bytes.Clone(data), nil
}

// Image decodes the base level of bitmap i.
func (d *Decoder) Image(i int) (*image.NRGBA, error) {
	data, err := d.RawData(i)
	if err != nil {
		return nil, err
	}

	entry := d.entries[i]
	return decodePixels(data, int(entry.Width), int(entry.Height), entry.Format(), d.codec)
}

// Mipmaps decodes bitmap i and its stored mip chain, largest first.
func (d *Decoder) Mipmaps(i int) ([]*image.NRGBA, error) {
	data, err := d.RawData(i)
	if err != nil {
		return nil, err
	}

	entry := d.entries[i]
	format := entry.Format()
	width := int(entry.Width)
	height := int(entry.Height)

	info := MipInfo{}
	if !entry.Compressed() {
		if info, err = d.MipInfo(i); err != nil {
			return nil, err
		}
	}

	offsets, _ := levelLayout(format, width, height, info.Count, info.Packed)
	levels := make([]*image.NRGBA, 0, len(offsets))

	for level, off := range offsets {
		w := mipDimension(width, level)
		h := mipDimension(height, level)
		if off > len(data) {
			return nil, fmt.Errorf("%w: bitmap %d level %d at %d of %d", ErrShortPixelData, i, level, off, len(data))
		}

		img, err := decodePixels(data[off:], w, h, format, d.codec)
		if err != nil {
			return nil, fmt.Errorf("bitmap %d level %d: %w", i, level, err)
		}
		levels = append(levels, img)
	}

	return levels, nil
}

// Info returns the metadata needed to write bitmap i back unchanged.
func (d *Decoder) Info(i int) (Info, error) {
	if err := d.check(i); err != nil {
		return Info{}, err
	}

	mip, err := d.MipInfo(i)
	if err != nil {
		return Info{}, err
	}

	entry := d.entries[i]
	return Info{
		Index:       i,
		Format:      entry.Format(),
		Width:       int(entry.Width),
		Height:      int(entry.Height),
		Compressed:  entry.Compressed(),
		DirectoryID: string(d.header.DirectoryID[:]),
		EntryName:   string(d.dirs[i].Name[:]),
		Mip:         mip,
	}, nil
}

// ReadConfig reads FSH file configuration without decoding image data.
func ReadConfig(path string) (image.Config, error) {
	return ReadConfigWithOptions(path, nil)
}

// ReadConfigWithOptions reads the configuration of the bitmap selected by opts.
func ReadConfigWithOptions(path string, opts *ReadOptions) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return decodeConfig(f, opts)
}

// Read reads and decodes the first bitmap of an FSH file.
func Read(path string) (image.Image, error) {
	return ReadWithOptions(path, nil)
}

// ReadWithOptions reads and decodes an FSH file with the given options.
func ReadWithOptions(path string, opts *ReadOptions) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return decode(f, opts)
}

// Decode decodes the first bitmap of an FSH stream. It is registered
// with the image package under the name "fsh".
func Decode(r io.Reader) (image.Image, error) {
	rs, err := seekable(r)
	if err != nil {
		return nil, err
	}

	return decode(rs, nil)
}

// DecodeConfig returns the dimensions of the first bitmap of an FSH stream.
func DecodeConfig(r io.Reader) (image.Config, error) {
	rs, err := seekable(r)
	if err != nil {
		return image.Config{}, err
	}

	return decodeConfig(rs, nil)
}

func decode(r io.ReadSeeker, opts *ReadOptions) (image.Image, error) {
	d, err := NewDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	img, err := d.Image(opts.resolve().Index)
	if err != nil {
		return nil, err
	}

	return img, nil
}

func decodeConfig(r io.ReadSeeker, opts *ReadOptions) (image.Config, error) {
	d, err := NewDecoder(r, opts)
	if err != nil {
		return image.Config{}, err
	}
	defer func() { _ = d.Close() }()

	entry, err := d.Entry(opts.resolve().Index)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		Width:      int(entry.Width),
		Height:     int(entry.Height),
		ColorModel: color.NRGBAModel,
	}, nil
}

// seekable returns r when it can seek, otherwise buffers it.
func seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return bytes.NewReader(data), nil
}

func init() {
	image.RegisterFormat("fsh", Magic, Decode, DecodeConfig)

	// RefPack-wrapped files: each accepted flag byte, with the signature at
	// offset 0 or behind a 4 byte prefix
	for _, flags := range wrappedFlags() {
		sig := string([]byte{flags, refpack.Signature})
		image.RegisterFormat("fsh", sig, Decode, DecodeConfig)
		image.RegisterFormat("fsh", "????"+sig, Decode, DecodeConfig)
	}
}

// wrappedFlags lists the RefPack flag bytes a wrapped file may start with.
func wrappedFlags() []byte {
	optional := []byte{refpack.FlagCompressedSize, refpack.FlagUnknown, refpack.FlagLargeFile}

	flags := make([]byte, 0, 1<<len(optional))
	for set := 0; set < 1<<len(optional); set++ {
		f := byte(0x10)
		for i, bit := range optional {
			if set&(1<<i) != 0 {
				f |= bit
			}
		}
		flags = append(flags, f)
	}

	return flags
}
