// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import "encoding/binary"

const (
	// HeaderSize is the size of the file header.
	HeaderSize = 16
	// DirEntrySize is the size of one directory entry.
	DirEntrySize = 8
	// BitmapEntrySize is the size of the header in front of each bitmap's data.
	BitmapEntrySize = 16

	// Magic is the file identifier.
	Magic = "SHPI"

	// DefaultDirectoryID is written when no directory id is configured.
	DefaultDirectoryID = "G264"
	// DefaultEntryName is written when no entry name is configured.
	DefaultEntryName = "FiSH"

	codeFormatMask     = 0x7F
	codeCompressedFlag = 0x80

	miscMipMask  = 0x0FFF
	miscMipShift = 12
)

// Header is the fixed file header.
type Header struct {
	// Size is the total file size recorded by the writer.
	Size int32
	// NumBitmaps is the directory length.
	NumBitmaps int32
	// DirectoryID is a free-form 4 byte tag such as "G264".
	DirectoryID [4]byte
}

// DirEntry names one bitmap and locates its BitmapEntry.
type DirEntry struct {
	Name   [4]byte
	Offset int32
}

// BitmapEntry is the header stored in front of each bitmap's pixel data.
type BitmapEntry struct {
	// Code packs the entry length (high 24 bits), the compressed flag
	// (bit 7) and the format (low 7 bits).
	Code   uint32
	Width  uint16
	Height uint16
	Misc   [4]uint16
}

// Format returns the bitmap format code.
func (e BitmapEntry) Format() Format {
	return Format(e.Code & codeFormatMask)
}

// Compressed reports whether the pixel data is a RefPack stream.
func (e BitmapEntry) Compressed() bool {
	return e.Code&codeCompressedFlag != 0
}

// Length returns the declared entry length, measured from the start of
// the BitmapEntry. Zero means unknown.
func (e BitmapEntry) Length() int {
	return int(e.Code >> 8)
}

// declaredMipCount returns the mip count stored in Misc[3], or 0 when the
// low 12 bits are in use.
func (e BitmapEntry) declaredMipCount() int {
	if e.Misc[3]&miscMipMask != 0 {
		return 0
	}

	return int(e.Misc[3]>>miscMipShift) & 0x0F
}

func parseHeader(b []byte) (Header, [4]byte) {
	var magic [4]byte
	copy(magic[:], b[0:4])

	h := Header{
		Size:       int32(binary.LittleEndian.Uint32(b[4:])), // #nosec G115 -- two's complement field
		NumBitmaps: int32(binary.LittleEndian.Uint32(b[8:])), // #nosec G115 -- two's complement field
	}
	copy(h.DirectoryID[:], b[12:16])

	return h, magic
}

func (h Header) appendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.Size))       // #nosec G115 -- two's complement field
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.NumBitmaps)) // #nosec G115 -- two's complement field
	return append(dst, h.DirectoryID[:]...)
}

func parseDirEntry(b []byte) DirEntry {
	var d DirEntry
	copy(d.Name[:], b[0:4])
	d.Offset = int32(binary.LittleEndian.Uint32(b[4:])) // #nosec G115 -- two's complement field

	return d
}

func (d DirEntry) appendTo(dst []byte) []byte {
	dst = append(dst, d.Name[:]...)
	return binary.LittleEndian.AppendUint32(dst, uint32(d.Offset)) // #nosec G115 -- two's complement field
}

func parseBitmapEntry(b []byte) BitmapEntry {
	e := BitmapEntry{
		Code:   binary.LittleEndian.Uint32(b[0:]),
		Width:  binary.LittleEndian.Uint16(b[4:]),
		Height: binary.LittleEndian.Uint16(b[6:]),
	}
	for i := range e.Misc {
		e.Misc[i] = binary.LittleEndian.Uint16(b[8+i*2:])
	}

	return e
}

// put writes e into the first BitmapEntrySize bytes of dst.
func (e BitmapEntry) put(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:], e.Code)
	binary.LittleEndian.PutUint16(dst[4:], e.Width)
	binary.LittleEndian.PutUint16(dst[6:], e.Height)
	for i, m := range e.Misc {
		binary.LittleEndian.PutUint16(dst[8+i*2:], m)
	}
}

// tag converts a 4 byte string into a fixed tag, falling back to def
// when s is empty.
func tag(s, def string) ([4]byte, error) {
	var t [4]byte
	if s == "" {
		s = def
	}
	if len(s) != len(t) {
		return t, ErrInvalidTag
	}
	copy(t[:], s)

	return t, nil
}
