// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

// Info is what a read keeps about a bitmap so that saving it again
// reproduces the original format, tags and mip layout.
type Info struct {
	DirectoryID string
	EntryName   string
	Format      Format
	Mip         MipInfo
	Index       int
	Width       int
	Height      int
	Compressed  bool
}

// WriteOptions returns write options that reproduce the bitmap's format,
// directory id, entry name and mip layout.
func (i Info) WriteOptions() *WriteOptions {
	return &WriteOptions{
		Format:      i.Format,
		MipCount:    i.Mip.Count,
		MipPacked:   i.Mip.Packed,
		DirectoryID: i.DirectoryID,
		EntryName:   i.EntryName,
	}
}
