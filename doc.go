// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

/*
Package fsh implements SimCity 4 / Maxis FSH (SHPI) bitmap container read/write
with optional QFS (RefPack) compression.

An FSH file stores a 16 byte header, a directory of named entries and, for
each entry, a 16 byte bitmap header followed by pixel data in one of seven
encodings: DXT1, DXT3, 32-bit BGRA, 24-bit BGR and the 16-bit 5:6:5, 1:5:5:5
and 4:4:4:4 layouts. Uncompressed entries may carry a mip chain, either padded
to 16 bytes per level or packed. Whole files and single entries may be RefPack
compressed.

DXT levels go through a Codec: ReferenceCodec wraps the bcn cluster-fit
encoder, FastCodec the exhaustive endpoint search in package dxt.

Importing the package registers the "fsh" format with image.Decode.
*/
package fsh
