// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

/*
Package refpack implements the RefPack (QFS) compression scheme used by
Maxis and EA titles to wrap FSH bitmaps and other game assets.

A RefPack stream starts with a two byte signature (a flags byte of the
0x10 class followed by 0xFB), found either at offset 0 or at offset 4 when
a compressed-size prefix precedes it. The signature is followed by an
optional compressed-size field and a big-endian uncompressed-size field of
3 bytes, or 4 bytes when the large-file flag is set. The remainder is an
opcode stream of literal runs and back-references into the output.
*/
package refpack
