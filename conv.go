// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

const (
	maxInt32  = int(^uint32(0) >> 1)
	maxUint16 = int(^uint16(0))

	// maxEntryLength is the largest value of the 24-bit entry length field.
	maxEntryLength = 1<<24 - 1
)

// i32FromInt converts an int to an int32.
func i32FromInt(n int) (int32, error) {
	if n < 0 || n > maxInt32 {
		return 0, ErrSizeOverflow
	}

	return int32(n), nil
}

// u16FromInt converts an int to a uint16.
func u16FromInt(n int) (uint16, error) {
	if n < 0 || n > maxUint16 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint16(n), nil
}

// pad16 rounds n up to a multiple of 16.
func pad16(n int) int {
	return (n + 15) &^ 15
}
