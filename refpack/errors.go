// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package refpack

import "errors"

var (
	// ErrUnrecognizedHeader indicates no RefPack signature at offset 0 or 4.
	ErrUnrecognizedHeader = errors.New("unrecognized compression header")
	// ErrTruncatedHeader indicates the header extends past the input.
	ErrTruncatedHeader = errors.New("truncated compression header")
	// ErrOutputTooSmall indicates the destination cannot hold the payload.
	ErrOutputTooSmall = errors.New("output buffer too small")
	// ErrCorruptStream indicates an opcode reads or writes out of bounds.
	ErrCorruptStream = errors.New("corrupt compressed stream")
	// ErrInputTooLarge indicates the payload exceeds the 32-bit size field.
	ErrInputTooLarge = errors.New("input too large to compress")
	// ErrReadHeader indicates reading the header from a stream failed.
	ErrReadHeader = errors.New("reading compression header failed")
)
