// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/woozymasta/fsh/refpack"
)

// refpackError maps a refpack error onto the package error kinds.
func refpackError(err error) error {
	switch {
	case errors.Is(err, refpack.ErrUnrecognizedHeader), errors.Is(err, refpack.ErrTruncatedHeader):
		return fmt.Errorf("%w: %w", ErrCompressionHeader, err)
	case errors.Is(err, refpack.ErrOutputTooSmall):
		return fmt.Errorf("%w: %w", ErrOutputTooSmall, err)
	case errors.Is(err, refpack.ErrCorruptStream):
		return fmt.Errorf("%w: %w", ErrDecompress, err)
	case errors.Is(err, refpack.ErrInputTooLarge):
		return fmt.Errorf("%w: %w", ErrSizeOverflow, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}

// openSource returns the structure source for r. A RefPack-wrapped file
// is decompressed whole into memory; otherwise reads go to r directly.
func openSource(r io.ReadSeeker, logger *slog.Logger) (source, bool, error) {
	wrapped, err := refpack.IsCompressed(r, 0)
	if err != nil {
		return nil, false, refpackError(err)
	}

	stream, err := newStreamSource(r)
	if err != nil {
		return nil, false, err
	}
	if !wrapped {
		return stream, false, nil
	}

	if stream.size() > int64(maxInt32) {
		return nil, false, fmt.Errorf("%w: compressed file of %d bytes", ErrSizeOverflow, stream.size())
	}

	raw, err := stream.readAt(0, int(stream.size()))
	if err != nil {
		return nil, false, err
	}

	header, err := refpack.ParseHeader(raw)
	if err != nil {
		return nil, false, refpackError(err)
	}
	if header.UncompressedSize > maxInt32 {
		return nil, false, fmt.Errorf("%w: uncompressed size %d", ErrSizeOverflow, header.UncompressedSize)
	}

	payload := make([]byte, header.UncompressedSize)
	if _, err := refpack.Decompress(raw, payload); err != nil {
		return nil, false, refpackError(err)
	}

	logger.Debug("decompressed wrapped file",
		slog.Int("compressed", len(raw)),
		slog.Int("uncompressed", len(payload)),
	)

	return memSource(payload), true, nil
}

// inflate decompresses one RefPack entry blob, requiring at least need
// bytes of output.
func inflate(blob []byte, need int) ([]byte, error) {
	header, err := refpack.ParseHeader(blob)
	if err != nil {
		return nil, refpackError(err)
	}
	if header.UncompressedSize > maxInt32 {
		return nil, fmt.Errorf("%w: uncompressed size %d", ErrSizeOverflow, header.UncompressedSize)
	}
	if header.UncompressedSize < need {
		return nil, fmt.Errorf("%w: entry inflates to %d, need %d", ErrShortPixelData, header.UncompressedSize, need)
	}

	out := make([]byte, header.UncompressedSize)
	if _, err := refpack.Decompress(blob, out); err != nil {
		return nil, refpackError(err)
	}

	return out, nil
}

// wrapFile compresses a serialized file into a RefPack stream.
func wrapFile(data []byte) ([]byte, error) {
	packed, err := refpack.Compress(data)
	if err != nil {
		return nil, refpackError(err)
	}

	return packed, nil
}
