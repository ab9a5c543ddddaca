package refpack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      []byte
		wantSize  int
		wantStart int
		wantSig   int
		wantErr   error
	}{
		{
			name:      "plain-3-byte",
			data:      []byte{0x10, 0xFB, 0x00, 0x00, 0x10},
			wantSize:  16,
			wantStart: 5,
		},
		{
			name:      "prefixed-signature",
			data:      []byte{0x20, 0x00, 0x00, 0x00, 0x10, 0xFB, 0x01, 0x02, 0x03, 0xFC},
			wantSize:  0x010203,
			wantStart: 9,
			wantSig:   4,
		},
		{
			name:      "compressed-size-present",
			data:      []byte{0x11, 0xFB, 0xAA, 0xBB, 0xCC, 0x00, 0x01, 0x00, 0xFC},
			wantSize:  0x100,
			wantStart: 8,
		},
		{
			name:      "large-file",
			data:      []byte{0x90, 0xFB, 0x01, 0x00, 0x00, 0x00, 0xFC},
			wantSize:  0x01000000,
			wantStart: 6,
		},
		{
			name:      "unknown-flag-ignored",
			data:      []byte{0x50, 0xFB, 0x00, 0x00, 0x04, 0xFC},
			wantSize:  4,
			wantStart: 5,
		},
		{name: "no-signature", data: []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, wantErr: ErrUnrecognizedHeader},
		{name: "too-short", data: []byte{0x10}, wantErr: ErrUnrecognizedHeader},
		{name: "truncated-size", data: []byte{0x10, 0xFB, 0x00}, wantErr: ErrTruncatedHeader},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h, err := ParseHeader(tc.data)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, h.UncompressedSize)
			assert.Equal(t, tc.wantStart, h.DataOffset)
			assert.Equal(t, tc.wantSig, h.SignatureOffset)
		})
	}
}

func TestReadHeaderMatchesParseHeader(t *testing.T) {
	t.Parallel()

	blob := []byte{0x20, 0x00, 0x00, 0x00, 0x11, 0xFB, 0x00, 0x00, 0x09, 0x00, 0x00, 0x20, 0xFC}
	prefix := []byte("junkjunk")
	r := bytes.NewReader(append(append([]byte{}, prefix...), blob...))

	fromStream, err := ReadHeader(r, int64(len(prefix)))
	require.NoError(t, err)

	fromMemory, err := ParseHeader(blob)
	require.NoError(t, err)

	assert.Equal(t, fromMemory, fromStream)
	assert.Equal(t, 0x20, fromStream.UncompressedSize)
	assert.Equal(t, 12, fromStream.DataOffset)
}

func TestIsCompressed(t *testing.T) {
	t.Parallel()

	ok, err := IsCompressed(bytes.NewReader([]byte{0x10, 0xFB}), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsCompressed(bytes.NewReader([]byte("SHPI\x00\x00\x00\x00")), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsCompressed(bytes.NewReader([]byte{0x01}), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ReadHeader(bytes.NewReader([]byte("SHPI\x00\x00\x00\x00")), 0)
	assert.ErrorIs(t, err, ErrUnrecognizedHeader)
}

func TestDecompressOpcodes(t *testing.T) {
	t.Parallel()

	// "abcd" literal, then copy 7 bytes from offset 4 with 1 literal "e",
	// then terminal run "xy".
	src := []byte{
		0x10, 0xFB, 0x00, 0x00, 0x0E,
		0xE0, 'a', 'b', 'c', 'd', // 1 byte form: 4 literals
		0x11, 0x03, 'e', // 2 byte form: plain 1, copy 7, offset 4
		0xFE, 'x', 'y', // terminal: 2 literals
	}

	out, err := DecompressAll(src)
	require.NoError(t, err)
	assert.Equal(t, "abcdebcdebcdxy", string(out))
}

func TestDecompressOverlappingCopy(t *testing.T) {
	t.Parallel()

	// one literal then a 3 byte form copy of 10 bytes at offset 1
	src := []byte{
		0x10, 0xFB, 0x00, 0x00, 0x0B,
		0x86, 0x40, 0x00, 'z', // plain 1, copy 10, offset 1
		0xFC,
	}

	out, err := DecompressAll(src)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'z'}, 11), out)
}

func TestDecompressFourByteForm(t *testing.T) {
	t.Parallel()

	lit := []byte("0123")
	// copy 300 bytes at offset 4: copyLen = ((lead&0x0C)<<6)+b4+5
	// 300-5 = 295 = 0x127 -> lead bits 0x04, b4 = 0x27
	src := []byte{0x10, 0xFB, 0x00, 0x01, 0x30, 0xE0}
	src = append(src, lit...)
	src = append(src, 0xC4, 0x00, 0x03, 0x27, 0xFC)

	out, err := DecompressAll(src)
	require.NoError(t, err)
	require.Len(t, out, 304)
	assert.Equal(t, bytes.Repeat(lit, 76), out)
}

func TestDecompressErrors(t *testing.T) {
	t.Parallel()

	t.Run("output-too-small", func(t *testing.T) {
		t.Parallel()

		src := []byte{0x10, 0xFB, 0x00, 0x00, 0x04, 0xE0, 1, 2, 3, 4, 0xFC}
		_, err := Decompress(src, make([]byte, 3))
		require.ErrorIs(t, err, ErrOutputTooSmall)
	})

	t.Run("reference-before-start", func(t *testing.T) {
		t.Parallel()

		src := []byte{0x10, 0xFB, 0x00, 0x00, 0x04, 0x01, 0x05, 'a', 0xFC}
		_, err := Decompress(src, make([]byte, 4))
		require.ErrorIs(t, err, ErrCorruptStream)
	})

	t.Run("overrun", func(t *testing.T) {
		t.Parallel()

		src := []byte{0x10, 0xFB, 0x00, 0x00, 0x02, 0xE0, 1, 2, 3, 4, 0xFC}
		_, err := Decompress(src, make([]byte, 64))
		require.ErrorIs(t, err, ErrCorruptStream)
	})

	t.Run("truncated-literals", func(t *testing.T) {
		t.Parallel()

		src := []byte{0x10, 0xFB, 0x00, 0x00, 0x08, 0xE1, 1, 2}
		_, err := Decompress(src, make([]byte, 8))
		require.ErrorIs(t, err, ErrCorruptStream)
	})

	t.Run("short-stream", func(t *testing.T) {
		t.Parallel()

		src := []byte{0x10, 0xFB, 0x00, 0x00, 0x08, 0xE0, 1, 2, 3, 4, 0xFC}
		_, err := Decompress(src, make([]byte, 8))
		require.ErrorIs(t, err, ErrCorruptStream)
	})
}

func TestDecompressDeterministic(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("deterministic refpack output "), 40)
	src, err := Compress(payload)
	require.NoError(t, err)

	first := make([]byte, len(payload)+16)
	second := make([]byte, len(payload)+16)
	for i := range second {
		second[i] = 0xAA
	}

	n1, err := Decompress(src, first)
	require.NoError(t, err)
	n2, err := Decompress(src, second)
	require.NoError(t, err)

	assert.Equal(t, len(payload), n1)
	assert.Equal(t, n1, n2)
	assert.Equal(t, first[:n1], second[:n2])
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 16), second[n2:], "bytes past the payload must stay untouched")
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	noisy := make([]byte, 200*1024)
	seed := uint32(1)
	for i := range noisy {
		seed = seed*1103515245 + 12345
		noisy[i] = byte(seed >> 24)
	}

	patterned := make([]byte, 300*1024)
	for i := range patterned {
		patterned[i] = byte((i*31 + 7) & 0xff)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "one-byte", data: []byte{42}},
		{name: "short", data: []byte("abc")},
		{name: "literal-only", data: []byte("the quick brown fox")},
		{name: "long-run", data: bytes.Repeat([]byte{0}, 5000)},
		{name: "text", data: bytes.Repeat([]byte("SimCity 4 FSH bitmap "), 700)},
		{name: "noise", data: noisy},
		{name: "patterned-far-offsets", data: patterned},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			packed, err := Compress(tc.data)
			require.NoError(t, err)
			require.True(t, HasSignature(packed))

			out, err := DecompressAll(packed)
			require.NoError(t, err)
			assert.Equal(t, len(tc.data), len(out))
			assert.True(t, bytes.Equal(tc.data, out), "round-trip mismatch")
		})
	}
}

func TestCompressShrinksRepetitiveInput(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	packed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data)/10)
}

func BenchmarkDecompress(b *testing.B) {
	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte((i*7 + i>>5) & 0xff)
	}
	packed, err := Compress(data)
	if err != nil {
		b.Fatalf("compress: %v", err)
	}
	out := make([]byte, len(data))

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decompress(packed, out); err != nil {
			b.Fatalf("decompress: %v", err)
		}
	}
}
