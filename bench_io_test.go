package fsh

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/woozymasta/bcn"
)

// benchImage builds a deterministic image used by IO benchmarks.
func benchImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Deterministic pattern with mixed low/high frequencies.
			img.Set(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),        //nolint:gosec // bounded by mask
				G: uint8((x*13 + y*5) & 0xff),       //nolint:gosec // bounded by mask
				B: uint8((x ^ y ^ (x >> 2)) & 0xff), //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}
	return img
}

// benchWriteOptionsDXT1 defines a representative DXT1 configuration with a full mip chain.
func benchWriteOptionsDXT1(codec Codec) *WriteOptions {
	return &WriteOptions{
		Format:   FormatDXT1,
		MipCount: FullMipCount(512, 512),
		Codec:    codec,
	}
}

// benchInputPath prepares a benchmark FSH file for read benchmarks.
func benchInputPath(b *testing.B, img image.Image, opts *WriteOptions) string {
	b.Helper()

	path := filepath.Join(b.TempDir(), "input.fsh")
	require.NoError(b, WriteWithOptions(img, path, opts), "prepare input file")

	return path
}

func BenchmarkWriteDXT1(b *testing.B) {
	img := benchImage(512, 512)
	path := filepath.Join(b.TempDir(), "write_dxt1.fsh")

	codecs := []struct {
		name  string
		codec Codec
	}{
		{name: "reference", codec: ReferenceCodec(&bcn.EncodeOptions{QualityLevel: bcn.QualityLevelFast}, nil)},
		{name: "fast", codec: FastCodec()},
	}

	for _, c := range codecs {
		opts := benchWriteOptionsDXT1(c.codec)
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(img.Pix)))
			b.ResetTimer()

			for b.Loop() {
				require.NoError(b, WriteWithOptions(img, path, opts), "write")
			}
		})
	}
}

func BenchmarkWriteBGRA(b *testing.B) {
	img := benchImage(512, 512)
	path := filepath.Join(b.TempDir(), "write_bgra.fsh")

	b.Run("plain", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(img.Pix)))
		b.ResetTimer()

		for b.Loop() {
			require.NoError(b, WriteWithOptions(img, path, nil), "write")
		}
	})

	b.Run("QFS", func(b *testing.B) {
		opts := &WriteOptions{QFS: true}

		b.ReportAllocs()
		b.SetBytes(int64(len(img.Pix)))
		b.ResetTimer()

		for b.Loop() {
			require.NoError(b, WriteWithOptions(img, path, opts), "write")
		}
	})
}

func BenchmarkReadDXT1(b *testing.B) {
	img := benchImage(512, 512)
	path := benchInputPath(b, img, benchWriteOptionsDXT1(FastCodec()))

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		_, err := Read(path)
		require.NoError(b, err, "read")
	}
}

func BenchmarkReadBGRA(b *testing.B) {
	img := benchImage(512, 512)

	for _, qfs := range []bool{false, true} {
		name := "plain"
		if qfs {
			name = "QFS"
		}
		path := benchInputPath(b, img, &WriteOptions{QFS: qfs})

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(img.Pix)))
			b.ResetTimer()

			for b.Loop() {
				_, err := Read(path)
				require.NoError(b, err, "read")
			}
		})
	}
}
