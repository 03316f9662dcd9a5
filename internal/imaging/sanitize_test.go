package imaging

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeJPEG renders a solid test image of the given size.
func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// withEXIF injects an APP1 segment carrying a minimal little-endian
// TIFF block whose only field is the orientation tag. This mimics what
// phone cameras embed (alongside GPS and device fields) well enough
// for the decoder to pick the orientation up.
func withEXIF(t *testing.T, jpg []byte, orientation uint16) []byte {
	t.Helper()
	require.True(t, bytes.HasPrefix(jpg, []byte{0xFF, 0xD8}), "not a JPEG")

	tiff := []byte{
		'I', 'I', 0x2A, 0x00, // little-endian TIFF magic
		0x08, 0x00, 0x00, 0x00, // offset of IFD0
		0x01, 0x00, // one IFD entry
		0x12, 0x01, // tag 0x0112 orientation
		0x03, 0x00, // type SHORT
		0x01, 0x00, 0x00, 0x00, // count 1
		byte(orientation), byte(orientation >> 8), 0x00, 0x00, // value
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var seg bytes.Buffer
	seg.Write([]byte{0xFF, 0xE1})
	var ln [2]byte
	binary.BigEndian.PutUint16(ln[:], uint16(len(payload)+2))
	seg.Write(ln[:])
	seg.Write(payload)

	out := append([]byte{0xFF, 0xD8}, seg.Bytes()...)
	return append(out, jpg[2:]...)
}

func TestSanitizeStripsEXIF(t *testing.T) {
	src := withEXIF(t, encodeJPEG(t, 10, 10), 1)
	require.Contains(t, string(src), "Exif", "test input must carry EXIF")

	clean, err := Sanitize(src)
	require.NoError(t, err)

	assert.NotContains(t, string(clean), "Exif", "sanitized bytes still carry an EXIF block")

	cfg, format, err := image.DecodeConfig(bytes.NewReader(clean))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestSanitizeAppliesOrientation(t *testing.T) {
	// orientation 6 = rotate 90 CW, so a 6x2 source becomes 2x6
	src := withEXIF(t, encodeJPEG(t, 6, 2), 6)

	clean, err := Sanitize(src)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(clean))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Width)
	assert.Equal(t, 6, cfg.Height)
}

func TestSanitizeUprightUnchangedSize(t *testing.T) {
	clean, err := Sanitize(encodeJPEG(t, 8, 4))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(clean))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestSanitizeConvertsPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 7))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	clean, err := Sanitize(buf.Bytes())
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(clean))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format, "all sanitized output is re-encoded as JPEG")
}

func TestSanitizeRejectsNonImage(t *testing.T) {
	_, err := Sanitize([]byte("definitely not an image"))
	assert.Error(t, err)
}
