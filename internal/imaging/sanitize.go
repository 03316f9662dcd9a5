// Package imaging prepares participant-submitted photos for
// storage. Progress photos routinely carry EXIF blocks with GPS
// coordinates, device identifiers and capture timestamps; stripping
// them is a privacy requirement of the study, not an optimization.
// Re-encoding the decoded pixels to a fresh JPEG drops every
// metadata segment, so the only EXIF value read beforehand is the
// orientation tag, which is applied to the pixels before it is
// discarded.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif" // register gif
	_ "image/png" // register png

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Quality is the JPEG quality used when re-encoding sanitized
// photos. High enough to keep skin detail visible to reviewers.
const Quality = 90

// Sanitize decodes an uploaded image, applies the EXIF orientation
// so the pixels are upright, and re-encodes to a metadata-free
// JPEG. The returned bytes contain no EXIF, no ICC profile and no
// ancillary chunks from the original file.
func Sanitize(data []byte) ([]byte, error) {
	orient := orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = applyOrientation(img, orient)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// orientation reads the EXIF orientation tag, returning 1 (upright)
// when the image has no EXIF block or the tag is absent. Errors are
// deliberately swallowed: a photo with unreadable metadata is still
// a valid photo.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation maps the eight EXIF orientation values onto
// affine transforms. Orientations 5..8 swap width and height.
func applyOrientation(img image.Image, orient int) image.Image {
	if orient == 1 {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var m f64.Aff3
	swapped := false
	switch orient {
	case 2: // mirrored horizontally
		m = f64.Aff3{-1, 0, w, 0, 1, 0}
	case 3: // rotated 180
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case 4: // mirrored vertically
		m = f64.Aff3{1, 0, 0, 0, -1, h}
	case 5: // transposed
		m, swapped = f64.Aff3{0, 1, 0, 1, 0, 0}, true
	case 6: // rotated 90 CW
		m, swapped = f64.Aff3{0, -1, h, 1, 0, 0}, true
	case 7: // transversed
		m, swapped = f64.Aff3{0, -1, h, -1, 0, w}, true
	case 8: // rotated 270 CW
		m, swapped = f64.Aff3{0, 1, 0, -1, 0, w}, true
	default:
		return img
	}

	dw, dh := b.Dx(), b.Dy()
	if swapped {
		dw, dh = dh, dw
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
