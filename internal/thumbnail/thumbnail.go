// Package thumbnail derives small preview images from uploaded event photos.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// maxSide is what the longer dimension is scaled down to.
const maxSide = 200

// Generate resizes the image so its longer side equals 200 pixels, keeping
// the aspect ratio, and re-encodes it in the same format family. Only JPEG
// and PNG are supported; any other extension yields (nil, nil).
func Generate(data []byte, filename string) ([]byte, error) {
	var format imaging.Format
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		format = imaging.JPEG
	case ".png":
		format = imaging.PNG
	default:
		return nil, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging.Decode -> %w", err)
	}

	bounds := img.Bounds()
	var thumb image.Image
	if bounds.Dx() >= bounds.Dy() {
		thumb = imaging.Resize(img, maxSide, 0, imaging.Lanczos)
	} else {
		thumb = imaging.Resize(img, 0, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, thumb, format); err != nil {
		return nil, fmt.Errorf("imaging.Encode -> %w", err)
	}

	return buf.Bytes(), nil
}
