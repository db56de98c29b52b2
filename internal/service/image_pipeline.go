package service

import (
	"bytes"
	"image"
	_ "image/gif" // Register GIF decoder
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp" // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	ProfileImageMaxSize = 1024
	CoverImageMaxSize   = 2048
	WebPQuality         = 70
)

// normalizeImage decodes an uploaded picture, shrinks it to fit in a
// maxSize square and re-encodes it as WebP.
func normalizeImage(r io.Reader, maxSize int) ([]byte, error) {
	decoded, _, err := image.Decode(r)
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	encoded, err := encodeWebP(resizeToFit(decoded, maxSize, maxSize), WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return encoded, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
