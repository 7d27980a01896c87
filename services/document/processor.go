package document

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"passport-apply/apperror"
)

// Normalization bounds: images are scaled to fit inside maxDimension without
// enlargement and re-encoded as JPEG.
const (
	maxDimension = 1200
	jpegQuality  = 80
)

// ProcessImage normalizes an uploaded document image: decode, cap dimensions,
// re-encode as JPEG. Returns a ProcessingError for undecodable input.
func ProcessImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "Error processing image file", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxDimension || height > maxDimension {
		img = scaleToFit(img, maxDimension)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "Error processing image file", err)
	}
	return buf.Bytes(), nil
}

// scaleToFit downsamples img so the longer edge equals max, preserving the
// aspect ratio. Nearest-neighbor is enough for document scans.
func scaleToFit(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var targetW, targetH int
	if width >= height {
		targetW = max
		targetH = height * max / width
	} else {
		targetH = max
		targetW = width * max / height
	}
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	for y := 0; y < targetH; y++ {
		srcY := bounds.Min.Y + y*height/targetH
		for x := 0; x < targetW; x++ {
			srcX := bounds.Min.X + x*width/targetW
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}
