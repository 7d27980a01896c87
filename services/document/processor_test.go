package document

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
)

func pngFixture(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestProcessImageReencodesAsJPEG(t *testing.T) {
	processed, err := ProcessImage(jpegFixture(t, 80, 60))
	require.NoError(t, err)
	w, h := decodedBounds(t, processed)
	require.Equal(t, 80, w)
	require.Equal(t, 60, h)
}

func TestProcessImageAcceptsPNG(t *testing.T) {
	processed, err := ProcessImage(pngFixture(t, 50, 50))
	require.NoError(t, err)
	w, h := decodedBounds(t, processed)
	require.Equal(t, 50, w)
	require.Equal(t, 50, h)
}

func TestProcessImageCapsLongEdge(t *testing.T) {
	processed, err := ProcessImage(pngFixture(t, 2400, 1200))
	require.NoError(t, err)
	w, h := decodedBounds(t, processed)
	require.Equal(t, 1200, w)
	require.Equal(t, 600, h)

	processed, err = ProcessImage(pngFixture(t, 600, 1800))
	require.NoError(t, err)
	w, h = decodedBounds(t, processed)
	require.Equal(t, 400, w)
	require.Equal(t, 1200, h)
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, err := ProcessImage([]byte("definitely not an image"))
	require.True(t, apperror.IsKind(err, apperror.KindProcessing))
}
