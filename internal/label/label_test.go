package label

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunnas32/QR-Stock/internal/model"
)

func TestDeepLink(t *testing.T) {
	assert.Equal(t,
		"https://stock.example.com/scan?code=a1b2c3d4",
		DeepLink("https://stock.example.com/scan", "a1b2c3d4"))
}

func TestPNGDimensions(t *testing.T) {
	data, err := PNG("http://localhost:8000/scan", "a1b2c3d4", 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestPNGClampsSize(t *testing.T) {
	data, err := PNG("http://localhost:8000/scan", "a1b2c3d4", 0)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultPNGSize, img.Bounds().Dx())
}

func TestWritePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "qrcodes")

	path, err := WritePNG(dir, "http://localhost:8000/scan", "a1b2c3d4", 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a1b2c3d4.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestLabelPDF(t *testing.T) {
	data, err := LabelPDF("M6 bolts", "a1b2c3d4", "http://localhost:8000/scan")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSheetPDF(t *testing.T) {
	items := []*model.Item{
		{Code: "aaaa1111", Name: "alpha"},
		{Code: "bbbb2222", Name: "beta with a rather long display name"},
		{Code: "cccc3333", Name: "gamma"},
	}
	data, err := SheetPDF(items, "http://localhost:8000/scan")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
