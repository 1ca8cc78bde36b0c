package label

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultPNGSize is the rendered QR edge in pixels, large enough to survive
// a phone camera at arm's length off a 300dpi print.
const DefaultPNGSize = 256

// MaxPNGSize caps caller-supplied sizes so the endpoint cannot be asked to
// render absurd bitmaps.
const MaxPNGSize = 2048

// PNG renders the QR code for one item. size is the output edge in pixels;
// zero or negative picks the default.
func PNG(baseURL, code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultPNGSize
	}
	if size > MaxPNGSize {
		size = MaxPNGSize
	}
	png, err := qrcode.Encode(DeepLink(baseURL, code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("label: encode qr for %s: %w", code, err)
	}
	return png, nil
}

// WritePNG renders dir/<code>.png, creating dir if needed, and returns the
// written path.
func WritePNG(dir, baseURL, code string, size int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("label: create dir: %w", err)
	}
	png, err := PNG(baseURL, code, size)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, code+".png")
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("label: write %s: %w", path, err)
	}
	return path, nil
}
