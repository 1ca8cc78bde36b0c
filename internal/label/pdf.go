package label

// pdf.go — printable label rendering using go-pdf/fpdf.
// Two layouts:
//   - LabelPDF: one 62×42mm label (name, QR, code) for sticker printers
//   - SheetPDF: an A4 grid of labels for batch printing on plain paper

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/gunnas32/QR-Stock/internal/model"
)

const (
	labelW = 62.0 // mm
	labelH = 42.0
	qrEdge = 26.0
)

// LabelPDF renders a single label for one item.
func LabelPDF(name, code, baseURL string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: labelW, Ht: labelH},
	})
	pdf.SetMargins(2, 2, 2)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if err := drawLabel(pdf, 0, 0, labelW, labelH, name, code, baseURL); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("label: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetPDF lays one label per item onto A4 pages, three columns per row,
// in the order given.
func SheetPDF(items []*model.Item, baseURL string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := 210.0, 297.0
	cols := 3
	marginX := (pageW - float64(cols)*labelW) / 2
	rows := int(pageH / labelH)
	marginY := (pageH - float64(rows)*labelH) / 2

	for i, it := range items {
		cell := i % (cols * rows)
		if cell == 0 {
			pdf.AddPage()
		}
		x := marginX + float64(cell%cols)*labelW
		y := marginY + float64(cell/cols)*labelH
		if err := drawLabel(pdf, x, y, labelW, labelH, it.Name, it.Code, baseURL); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("label: write sheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLabel paints one label cell at (x, y): truncated name on top, the QR
// centered, the code in monospace beneath.
func drawLabel(pdf *fpdf.Fpdf, x, y, w, h float64, name, code, baseURL string) error {
	png, err := PNG(baseURL, code, DefaultPNGSize)
	if err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr-"+code, opts, bytes.NewReader(png))

	// Truncate long names
	if len(name) > 28 {
		name = name[:27] + "…"
	}

	pdf.SetXY(x+2, y+2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(w-4, 5, name, "", 1, "C", false, 0, "")

	qrX := x + (w-qrEdge)/2
	pdf.ImageOptions("qr-"+code, qrX, y+8, qrEdge, qrEdge, false, opts, 0, "")

	pdf.SetXY(x+2, y+h-7)
	pdf.SetFont("Courier", "", 10)
	pdf.CellFormat(w-4, 5, code, "", 1, "C", false, 0, "")

	if pdf.Err() {
		return fmt.Errorf("label: draw %s: %w", code, pdf.Error())
	}
	return nil
}
