package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gunnas32/QR-Stock/internal/export"
	"github.com/gunnas32/QR-Stock/internal/registry"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler dumps the whole inventory as a spreadsheet download.
// Files are built in memory first so a render error can still produce a
// clean JSON response instead of a truncated download.
type ExportHandler struct {
	reg *registry.Registry
}

func NewExportHandler(reg *registry.Registry) *ExportHandler {
	return &ExportHandler{reg: reg}
}

func (h *ExportHandler) XLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.reg.List()); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportName("inventory", "xlsx")+`"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (h *ExportHandler) CSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.reg.List()); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportName("ledger", "csv")+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func exportName(stem, ext string) string {
	return stem + "-" + time.Now().UTC().Format("20060102") + "." + ext
}
