package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gunnas32/QR-Stock/internal/apierror"
	"github.com/gunnas32/QR-Stock/internal/label"
	"github.com/gunnas32/QR-Stock/internal/service"
)

// LabelsHandler renders printable QR labels for registered items. Unknown
// codes 404 so nobody prints a label that scans into nothing.
type LabelsHandler struct {
	svc     service.ItemService
	baseURL string
}

func NewLabelsHandler(svc service.ItemService, baseURL string) *LabelsHandler {
	return &LabelsHandler{svc: svc, baseURL: baseURL}
}

func (h *LabelsHandler) PNG(c *gin.Context) {
	code := c.Param("code")
	if _, err := h.svc.Get(c.Request.Context(), code); err != nil {
		respondError(c, err)
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("size must be an integer"))
			return
		}
		size = parsed
	}

	png, err := label.PNG(h.baseURL, code, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *LabelsHandler) PDF(c *gin.Context) {
	code := c.Param("code")
	item, err := h.svc.Get(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := label.LabelPDF(item.Name, code, h.baseURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="label-`+code+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
