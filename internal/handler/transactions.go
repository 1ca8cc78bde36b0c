package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunnas32/QR-Stock/internal/apierror"
	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/service"
)

type TransactionsHandler struct {
	svc   service.TransactionService
	cache *ScanCache
}

func NewTransactionsHandler(svc service.TransactionService, cache *ScanCache) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, cache: cache}
}

// Apply godoc
// @Summary Record a stock movement against an item
// @Tags transactions
// @Accept json
// @Produce json
// @Param code path string true "Item code"
// @Param request body dto.ApplyTransactionRequest true "Movement"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/items/{code}/transactions [post]
func (h *TransactionsHandler) Apply(c *gin.Context) {
	code := c.Param("code")
	var req dto.ApplyTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Apply(c.Request.Context(), code, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), code)
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionsHandler) ListForItem(c *gin.Context) {
	filter, ok := bindLedgerFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListForItem(c.Request.Context(), c.Param("code"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionsHandler) ListAll(c *gin.Context) {
	filter, ok := bindLedgerFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bindLedgerFilter(c *gin.Context) (dto.LedgerFilter, bool) {
	var filter dto.LedgerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return filter, false
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid filter: "+err.Error()))
		return filter, false
	}
	return filter, true
}
