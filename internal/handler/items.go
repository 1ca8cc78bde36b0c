package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/service"
)

type ItemsHandler struct {
	svc   service.ItemService
	cache *ScanCache
}

func NewItemsHandler(svc service.ItemService, cache *ScanCache) *ItemsHandler {
	return &ItemsHandler{svc: svc, cache: cache}
}

// Create godoc
// @Summary Register an item, allocating a code when none is given
// @Tags items
// @Accept json
// @Produce json
// @Param request body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.ItemResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ItemsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemsHandler) Update(c *gin.Context) {
	code := c.Param("code")
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), code, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), code)
	c.JSON(http.StatusOK, resp)
}

// Rename moves an item to a new code. Both the old and the new code are
// invalidated so a stale label scan cannot resurrect the old entry.
func (h *ItemsHandler) Rename(c *gin.Context) {
	code := c.Param("code")
	var req dto.RenameItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rename(c.Request.Context(), code, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), code, req.NewCode)
	c.JSON(http.StatusOK, resp)
}
