package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gunnas32/QR-Stock/internal/apierror"
	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/service"
)

const scanCacheTTL = 30 * time.Second

// ScanCache keeps scan responses in Redis for a short window. Quantities
// change on every transaction, so mutating handlers invalidate by code and
// the TTL catches anything they miss. All operations are best effort; a
// nil client turns the cache off entirely.
type ScanCache struct {
	rdb *redis.Client
}

func NewScanCache(rdb *redis.Client) *ScanCache {
	return &ScanCache{rdb: rdb}
}

func scanKey(code string) string { return "scan:" + code }

func (sc *ScanCache) get(ctx context.Context, code string) (*dto.ScanResponse, bool) {
	if sc == nil || sc.rdb == nil {
		return nil, false
	}
	cached, err := sc.rdb.Get(ctx, scanKey(code)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ScanResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (sc *ScanCache) put(code string, resp *dto.ScanResponse) {
	if sc == nil || sc.rdb == nil {
		return
	}
	if b, err := json.Marshal(resp); err == nil {
		_ = sc.rdb.Set(context.Background(), scanKey(code), b, scanCacheTTL).Err()
	}
}

// Invalidate drops cached responses for the given codes.
func (sc *ScanCache) Invalidate(ctx context.Context, codes ...string) {
	if sc == nil || sc.rdb == nil || len(codes) == 0 {
		return
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = scanKey(code)
	}
	_ = sc.rdb.Del(ctx, keys...).Err()
}

// ScanHandler serves the landing endpoint QR labels point at.
// No authentication required — read only, no side effects.
type ScanHandler struct {
	svc   service.ItemService
	cache *ScanCache
}

func NewScanHandler(svc service.ItemService, cache *ScanCache) *ScanHandler {
	return &ScanHandler{svc: svc, cache: cache}
}

// Get godoc
// @Summary Scan landing: item name, stock and recent movements (no authentication)
// @Tags scan
// @Produce json
// @Param code query string true "Item code"
// @Success 200 {object} dto.ScanResponse
// @Failure 404 {object} apierror.APIError
// @Router /scan [get]
func (h *ScanHandler) Get(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, apierror.New("missing code parameter"))
		return
	}
	ctx := c.Request.Context()

	if resp, ok := h.cache.get(ctx, code); ok {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.svc.Scan(ctx, code)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cache.put(code, resp)
	c.JSON(http.StatusOK, resp)
}
