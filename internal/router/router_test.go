package router_test

// End-to-end tests over the full HTTP stack: snapshot store and in-process
// queue, no external services. The flows mirror how the shop actually uses
// the API: register an item, print its label, scan it, move stock, export.

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunnas32/QR-Stock/internal/config"
	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/registry"
	"github.com/gunnas32/QR-Stock/internal/router"
	"github.com/gunnas32/QR-Stock/internal/store"
	"github.com/gunnas32/QR-Stock/internal/worker"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type env struct {
	engine *gin.Engine
	cfg    *config.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvAt(t, filepath.Join(t.TempDir(), store.DefaultSnapshotPath))
}

// newEnvAt builds the whole stack against one snapshot path so tests can
// simulate a restart by building a second stack on the same file.
func newEnvAt(t *testing.T, snapshotPath string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:           8000,
		Env:            "test",
		WorkerPoolSize: 1,
		PublicBaseURL:  "http://localhost:8000/scan",
		StorageDriver:  "snapshot",
		SnapshotPath:   snapshotPath,
	}

	st := store.NewSnapshot(cfg.SnapshotPath)
	items, err := st.Load(context.Background())
	require.NoError(t, err)

	reg := registry.New()
	reg.Load(items)

	dispatcher := worker.NewDispatcher(nil)
	engine := router.New(cfg, reg, st, nil, nil, dispatcher)
	return &env{engine: engine, cfg: cfg}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (e *env) createItem(t *testing.T, code, name string, threshold int) dto.ItemResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/items", gin.H{
		"code": code, "name": name, "alert_threshold": threshold,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item dto.ItemResponse
	decode(t, w, &item)
	return item
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestItemLifecycle(t *testing.T) {
	e := newEnv(t)

	item := e.createItem(t, "abc12345", "Wood screws", 5)
	assert.Equal(t, "abc12345", item.Code)
	assert.Equal(t, "http://localhost:8000/scan?code=abc12345", item.DeepLink)

	// Duplicate code is a conflict.
	w := e.do(t, http.MethodPost, "/v1/items", gin.H{"code": "abc12345", "name": "Other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Server-side allocation when no code is given.
	w = e.do(t, http.MethodPost, "/v1/items", gin.H{"name": "Hex bolts"})
	require.Equal(t, http.StatusCreated, w.Code)
	var allocated dto.ItemResponse
	decode(t, w, &allocated)
	assert.Len(t, allocated.Code, registry.CodeLength)

	w = e.do(t, http.MethodPatch, "/v1/items/abc12345", gin.H{"name": "Wood screws 4x40"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.ItemResponse
	decode(t, w, &updated)
	assert.Equal(t, "Wood screws 4x40", updated.Name)

	w = e.do(t, http.MethodPost, "/v1/items/abc12345/rename", gin.H{"new_code": "shelf007"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/items/abc12345", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/items/shelf007", nil).Code)

	w = e.do(t, http.MethodGet, "/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ItemListResponse
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)
}

func TestScanTransactExportFlow(t *testing.T) {
	e := newEnv(t)
	e.createItem(t, "abc12345", "Wood screws", 5)

	w := e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "in", "quantity": 10, "person": "ana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tx dto.TransactionResponse
	decode(t, w, &tx)
	assert.Equal(t, 10, tx.Quantity)

	w = e.do(t, http.MethodGet, "/scan?code=abc12345", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var scan dto.ScanResponse
	decode(t, w, &scan)
	assert.Equal(t, "Wood screws", scan.Name)
	assert.Equal(t, 10, scan.Quantity)
	require.Len(t, scan.Recent, 1)
	assert.Equal(t, "in", scan.Recent[0].Kind)

	w = e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "out", "quantity": 4, "person": "ben", "job": "site 7"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tx)
	assert.Equal(t, 6, tx.Quantity)

	// Ledger comes back newest first.
	w = e.do(t, http.MethodGet, "/v1/items/abc12345/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger dto.LedgerListResponse
	decode(t, w, &ledger)
	require.Equal(t, 2, ledger.Total)
	assert.Equal(t, "out", ledger.Data[0].Kind)
	assert.Equal(t, "in", ledger.Data[1].Kind)

	w = e.do(t, http.MethodGet, "/v1/transactions?kind=out", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ledger)
	assert.Equal(t, 1, ledger.Total)

	w = e.do(t, http.MethodGet, "/v1/export.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3, "header plus two ledger rows")
	assert.Contains(t, lines[0], "code,name,kind")

	w = e.do(t, http.MethodGet, "/v1/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestTransactionRejections(t *testing.T) {
	e := newEnv(t)
	e.createItem(t, "abc12345", "Wood screws", 0)

	// More out than on hand.
	e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "in", "quantity": 3})
	w := e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "out", "quantity": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "detail")

	// Zero quantity movements carry no information.
	w = e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "in", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown kind fails validation before the engine sees it.
	w = e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "steal", "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, "/v1/items/nosuch99/transactions", gin.H{"kind": "in", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Rejections leave the quantity alone.
	var item dto.ItemResponse
	got := e.do(t, http.MethodGet, "/v1/items/abc12345", nil)
	decode(t, got, &item)
	assert.Equal(t, 3, item.Quantity)
}

func TestLabelEndpoints(t *testing.T) {
	e := newEnv(t)
	e.createItem(t, "abc12345", "Wood screws", 0)

	w := e.do(t, http.MethodGet, "/v1/items/abc12345/label.png?size=128", nil)
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	w = e.do(t, http.MethodGet, "/v1/items/abc12345/label.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "label-abc12345.pdf")

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/items/nosuch99/label.png", nil).Code)
}

func TestScanValidation(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/scan", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/scan?code=nosuch99", nil).Code)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "snapshot", body["store"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestRestartKeepsLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), store.DefaultSnapshotPath)

	e := newEnvAt(t, path)
	e.createItem(t, "abc12345", "Wood screws", 5)
	e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "in", "quantity": 9})
	e.do(t, http.MethodPost, "/v1/items/abc12345/transactions", gin.H{"kind": "out", "quantity": 2})

	// Fresh stack over the same snapshot file.
	e2 := newEnvAt(t, path)
	w := e2.do(t, http.MethodGet, "/v1/items/abc12345", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var item dto.ItemResponse
	decode(t, w, &item)
	assert.Equal(t, 7, item.Quantity)
	assert.Len(t, item.History, 2)
	assert.Equal(t, "Wood screws", item.Name)
}
