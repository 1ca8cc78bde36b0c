// cmd/labelgen/main.go — Renders QR labels for every registered item.
// Usage: go run ./cmd/labelgen
// Writes one PNG per item plus a combined labels.pdf into LABEL_DIR.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gunnas32/QR-Stock/internal/infra"
	"github.com/gunnas32/QR-Stock/internal/label"
	"github.com/gunnas32/QR-Stock/internal/store"
)

func main() {
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000/scan"
	}
	dir := os.Getenv("LABEL_DIR")
	if dir == "" {
		dir = "qrcodes"
	}

	st := openStore()
	defer st.Close()

	items, err := st.Load(context.Background())
	if err != nil {
		log.Fatalf("load error: %v", err)
	}
	if len(items) == 0 {
		log.Fatal("no items registered, nothing to render")
	}

	for _, it := range items {
		path, err := label.WritePNG(dir, baseURL, it.Code, label.DefaultPNGSize)
		if err != nil {
			log.Fatalf("png error for %s: %v", it.Code, err)
		}
		fmt.Printf("  %s  %s\n", it.Code, path)
	}

	sheet, err := label.SheetPDF(items, baseURL)
	if err != nil {
		log.Fatalf("sheet error: %v", err)
	}
	sheetPath := filepath.Join(dir, "labels.pdf")
	if err := os.WriteFile(sheetPath, sheet, 0o644); err != nil {
		log.Fatalf("write error: %v", err)
	}

	fmt.Printf("✅ %d labels rendered into %s (sheet: %s)\n", len(items), dir, sheetPath)
}

func openStore() store.Store {
	if os.Getenv("STORAGE_DRIVER") == "postgres" {
		db, err := infra.NewDatabase(os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatalf("db connect error: %v", err)
		}
		return store.NewPostgres(db)
	}
	path := os.Getenv("SNAPSHOT_PATH")
	if path == "" {
		path = store.DefaultSnapshotPath
	}
	return store.NewSnapshot(path)
}
