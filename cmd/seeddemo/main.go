// cmd/seeddemo/main.go — Seeds a small demo inventory.
// Usage: go run ./cmd/seeddemo
// Codes that already exist are skipped, so it is safe to repeat.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gunnas32/QR-Stock/internal/infra"
	"github.com/gunnas32/QR-Stock/internal/model"
	"github.com/gunnas32/QR-Stock/internal/store"
)

type seedItem struct {
	code      string
	name      string
	qty       int
	threshold int
}

var demo = []seedItem{
	{"3f8a9b2c", "Wood screws 4x40", 120, 25},
	{"7d41e05f", "Hex bolts M8", 60, 10},
	{"b2c6d9e1", "Angle brackets 90mm", 35, 8},
	{"e94f7a13", "Paint, white 1L", 12, 3},
	{"c57b20ad", "Sandpaper P120", 80, 15},
}

func main() {
	st := openStore()
	defer st.Close()

	ctx := context.Background()
	// Loading primes the snapshot mirror and tells us which codes are taken.
	existing, err := st.Load(ctx)
	if err != nil {
		log.Fatalf("load error: %v", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, it := range existing {
		taken[it.Code] = true
	}

	recipient := os.Getenv("ALERT_RECIPIENT")
	now := time.Now().UTC()

	seeded := 0
	for _, s := range demo {
		if taken[s.code] {
			fmt.Printf("  %s  %-24s already present, skipped\n", s.code, s.name)
			continue
		}
		entry := model.Entry{
			ID:       uuid.New(),
			ItemCode: s.code,
			Kind:     model.TxIn,
			Quantity: s.qty,
			Person:   "seed",
			Notes:    "initial demo stock",
			At:       now,
		}
		item := &model.Item{
			Code:           s.code,
			Name:           s.name,
			Quantity:       s.qty,
			AlertThreshold: s.threshold,
			AlertRecipient: recipient,
			History:        []model.Entry{entry},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := st.SaveItem(ctx, item, &entry); err != nil {
			log.Fatalf("seed error for %s: %v", s.code, err)
		}
		seeded++
		fmt.Printf("  %s  %-24s qty=%d threshold=%d\n", s.code, s.name, s.qty, s.threshold)
	}

	fmt.Printf("✅ %d demo items seeded\n", seeded)
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
