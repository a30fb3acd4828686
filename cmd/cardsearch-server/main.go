package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/PhucNguyen204/cardsearch/internal/config"
	"github.com/PhucNguyen204/cardsearch/internal/server"
	"github.com/PhucNguyen204/cardsearch/internal/store"
	"github.com/PhucNguyen204/cardsearch/pkg/cards"
	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARDSEARCH_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg = cfg.ApplyEnv()

	loadSnapshot := snapshotLoader(cfg)

	start := time.Now()
	snap, err := loadSnapshot()
	if err != nil {
		log.Fatalf("load cards: %v", err)
	}
	log.Printf("loaded %d cards in %v", len(snap.Cards), time.Since(start))

	reg := query.NewRegistry()
	app := server.NewAppServer(reg, snap, cfg.ResultLimit, cfg.Workers)
	app.SetReload(loadSnapshot)

	mux := http.NewServeMux()
	app.RegisterRoutes(mux)

	log.Printf("card search listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

// snapshotLoader picks the card source: Postgres when a DSN is configured
// (seeding it from the JSON dump on first run), the JSON files otherwise.
func snapshotLoader(cfg config.Config) server.ReloadFunc {
	return func() (*server.Snapshot, error) {
		sets, err := cards.LoadSets(cfg.SetsPath)
		if err != nil {
			// year filters and printing order degrade gracefully
			log.Printf("sets unavailable (%s): %v", cfg.SetsPath, err)
			sets = map[string]cards.Set{}
		}

		var list []cards.Card
		if cfg.DatabaseURL != "" {
			list, err = loadFromStore(cfg)
		} else {
			list, err = cards.LoadCards(cfg.CardsPath)
		}
		if err != nil {
			return nil, err
		}
		return server.NewSnapshot(list, sets), nil
	}
}

func loadFromStore(cfg config.Config) ([]cards.Card, error) {
	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := st.InitSchema(ctx); err != nil {
		return nil, err
	}
	n, err := st.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		seed, err := cards.LoadCards(cfg.CardsPath)
		if err != nil {
			return nil, err
		}
		if err := st.ReplaceAll(ctx, seed); err != nil {
			return nil, err
		}
		log.Printf("seeded store with %d cards from %s", len(seed), cfg.CardsPath)
	}
	return st.LoadAll(ctx)
}
