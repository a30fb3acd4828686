package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
)

// Store persists the card dump in Postgres so the server can come up without
// the JSON files. The engine still scans in memory; rows carry the full card
// payload.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection (tests use this with sqlmock).
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cards (
        id      BIGINT PRIMARY KEY,
        name    TEXT NOT NULL,
        payload JSONB NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS printings (
        card_id     BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
        set_code    TEXT NOT NULL,
        set_name    TEXT NOT NULL,
        rarity      TEXT NOT NULL DEFAULT '',
        price_cents BIGINT
    )`,
	`CREATE INDEX IF NOT EXISTS printings_card_id_idx ON printings(card_id)`,
}

// InitSchema creates the tables if needed.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ReplaceAll swaps in a fresh card dump inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, list []cards.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return err
	}
	for i := range list {
		c := &list[i]
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode card %d: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, payload) VALUES ($1, $2, $3)`,
			c.ID, c.Name, payload); err != nil {
			return fmt.Errorf("insert card %d: %w", c.ID, err)
		}
		for _, pr := range c.Printings {
			var cents sql.NullInt64
			if v, ok := pr.PriceCents(); ok {
				cents = sql.NullInt64{Int64: v, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO printings (card_id, set_code, set_name, rarity, price_cents) VALUES ($1, $2, $3, $4, $5)`,
				c.ID, pr.SetCode, pr.SetName, pr.Rarity, cents); err != nil {
				return fmt.Errorf("insert printing %s: %w", pr.SetCode, err)
			}
		}
	}
	return tx.Commit()
}

// LoadAll returns every stored card, id order.
func (s *Store) LoadAll(ctx context.Context) ([]cards.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM cards ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []cards.Card
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var c cards.Card
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("decode card payload: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one card; (nil, nil) when absent.
func (s *Store) GetByID(ctx context.Context, id int) (*cards.Card, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM cards WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c cards.Card
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("decode card payload: %w", err)
	}
	return &c, nil
}

// Count returns the number of stored cards.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}
