package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
	"github.com/PhucNguyen204/cardsearch/pkg/engine"
	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

// Snapshot is one immutable view of the card database: display cards with
// sorted printings, the id index, and the search projections. Reloads build
// a new one and swap it in.
type Snapshot struct {
	Cards  []cards.Card
	ByID   map[int]*cards.Card
	Search []cards.SearchCard
}

// NewSnapshot normalizes a card dump for serving.
func NewSnapshot(list []cards.Card, sets map[string]cards.Set) *Snapshot {
	cards.SortPrintings(list, sets)
	snap := &Snapshot{
		Cards:  list,
		ByID:   make(map[int]*cards.Card, len(list)),
		Search: cards.NewSearchCards(list, sets),
	}
	for i := range list {
		snap.ByID[list[i].ID] = &list[i]
	}
	return snap
}

// ReloadFunc re-reads the card source and returns a fresh snapshot.
type ReloadFunc func() (*Snapshot, error)

type AppServer struct {
	reg     *query.Registry
	mu      sync.RWMutex // protects snapshot swap
	snap    *Snapshot
	limit   int
	workers int
	reload  ReloadFunc // optional
}

func NewAppServer(reg *query.Registry, snap *Snapshot, limit, workers int) *AppServer {
	if limit <= 0 {
		limit = engine.DefaultLimit
	}
	return &AppServer{reg: reg, snap: snap, limit: limit, workers: workers}
}

// SetReload installs the snapshot reloader behind POST /api/v1/reload.
func (s *AppServer) SetReload(fn ReloadFunc) { s.reload = fn }

func (s *AppServer) currentSnapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *AppServer) swapSnapshot(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// RegisterRoutes wires HTTP handlers.
func (s *AppServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/search", s.handleSearch)
	mux.HandleFunc("/api/v1/cards/", s.handleCard)
	mux.HandleFunc("/api/v1/syntax", s.handleSyntax)
	mux.HandleFunc("/api/v1/reload", s.handleReload)
}

// Router returns a fresh mux with all routes registered.
func (s *AppServer) Router() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// ---- Handlers ----

func (s *AppServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// parseErrorBody is the structured error surface for bad queries.
type parseErrorBody struct {
	Kind    string `json:"kind"`
	Token   string `json:"token,omitempty"`
	Pos     int    `json:"pos"`
	Message string `json:"message"`
}

func (s *AppServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	rawQuery := strings.TrimSpace(params.Get("q"))

	limit := s.limit
	if v := params.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= s.limit {
			limit = n
		}
	}

	q, err := query.Parse(s.reg, rawQuery)
	if err != nil {
		var perr *query.ParseError
		if errors.As(err, &perr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": parseErrorBody{
				Kind:    perr.Kind.String(),
				Token:   perr.Token,
				Pos:     perr.Pos,
				Message: perr.Error(),
			}})
			return
		}
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	snap := s.currentSnapshot()
	start := time.Now()
	matcher := engine.Compile(q)
	// scan one past the limit so a page that is exactly full is not
	// reported as cut off
	idx := matcher.SearchParallel(snap.Search, limit+1, s.workers)
	elapsed := time.Since(start)

	truncated := len(idx) > limit
	if truncated {
		idx = idx[:limit]
	}
	matches := make([]cards.Card, 0, len(idx))
	for _, i := range idx {
		matches = append(matches, snap.Cards[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":      q.String(),
		"total":      len(matches),
		"truncated":  truncated,
		"elapsed_us": elapsed.Microseconds(),
		"cards":      matches,
	})
}

func (s *AppServer) handleCard(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/cards/")
	id, err := strconv.Atoi(rest)
	if err != nil {
		writeErr(w, http.StatusBadRequest, errors.New("card id must be numeric"))
		return
	}
	snap := s.currentSnapshot()
	card, ok := snap.ByID[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "card not found"})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// handleSyntax returns the field/operator table, the machine-readable
// version of the query help page.
func (s *AppServer) handleSyntax(w http.ResponseWriter, r *http.Request) {
	type fieldInfo struct {
		Name    string   `json:"name"`
		Kind    string   `json:"kind"`
		Aliases []string `json:"aliases"`
	}
	fields := []fieldInfo{}
	for _, spec := range s.reg.Specs() {
		fields = append(fields, fieldInfo{
			Name:    spec.Name,
			Kind:    spec.Kind.String(),
			Aliases: spec.Aliases,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":            fields,
		"operators":         []string{":", "=", "==", "!=", "<", "<=", ">", ">="},
		"ordered_operators": "numeric fields only",
	})
}

func (s *AppServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.reload == nil {
		writeErr(w, http.StatusNotImplemented, errors.New("no reload source configured"))
		return
	}
	snap, err := s.reload()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.swapSnapshot(snap)
	log.Printf("reloaded card snapshot: %d cards", len(snap.Cards))
	writeJSON(w, http.StatusOK, map[string]any{"cards": len(snap.Cards)})
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}
