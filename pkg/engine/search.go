package engine

import (
	"runtime"
	"sync"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
)

// DefaultLimit keeps result pages usable while still covering the largest
// sets.
const DefaultLimit = 300

// Search scans the card list in order and returns the indexes of matching
// cards, at most limit of them. limit <= 0 means no limit.
func (m *Matcher) Search(list []cards.SearchCard, limit int) []int {
	var out []int
	for i := range list {
		if !m.pf.admit(&list[i]) || !m.Matches(&list[i]) {
			continue
		}
		out = append(out, i)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// SearchParallel shards the scan across workers. Clause evaluation only
// reads the card and the matcher, so shards need no coordination beyond the
// final ordered merge. workers <= 0 picks GOMAXPROCS.
func (m *Matcher) SearchParallel(list []cards.SearchCard, limit, workers int) []int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(list) < 2*workers {
		return m.Search(list, limit)
	}
	shards := make([][]int, workers)
	chunk := (len(list) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(list) {
			hi = len(list)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			var local []int
			for i := lo; i < hi; i++ {
				if m.pf.admit(&list[i]) && m.Matches(&list[i]) {
					local = append(local, i)
					// each shard can stop once it alone could fill the page
					if limit > 0 && len(local) >= limit {
						break
					}
				}
			}
			shards[w] = local
		}(w, lo, hi)
	}
	wg.Wait()
	var out []int
	for _, s := range shards {
		out = append(out, s...)
		if limit > 0 && len(out) >= limit {
			out = out[:limit]
			break
		}
	}
	return out
}
