// Package workspace holds the tables loaded for one conversion run under
// named slots such as "evolution" and "recon".
package workspace

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/pkg/logger"
)

// Source names a file to load into a slot
type Source struct {
	Slot   string
	Path   string
	Config *parsers.LoadConfig
}

// Workspace is safe for concurrent use. Writing a slot replaces its table.
type Workspace struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	stats  map[string]*parsers.LoadStats

	loader         *parsers.Loader
	maxConcurrency int
	logger         logger.Logger
}

// New creates an empty workspace
func New(loader *parsers.Loader, log logger.Logger) *Workspace {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if loader == nil {
		loader = parsers.NewLoader(log)
	}
	return &Workspace{
		tables:         make(map[string]*table.Table),
		stats:          make(map[string]*parsers.LoadStats),
		loader:         loader,
		maxConcurrency: 4,
		logger:         log.WithComponent("workspace"),
	}
}

// Set stores t in slot. The slot no longer has load statistics.
func (w *Workspace) Set(slot string, t *table.Table) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables[slot] = t
	delete(w.stats, slot)
}

// Get returns the table in slot
func (w *Workspace) Get(slot string) (*table.Table, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.tables[slot]
	return t, ok
}

// Stats returns the load statistics of slot when it was filled from a file
func (w *Workspace) Stats(slot string) (*parsers.LoadStats, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.stats[slot]
	return s, ok
}

// Require returns the table in slot or an error naming the empty slot
func (w *Workspace) Require(slot string) (*table.Table, error) {
	t, ok := w.Get(slot)
	if !ok {
		return nil, fmt.Errorf("no table loaded for %q", slot)
	}
	return t, nil
}

// Clear empties slot
func (w *Workspace) Clear(slot string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.tables, slot)
	delete(w.stats, slot)
}

// Slots returns the filled slot names in sorted order
func (w *Workspace) Slots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	slots := make([]string, 0, len(w.tables))
	for slot := range w.tables {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// Load reads src into its slot
func (w *Workspace) Load(ctx context.Context, src Source) error {
	t, stats, err := w.loader.Load(ctx, src.Path, src.Config)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.tables[src.Slot] = t
	w.stats[src.Slot] = stats
	w.mu.Unlock()

	w.logger.WithFields(logger.Fields{
		"slot":      src.Slot,
		"file_path": src.Path,
		"rows":      t.Len(),
	}).Debug("Slot loaded")
	return nil
}

// LoadAll reads every source in parallel. Slots that loaded are kept even
// when another source fails; the first failure is returned.
func (w *Workspace) LoadAll(ctx context.Context, sources ...Source) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.maxConcurrency)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			return w.Load(ctx, src)
		})
	}
	return g.Wait()
}
