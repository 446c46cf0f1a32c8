// pkg/sites/memory.go
package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultSite is what a fresh registry contains when nothing is seeded.
var DefaultSite = Site{ID: "1", Domain: "example.com", Name: "example.com"}

// MemoryProvider is the provider used in development and tests.
type MemoryProvider struct {
	log *zap.SugaredLogger

	mu     sync.RWMutex
	byID   map[string]Site
	byHost map[string]string // domain -> id
}

// NewMemoryProvider builds an in-memory provider holding the given sites.
func NewMemoryProvider(log *zap.SugaredLogger, seed ...Site) *MemoryProvider {
	p := &MemoryProvider{log: log, byID: map[string]Site{}, byHost: map[string]string{}}
	for _, s := range seed {
		p.Add(s)
	}
	return p
}

// NewMemoryProviderFromEnv seeds from LoadSeed, falling back to DefaultSite.
func NewMemoryProviderFromEnv(log *zap.SugaredLogger, seedFile string) (*MemoryProvider, error) {
	seed, err := LoadSeed(seedFile)
	if err != nil {
		return nil, err
	}
	if len(seed) == 0 {
		seed = []Site{DefaultSite}
	}
	p := NewMemoryProvider(log, seed...)
	log.Infow("memory site provider ready", "sites", len(seed))
	return p, nil
}

// LoadSeed reads initial sites from SITE_SEED_JSON or, when that is unset,
// from the YAML file seedFile. Both empty yields no sites.
func LoadSeed(seedFile string) ([]Site, error) {
	if raw := os.Getenv("SITE_SEED_JSON"); raw != "" {
		var seed []Site
		if err := json.Unmarshal([]byte(raw), &seed); err != nil {
			return nil, fmt.Errorf("SITE_SEED_JSON: %w", err)
		}
		return seed, nil
	}
	if seedFile != "" {
		return LoadSeedFile(seedFile)
	}
	return nil, nil
}

// LoadSeedFile reads a YAML list of sites:
//
//   - id: "1"
//     domain: example.com
//     name: Example
func LoadSeedFile(path string) ([]Site, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site seed: %w", err)
	}
	var seed []Site
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse site seed %s: %w", path, err)
	}
	for i, s := range seed {
		if s.ID == "" || s.Domain == "" {
			return nil, fmt.Errorf("parse site seed %s: entry %d needs id and domain", path, i)
		}
	}
	return seed, nil
}

// Add inserts or replaces a site.
func (m *MemoryProvider) Add(s Site) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byID[s.ID]; ok {
		delete(m.byHost, strings.ToLower(old.Domain))
	}
	m.byID[s.ID] = s
	m.byHost[strings.ToLower(s.Domain)] = s.ID
}

func (m *MemoryProvider) SiteByID(ctx context.Context, id string) (Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return Site{}, ErrSiteNotFound
}

func (m *MemoryProvider) SiteByHost(ctx context.Context, host string) (Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byHost[strings.ToLower(host)]; ok {
		return m.byID[id], nil
	}
	return Site{}, ErrSiteNotFound
}

func (m *MemoryProvider) ListSites(ctx context.Context) ([]Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Site, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
