package store

import (
    "context"
    "slices"
    "sync"

    "shippingbytotal/internal/rate"
)

// Memory keeps rules, methods and settings in process memory.
// Reads hand out copies, so callers always work on a stable snapshot.
type Memory struct {
    mu           sync.RWMutex
    nextID       int64
    rules        []rate.Rule
    methods      []rate.Method
    restrictions map[int64]map[int64]bool // method id -> restricted country ids
    settings     rate.Settings
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
    return &Memory{restrictions: map[int64]map[int64]bool{}}
}

// ListRules returns a sorted copy of every rule.
func (m *Memory) ListRules(ctx context.Context) ([]rate.Rule, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    out := slices.Clone(m.rules)
    rate.SortForListing(out)
    return out, nil
}

// GetRule returns the rule with id or rate.ErrRuleNotFound.
func (m *Memory) GetRule(ctx context.Context, id int64) (rate.Rule, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    if i := m.indexOf(id); i >= 0 {
        return m.rules[i], nil
    }
    return rate.Rule{}, rate.ErrRuleNotFound
}

// InsertRule stores r under the next id and returns the stored rule.
func (m *Memory) InsertRule(ctx context.Context, r rate.Rule) (rate.Rule, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextID++
    r.ID = m.nextID
    m.rules = append(m.rules, r)
    return r, nil
}

// UpdateRule replaces the rule with r.ID.
func (m *Memory) UpdateRule(ctx context.Context, r rate.Rule) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    i := m.indexOf(r.ID)
    if i < 0 {
        return rate.ErrRuleNotFound
    }
    m.rules[i] = r
    return nil
}

// DeleteRule removes the rule with id.
func (m *Memory) DeleteRule(ctx context.Context, id int64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    i := m.indexOf(id)
    if i < 0 {
        return rate.ErrRuleNotFound
    }
    m.rules = slices.Delete(m.rules, i, i+1)
    return nil
}

func (m *Memory) indexOf(id int64) int {
    if id == 0 {
        return -1
    }
    return slices.IndexFunc(m.rules, func(r rate.Rule) bool { return r.ID == id })
}

// AddMethod registers a shipping method, optionally hidden from some countries.
func (m *Memory) AddMethod(method rate.Method, restrictedCountries ...int64) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.methods = append(m.methods, method)
    if len(restrictedCountries) == 0 {
        return
    }
    set := map[int64]bool{}
    for _, c := range restrictedCountries {
        set[c] = true
    }
    m.restrictions[method.ID] = set
}

// ListMethods returns methods in display order; countryID 0 returns all of them.
func (m *Memory) ListMethods(ctx context.Context, countryID int64) ([]rate.Method, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    out := make([]rate.Method, 0, len(m.methods))
    for _, method := range m.methods {
        if countryID != 0 && m.restrictions[method.ID][countryID] {
            continue
        }
        out = append(out, method)
    }
    slices.SortStableFunc(out, func(a, b rate.Method) int { return a.DisplayOrder - b.DisplayOrder })
    return out, nil
}

// LoadSettings returns the current settings.
func (m *Memory) LoadSettings(ctx context.Context) (rate.Settings, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    return m.settings, nil
}

// SaveSettings replaces the current settings.
func (m *Memory) SaveSettings(ctx context.Context, s rate.Settings) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.settings = s
    return nil
}
