package rate

import (
    "cmp"
    "slices"
    "strings"

    "github.com/shopspring/decimal"
)

// Match policy names accepted by NewMatcherByName.
const (
    PolicyCountry = "country"
    PolicyScoped  = "scoped"
)

// scope is one dimension of a rule that can be pinned to a value or left as a wildcard.
type scope struct {
    name     string
    wildcard func(r Rule) bool
    exact    func(r Rule, q Query) bool
}

var (
    countryScope = scope{
        name:     "country",
        wildcard: func(r Rule) bool { return r.CountryID == 0 },
        exact:    func(r Rule, q Query) bool { return r.CountryID == q.CountryID },
    }
    stateProvinceScope = scope{
        name:     "state_province",
        wildcard: func(r Rule) bool { return r.StateProvinceID == 0 },
        exact:    func(r Rule, q Query) bool { return r.StateProvinceID == q.StateProvinceID },
    }
    storeScope = scope{
        name:     "store",
        wildcard: func(r Rule) bool { return r.StoreID == 0 },
        exact:    func(r Rule, q Query) bool { return r.StoreID == q.StoreID },
    }
    warehouseScope = scope{
        name:     "warehouse",
        wildcard: func(r Rule) bool { return r.WarehouseID == 0 },
        exact:    func(r Rule, q Query) bool { return r.WarehouseID == q.WarehouseID },
    }
    zipScope = scope{
        name:     "zip_postal_code",
        wildcard: func(r Rule) bool { return strings.TrimSpace(r.ZipPostalCode) == "" },
        exact:    func(r Rule, q Query) bool { return MatchZip(r.ZipPostalCode, q.ZipPostalCode) },
    }
)

// Matcher selects the single best rule for a query.
// Scopes are evaluated in order of descending specificity.
type Matcher struct {
    policy string
    scopes []scope
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithZipMatching adds the ZIP / postal code pattern as the least specific scope.
func WithZipMatching() MatcherOption {
    return func(m *Matcher) {
        m.scopes = append(m.scopes, zipScope)
    }
}

// NewMatcherByName returns a Matcher for the given policy name.
// Unknown names fall back to the country policy.
func NewMatcherByName(name string, opts ...MatcherOption) *Matcher {
    m := &Matcher{}
    switch strings.ToLower(strings.TrimSpace(name)) {
    case PolicyScoped:
        m.policy = PolicyScoped
        m.scopes = []scope{countryScope, stateProvinceScope, storeScope, warehouseScope}
    default:
        m.policy = PolicyCountry
        m.scopes = []scope{countryScope}
    }
    for _, opt := range opts {
        opt(m)
    }
    return m
}

// Policy returns the name of the policy in effect.
func (m *Matcher) Policy() string { return m.policy }

// Find returns the best rule for q, or false when nothing applies.
func (m *Matcher) Find(rules []Rule, q Query) (Rule, bool) {
    candidates := make([]Rule, 0, len(rules))
    for _, r := range rules {
        if r.ShippingMethodID == q.ShippingMethodID && r.Covers(q.Subtotal) {
            candidates = append(candidates, r)
        }
    }
    slices.SortStableFunc(candidates, compareRules)

    candidates = slices.DeleteFunc(candidates, func(r Rule) bool {
        return m.pinnedElsewhere(r, q)
    })
    for _, s := range m.scopes {
        candidates = narrow(candidates, q, s)
    }
    if len(candidates) == 0 {
        return Rule{}, false
    }
    return candidates[0], true
}

// FindRule is the country-only lookup: exact country first, then the wildcard.
func FindRule(rules []Rule, shippingMethodID, countryID int64, subtotal decimal.Decimal) (Rule, bool) {
    return NewMatcherByName(PolicyCountry).Find(rules, Query{
        Subtotal:         subtotal,
        ShippingMethodID: shippingMethodID,
        CountryID:        countryID,
    })
}

// pinnedElsewhere reports whether r is pinned to a value other than q's in any scope.
func (m *Matcher) pinnedElsewhere(r Rule, q Query) bool {
    for _, s := range m.scopes {
        if !s.exact(r, q) && !s.wildcard(r) {
            return true
        }
    }
    return false
}

// narrow keeps the exact matches for s when there are any, otherwise the wildcards.
// rules must already be free of values pinned elsewhere.
func narrow(rules []Rule, q Query, s scope) []Rule {
    var exact []Rule
    for _, r := range rules {
        if s.exact(r, q) {
            exact = append(exact, r)
        }
    }
    if len(exact) > 0 {
        return exact
    }
    return rules
}

// compareRules orders by (CountryID, ShippingMethodID, From), then ID.
func compareRules(a, b Rule) int {
    if c := cmp.Compare(a.CountryID, b.CountryID); c != 0 {
        return c
    }
    if c := cmp.Compare(a.ShippingMethodID, b.ShippingMethodID); c != 0 {
        return c
    }
    if c := a.From.Cmp(b.From); c != 0 {
        return c
    }
    return cmp.Compare(a.ID, b.ID)
}
