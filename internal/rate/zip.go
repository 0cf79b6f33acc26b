package rate

import (
    "strconv"
    "strings"
)

// ZipPostalCodeMaxLength bounds the stored ZIP / postal code pattern.
const ZipPostalCodeMaxLength = 400

// MatchZip reports whether code satisfies the pattern. A pattern is a comma
// separated list of terms; each term is a literal code ("11111"), a code with
// single-character wildcards ("S4? ???"), a starts-with term ("S4*") or an
// inclusive numeric range ("10000:30000"). Comparison ignores case.
// An empty pattern or an empty code never matches.
func MatchZip(pattern, code string) bool {
    code = strings.ToUpper(strings.TrimSpace(code))
    if code == "" {
        return false
    }
    for _, term := range strings.Split(pattern, ",") {
        term = strings.ToUpper(strings.TrimSpace(term))
        if term == "" {
            continue
        }
        if matchZipTerm(term, code) {
            return true
        }
    }
    return false
}

func matchZipTerm(term, code string) bool {
    if lo, hi, ok := strings.Cut(term, ":"); ok {
        return inZipRange(lo, hi, code)
    }
    if prefix, ok := strings.CutSuffix(term, "*"); ok {
        if len(code) < len(prefix) {
            return false
        }
        return matchWildcards(prefix, code[:len(prefix)])
    }
    if len(term) != len(code) {
        return false
    }
    return matchWildcards(term, code)
}

// matchWildcards compares equal-length strings where '?' in term matches any byte.
func matchWildcards(term, code string) bool {
    for i := 0; i < len(term); i++ {
        if term[i] != '?' && term[i] != code[i] {
            return false
        }
    }
    return true
}

func inZipRange(lo, hi, code string) bool {
    from, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
    if err != nil {
        return false
    }
    to, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
    if err != nil {
        return false
    }
    n, err := strconv.ParseInt(code, 10, 64)
    if err != nil {
        return false
    }
    return n >= from && n <= to
}
