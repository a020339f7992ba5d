// Package scorer implements BM25 ranking plus the name-match and
// metadata boosts applied after BM25 accumulation.
package scorer

import (
	"math"
	"strings"

	"github.com/scoutindex/scoutindex/pkg/analyzer"
)

// Config holds the BM25 tuning constants and the empirical boost weights.
// The boost weights are tuning constants, not derived quantities, so they
// are exposed as configuration.
type Config struct {
	K1 float64
	B  float64

	NameTokenHit        float64
	NameExactMatch      float64
	NamePrefixMatch     float64
	RawSubstringMatch   float64
	NoNameMatchPenalty  float64
	MarketValueWeight   float64
	ProfileLengthWeight float64
}

// DefaultConfig returns the standard BM25 constants and the calibrated
// boost weights.
func DefaultConfig() Config {
	return Config{
		K1:                  1.2,
		B:                   0.75,
		NameTokenHit:        0.75,
		NameExactMatch:      3.0,
		NamePrefixMatch:     1.25,
		RawSubstringMatch:   0.25,
		NoNameMatchPenalty:  -1.5,
		MarketValueWeight:   12.0,
		ProfileLengthWeight: 4.0,
	}
}

// BM25Term computes one term's contribution to a document's score:
// idf(t) * tf_norm, summed by the caller across all query terms.
func BM25Term(cfg Config, tf, df, n int, docLen int, avgDocLen float64) float64 {
	if df <= 0 || tf <= 0 {
		return 0
	}
	idf := math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1.0)

	length := avgDocLen
	if length <= 0 {
		length = 1
	}
	tfF := float64(tf)
	denom := tfF + cfg.K1*(1-cfg.B+cfg.B*(float64(docLen)/length))
	tfNorm := tfF * (cfg.K1 + 1) / denom

	return idf * tfNorm
}

// NameMetadata is one document's precomputed name-matching surface: the
// set of name tokens, their space-joined normalized form, and the raw
// lowercased name.
type NameMetadata struct {
	TokenSet   map[string]struct{}
	Normalized string
	RawLower   string
}

// BuildNameMetadata derives a document's name-matching surface from its
// display name, using the same name-tokenization path as the query side.
func BuildNameMetadata(name string) NameMetadata {
	tokens := analyzer.TokenizeName(name)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return NameMetadata{
		TokenSet:   set,
		Normalized: strings.Join(tokens, " "),
		RawLower:   strings.ToLower(name),
	}
}

// QueryBoostContext bundles the three query-derived forms the boost pass
// compares against each candidate's NameMetadata.
type QueryBoostContext struct {
	Tokens []string // analyzer-normalized query tokens
	Name   string   // space-joined name-normalized query tokens
	Raw    string   // raw lowercased, trimmed query
}

// NewQueryBoostContext derives the three comparison forms from a raw query
// string.
func NewQueryBoostContext(query string, queryTokens []string) QueryBoostContext {
	nameTokens := analyzer.TokenizeName(query)
	return QueryBoostContext{
		Tokens: queryTokens,
		Name:   strings.Join(nameTokens, " "),
		Raw:    strings.TrimSpace(strings.ToLower(query)),
	}
}

// DocumentMetrics carries the optional side metadata for one candidate
// document, consumed only when a name condition fires.
type DocumentMetrics struct {
	HasValuation    bool
	Valuation       float64
	ValuationLogMax float64
	HasLength       bool
	Length          int
	LengthLogMax    float64
}

// Boost computes the post-BM25 boost for one candidate document. The
// "name match fired" flag gates the metadata boosts so bulk text hits
// are not rewarded with popularity.
func Boost(cfg Config, q QueryBoostContext, doc NameMetadata, metrics DocumentMetrics) float64 {
	var boost float64
	fired := false

	if len(q.Tokens) > 0 {
		hits := 0
		for _, tok := range q.Tokens {
			if _, ok := doc.TokenSet[tok]; ok {
				hits++
			}
		}
		if hits > 0 {
			boost += cfg.NameTokenHit * float64(hits)
			fired = true
		}
	}

	if q.Name != "" {
		switch {
		case doc.Normalized == q.Name:
			boost += cfg.NameExactMatch
			fired = true
		case strings.HasPrefix(doc.Normalized, q.Name) && doc.Normalized != q.Name:
			boost += cfg.NamePrefixMatch
			fired = true
		}
	}

	if q.Raw != "" && strings.Contains(doc.RawLower, q.Raw) {
		boost += cfg.RawSubstringMatch
		fired = true
	}

	if !fired && len(q.Tokens) > 0 {
		boost += cfg.NoNameMatchPenalty
	}

	if fired {
		if metrics.HasValuation && metrics.ValuationLogMax > 0 {
			boost += cfg.MarketValueWeight * (math.Log1p(metrics.Valuation) / metrics.ValuationLogMax)
		}
		if metrics.HasLength && metrics.LengthLogMax > 0 {
			boost += cfg.ProfileLengthWeight * (math.Log1p(float64(metrics.Length)) / metrics.LengthLogMax)
		}
	}

	return boost
}
