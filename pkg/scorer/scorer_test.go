package scorer

import "testing"

func TestBM25Term_MonotonicInTF(t *testing.T) {
	cfg := DefaultConfig()
	low := BM25Term(cfg, 1, 5, 100, 50, 40)
	high := BM25Term(cfg, 5, 5, 100, 50, 40)
	if !(high > low) {
		t.Fatalf("expected score to increase with tf: low=%v high=%v", low, high)
	}
}

func TestBM25Term_MonotonicInDF(t *testing.T) {
	cfg := DefaultConfig()
	rare := BM25Term(cfg, 3, 2, 1000, 50, 40)
	common := BM25Term(cfg, 3, 500, 1000, 50, 40)
	if !(rare > common) {
		t.Fatalf("expected rarer term (lower df) to score higher: rare=%v common=%v", rare, common)
	}
}

func TestBM25Term_ZeroTFOrDF(t *testing.T) {
	cfg := DefaultConfig()
	if s := BM25Term(cfg, 0, 5, 100, 10, 10); s != 0 {
		t.Fatalf("expected 0 for tf=0, got %v", s)
	}
	if s := BM25Term(cfg, 3, 0, 100, 10, 10); s != 0 {
		t.Fatalf("expected 0 for df=0, got %v", s)
	}
}

func TestBuildNameMetadata(t *testing.T) {
	meta := BuildNameMetadata("Lionel Messi")
	if meta.Normalized != "lionel messi" {
		t.Fatalf("expected normalized 'lionel messi', got %q", meta.Normalized)
	}
	if _, ok := meta.TokenSet["messi"]; !ok {
		t.Fatal("expected token set to contain 'messi'")
	}
	if meta.RawLower != "lionel messi" {
		t.Fatalf("expected raw_lower 'lionel messi', got %q", meta.RawLower)
	}
}

func TestBoost_ExactNameMatch(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("John Smith")
	q := NewQueryBoostContext("John Smith", []string{"john", "smith"})

	boost := Boost(cfg, q, doc, DocumentMetrics{})
	// token hits (2 * 0.75) + exact match (3.0) + raw substring (0.25)
	want := cfg.NameTokenHit*2 + cfg.NameExactMatch + cfg.RawSubstringMatch
	if boost != want {
		t.Fatalf("expected boost %v, got %v", want, boost)
	}
}

func TestBoost_ProperPrefixMatch(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("Lionel Messi Cuccittini")
	q := NewQueryBoostContext("Lionel Messi", []string{"lionel", "messi"})

	boost := Boost(cfg, q, doc, DocumentMetrics{})
	if boost <= 0 {
		t.Fatalf("expected positive boost for proper prefix match, got %v", boost)
	}
	// Exact match bonus must not also apply.
	exactOnly := cfg.NameTokenHit*2 + cfg.NameExactMatch
	if boost == exactOnly {
		t.Fatal("prefix match incorrectly counted as exact match")
	}
}

func TestBoost_NoMatchPenalty(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("Alex Kim")
	q := NewQueryBoostContext("forward", []string{"forward"})

	boost := Boost(cfg, q, doc, DocumentMetrics{})
	if boost != cfg.NoNameMatchPenalty {
		t.Fatalf("expected penalty %v, got %v", cfg.NoNameMatchPenalty, boost)
	}
}

func TestBoost_NoPenaltyWhenQueryTokensEmpty(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("Alex Kim")
	q := NewQueryBoostContext("the", nil) // stop word filtered out upstream

	boost := Boost(cfg, q, doc, DocumentMetrics{})
	if boost != 0 {
		t.Fatalf("expected no boost/penalty with empty query tokens, got %v", boost)
	}
}

func TestBoost_MetadataGatedByNameMatch(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("Alex Kim")
	q := NewQueryBoostContext("striker", []string{"striker"})

	// No name condition fires, so metadata boosts must not apply even
	// though valuation/length are present.
	metrics := DocumentMetrics{HasValuation: true, Valuation: 1e8, ValuationLogMax: 18, HasLength: true, Length: 5000, LengthLogMax: 9}
	boost := Boost(cfg, q, doc, metrics)
	if boost != cfg.NoNameMatchPenalty {
		t.Fatalf("expected metadata boosts to be gated off, got %v", boost)
	}
}

func TestBoost_MetadataAppliesWhenNameMatchFires(t *testing.T) {
	cfg := DefaultConfig()
	doc := BuildNameMetadata("Alex Kim")
	q := NewQueryBoostContext("Alex Kim", []string{"alex", "kim"})

	metrics := DocumentMetrics{HasValuation: true, Valuation: 1e8, ValuationLogMax: 18.42, HasLength: true, Length: 5000, LengthLogMax: 8.52}
	boost := Boost(cfg, q, doc, metrics)
	baseline := cfg.NameTokenHit*2 + cfg.NameExactMatch + cfg.RawSubstringMatch
	if boost <= baseline {
		t.Fatalf("expected metadata boosts to add to name-match baseline %v, got %v", baseline, boost)
	}
}
