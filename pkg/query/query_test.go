package query

import (
	"path/filepath"
	"testing"

	"github.com/scoutindex/scoutindex/pkg/analyzer"
	"github.com/scoutindex/scoutindex/pkg/barrel"
	"github.com/scoutindex/scoutindex/pkg/forwardindex"
	"github.com/scoutindex/scoutindex/pkg/lexicon"
	"github.com/scoutindex/scoutindex/pkg/scorer"
)

type testDoc struct {
	docID int64
	name  string
	body  string
}

// indexDocs builds a minimal, fully-wired index over the given documents,
// mirroring what the incremental writer would produce.
func indexDocs(t *testing.T, docs []testDoc) (*lexicon.Lexicon, *forwardindex.ForwardIndex, *barrel.Store) {
	t.Helper()

	lex := lexicon.New()
	fwd := forwardindex.New()
	dir := t.TempDir()
	store, err := barrel.NewStore(dir, filepath.Join(dir, "term_to_barrel_map.json"), 10)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	if err := store.Bootstrap(4); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}

	for _, doc := range docs {
		tokens := analyzer.Tokenize(doc.name + " " + doc.body)
		freq := make(map[string]int)
		for _, tok := range tokens {
			freq[tok]++
		}

		terms := make([]forwardindex.TermStat, 0, len(freq))
		for tok, tf := range freq {
			termID, isNew := lex.Intern(tok)
			if !isNew {
				lex.IncrementDF(termID)
			}
			terms = append(terms, forwardindex.TermStat{TermID: termID, TF: tf})

			shardName, ok := store.ShardOf(termID)
			if !ok {
				shardName = store.AssignShard(termID)
			}
			shard, err := store.Load(shardName)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if shard.InvertedIndex[itoa(termID)] == nil {
				shard.InvertedIndex[itoa(termID)] = &barrel.TermEntry{Token: tok, Postings: map[string]barrel.Posting{}}
			}
			shard.InvertedIndex[itoa(termID)].Postings[itoa(doc.docID)] = barrel.Posting{TF: tf}
			shard.InvertedIndex[itoa(termID)].DF = lex.DF(termID)
			store.Touch(shard)
		}

		fwd.Append(forwardindex.Entry{
			DocID:       doc.docID,
			Name:        doc.name,
			TotalTerms:  len(tokens),
			UniqueTerms: len(freq),
			Terms:       terms,
		})
	}

	if err := store.FlushAll(); err != nil {
		t.Fatalf("FlushAll() error: %v", err)
	}
	return lex, fwd, store
}

func newEngine(t *testing.T, docID int64, name, body string) *Engine {
	t.Helper()
	lex, fwd, store := indexDocs(t, []testDoc{{docID, name, body}})
	return New(lex, fwd, store, nil, scorer.DefaultConfig(), 500, nil)
}

func TestSearch_NameMatch(t *testing.T) {
	e := newEngine(t, 1, "Lionel Messi", "Messi is a forward who plays for Inter Miami.")

	resp, err := e.Search("Messi", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DocID != 1 {
		t.Fatalf("expected single result doc_id=1, got %+v", resp.Results)
	}
	if resp.Results[0].Rank != 1 {
		t.Fatalf("expected rank 1, got %d", resp.Results[0].Rank)
	}
}

func TestSearch_BodyMatchNoNameBoost(t *testing.T) {
	e := newEngine(t, 1, "Lionel Messi", "Messi is a forward who plays for Inter Miami.")

	resp, err := e.Search("forward", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DocID != 1 {
		t.Fatalf("expected single result doc_id=1, got %+v", resp.Results)
	}
}

func TestSearch_StopWordYieldsEmpty(t *testing.T) {
	e := newEngine(t, 1, "Lionel Messi", "Messi is a forward who plays for Inter Miami.")

	resp, err := e.Search("the", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected empty result for stop word query, got %+v", resp.Results)
	}
}

func TestSearch_DuplicateQueryTermsNotDoubleCounted(t *testing.T) {
	lex, fwd, store := indexDocs(t, []testDoc{{1, "Lionel Messi", "Messi scores goals."}})
	// Boost weights zeroed so the comparison isolates the BM25 accumulator
	// (the raw-substring boost legitimately differs between the two query
	// strings).
	e := New(lex, fwd, store, nil, scorer.Config{K1: 1.2, B: 0.75}, 500, nil)

	single, err := e.Search("messi", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	doubled, err := e.Search("messi messi", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(single.Results) != 1 || len(doubled.Results) != 1 {
		t.Fatalf("expected one result each, got %d and %d", len(single.Results), len(doubled.Results))
	}
	if single.Results[0].Score != doubled.Results[0].Score {
		t.Fatalf("expected repeated query term to not double-count score: single=%v doubled=%v",
			single.Results[0].Score, doubled.Results[0].Score)
	}
}

func TestSearch_ExactNameOutranksBodyMention(t *testing.T) {
	lex, fwd, store := indexDocs(t, []testDoc{
		{1, "John Smith", "A defender known for fierce rivalries."},
		{2, "Alex Kim", "Often compared to John Smith by pundits."},
	})
	e := New(lex, fwd, store, nil, scorer.DefaultConfig(), 500, nil)

	resp, err := e.Search("John Smith", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected both documents as candidates, got %+v", resp.Results)
	}
	if resp.Results[0].DocID != 1 {
		t.Fatalf("expected exact-name document to rank first, got %+v", resp.Results)
	}
}

func TestSearch_NameHitSurvivesLexiconMiss(t *testing.T) {
	// Index only the body, the shape of an externally built index whose
	// lexicon never saw the display name. The query token "ronaldinho"
	// resolves to no term_id, but it must still count as a name hit in
	// the boost pass instead of triggering the no-name-match penalty.
	lex := lexicon.New()
	fwd := forwardindex.New()
	dir := t.TempDir()
	store, err := barrel.NewStore(dir, filepath.Join(dir, "term_to_barrel_map.json"), 10)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	if err := store.Bootstrap(4); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}

	body := "brazil magician dribbling"
	tokens := analyzer.Tokenize(body)
	terms := make([]forwardindex.TermStat, 0, len(tokens))
	for _, tok := range tokens {
		termID, _ := lex.Intern(tok)
		terms = append(terms, forwardindex.TermStat{TermID: termID, TF: 1})

		shardName, ok := store.ShardOf(termID)
		if !ok {
			shardName = store.AssignShard(termID)
		}
		shard, err := store.Load(shardName)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		shard.InvertedIndex[itoa(termID)] = &barrel.TermEntry{
			Token:    tok,
			DF:       1,
			Postings: map[string]barrel.Posting{"1": {TF: 1}},
		}
		store.Touch(shard)
	}
	fwd.Append(forwardindex.Entry{
		DocID:       1,
		Name:        "Ronaldinho",
		TotalTerms:  len(tokens),
		UniqueTerms: len(tokens),
		Terms:       terms,
	})
	if err := store.FlushAll(); err != nil {
		t.Fatalf("FlushAll() error: %v", err)
	}
	e := New(lex, fwd, store, nil, scorer.DefaultConfig(), 500, nil)

	withName, err := e.Search("ronaldinho brazil", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	bodyOnly, err := e.Search("brazil", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(withName.Results) != 1 || len(bodyOnly.Results) != 1 {
		t.Fatalf("expected one result each, got %d and %d", len(withName.Results), len(bodyOnly.Results))
	}
	if withName.Results[0].Score <= bodyOnly.Results[0].Score {
		t.Fatalf("expected the name hit to outscore the penalized body-only query: %v vs %v",
			withName.Results[0].Score, bodyOnly.Results[0].Score)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	lex, fwd, store := indexDocs(t, []testDoc{
		{1, "John Smith", "Defender praised for tackling."},
		{2, "Jon Smithson", "Defender praised for positioning."},
	})
	e := New(lex, fwd, store, nil, scorer.DefaultConfig(), 500, nil)

	first, err := e.Search("defender praised", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	second, err := e.Search("defender praised", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(first.Results) != len(second.Results) {
		t.Fatalf("result count differs between identical searches: %d vs %d", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		if first.Results[i].DocID != second.Results[i].DocID || first.Results[i].Score != second.Results[i].Score {
			t.Fatalf("identical searches diverged at rank %d: %+v vs %+v", i+1, first.Results[i], second.Results[i])
		}
	}
}

func TestSearch_UnknownTermYieldsEmpty(t *testing.T) {
	e := newEngine(t, 1, "Lionel Messi", "Messi scores goals.")

	resp, err := e.Search("zzzznotindexed", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected empty result for unknown term, got %+v", resp.Results)
	}
}
