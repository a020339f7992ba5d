// Package writer implements incremental document addition: tokenize ->
// update lexicon -> update forward index -> update barrels -> persist.
// Every index layer is already in memory (owned by pkg/engine); the
// writer's job is to mutate them consistently and durably under a single
// caller-held lock.
package writer

import (
	"strconv"
	"time"

	"github.com/scoutindex/scoutindex/pkg/analyzer"
	"github.com/scoutindex/scoutindex/pkg/barrel"
	"github.com/scoutindex/scoutindex/pkg/forwardindex"
	"github.com/scoutindex/scoutindex/pkg/lexicon"
	"github.com/scoutindex/scoutindex/pkg/logger"
	"github.com/scoutindex/scoutindex/pkg/metrics"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

// Document is the caller-supplied payload for AddDocument.
type Document struct {
	DocID   int64  `json:"player_id"`
	Name    string `json:"player_name"`
	Content string `json:"detailed_content"`
}

// Stats reports what AddDocument did.
type Stats struct {
	DocID          int64   `json:"player_id"`
	Name           string  `json:"player_name"`
	TotalTerms     int     `json:"total_terms"`
	UniqueTerms    int     `json:"unique_terms"`
	NewTokensAdded int     `json:"new_tokens_added"`
	BarrelsUpdated int     `json:"barrels_updated"`
	ElapsedSeconds float64 `json:"time_seconds"`
	MeetsBudget    bool    `json:"meets_budget"`
}

// defaultBudgetSeconds is the default ceiling on one add-document call.
const defaultBudgetSeconds = 60.0

// maxStoredPositions caps how many token-position offsets are kept per term
// per document, mirroring the bulk build's forward-index shape so a future
// phrase/proximity scorer has the same data regardless of how a document
// was indexed.
const maxStoredPositions = 10

// Writer mutates the lexicon, forward index, and barrel store for one new
// document at a time. Callers (pkg/engine) serialize calls to AddDocument
// under their own write mutex -- this type holds no lock of its own.
type Writer struct {
	Lexicon      *lexicon.Lexicon
	ForwardIndex *forwardindex.ForwardIndex
	Barrels      *barrel.Store
	Log          logger.Logger
	Metrics      *metrics.Manager

	// BudgetSeconds bounds one AddDocument call; overruns are logged and
	// reported in Stats, never fatal.
	BudgetSeconds float64
}

// New constructs a Writer over the given index layers.
func New(lex *lexicon.Lexicon, fwd *forwardindex.ForwardIndex, barrels *barrel.Store, log logger.Logger) *Writer {
	return &Writer{
		Lexicon:       lex,
		ForwardIndex:  fwd,
		Barrels:       barrels,
		Log:           log,
		BudgetSeconds: defaultBudgetSeconds,
	}
}

// AddDocument runs the six-step incremental indexing pipeline for one new
// document: validate, tokenize, update the lexicon, update the forward
// index, update the touched barrels, and persist everything durably.
func (w *Writer) AddDocument(doc Document) (Stats, error) {
	start := time.Now()

	if doc.DocID == 0 {
		return Stats{}, &scouterrors.MissingFieldError{Field: "player_id"}
	}
	if doc.Name == "" {
		return Stats{}, &scouterrors.MissingFieldError{Field: "player_name"}
	}
	if w.ForwardIndex.Has(doc.DocID) {
		return Stats{}, &scouterrors.DuplicateDocumentError{DocID: doc.DocID}
	}

	// Step 1: tokenize name + content, exactly as the bulk build pipeline
	// does, so incremental and bulk documents are scored identically.
	tokens := analyzer.Tokenize(doc.Name + " " + doc.Content)
	if len(tokens) == 0 {
		return Stats{}, &scouterrors.EmptyDocumentError{DocID: doc.DocID}
	}

	freq := make(map[string]int, len(tokens))
	positions := make(map[string][]int, len(tokens))
	for i, tok := range tokens {
		freq[tok]++
		if len(positions[tok]) < maxStoredPositions {
			positions[tok] = append(positions[tok], i)
		}
	}

	// Step 2: update the lexicon -- intern unseen tokens at df=1, increment
	// df for tokens already known to the corpus.
	newTokens := 0
	termStats := make([]forwardindex.TermStat, 0, len(freq))
	termIDByToken := make(map[string]int64, len(freq))
	for token, tf := range freq {
		termID, isNew := w.Lexicon.Intern(token)
		if isNew {
			newTokens++
		} else {
			w.Lexicon.IncrementDF(termID)
		}
		termIDByToken[token] = termID
		termStats = append(termStats, forwardindex.TermStat{TermID: termID, TF: tf, Positions: positions[token]})
	}

	// Step 3: append the forward-index entry.
	w.ForwardIndex.Append(forwardindex.Entry{
		DocID:       doc.DocID,
		Name:        doc.Name,
		TotalTerms:  len(tokens),
		UniqueTerms: len(freq),
		Terms:       termStats,
	})

	// Step 4: update every barrel touched by this document's tokens. A
	// term's current df is read back from the lexicon (the source of
	// truth) after step 2's mutation, so barrel df and lexicon df can
	// never diverge between the new-token and existing-token paths.
	touched := make(map[string]struct{})
	for token, tf := range freq {
		termID := termIDByToken[token]

		shardName, ok := w.Barrels.ShardOf(termID)
		if !ok {
			shardName = w.Barrels.AssignShard(termID)
		}

		shard, err := w.Barrels.Load(shardName)
		if err != nil {
			if w.Log != nil {
				logger.WithShard(w.Log, shardName).Error("failed to load shard during add-document", "doc_id", doc.DocID, "error", err)
			}
			if w.Metrics != nil {
				w.Metrics.RecordShardLoad("error")
			}
			return Stats{}, err
		}
		if w.Metrics != nil {
			w.Metrics.RecordShardLoad("ok")
		}

		key := termIDKey(termID)
		entry := shard.InvertedIndex[key]
		if entry == nil {
			entry = &barrel.TermEntry{Token: token, Postings: make(map[string]barrel.Posting)}
			shard.InvertedIndex[key] = entry
		}
		entry.Postings[docIDKey(doc.DocID)] = barrel.Posting{TF: tf}
		entry.DF = w.Lexicon.DF(termID)

		w.Barrels.Touch(shard)
		touched[shardName] = struct{}{}
	}

	// Step 5/6: persist durably. Barrels first (via the cache's write-back
	// path), then the routing table; each write atomic via
	// temp-file+rename. The lexicon and forward index flush is left to
	// Persist.
	if err := w.Barrels.FlushAll(); err != nil {
		return Stats{}, err
	}
	if err := w.Barrels.SaveRoutingTable(); err != nil {
		return Stats{}, err
	}

	elapsed := time.Since(start)
	stats := Stats{
		DocID:          doc.DocID,
		Name:           doc.Name,
		TotalTerms:     len(tokens),
		UniqueTerms:    len(freq),
		NewTokensAdded: newTokens,
		BarrelsUpdated: len(touched),
		ElapsedSeconds: elapsed.Seconds(),
		MeetsBudget:    elapsed.Seconds() < w.BudgetSeconds,
	}

	if !stats.MeetsBudget {
		if w.Log != nil {
			logger.WithDocument(w.Log, doc.DocID).Warn("add-document exceeded time budget",
				"elapsed_seconds", stats.ElapsedSeconds,
				"budget_seconds", w.BudgetSeconds,
			)
		}
		if w.Metrics != nil {
			w.Metrics.RecordAddDocumentBudgetOverrun()
		}
	}

	if w.Metrics != nil {
		outcome := "ok"
		if !stats.MeetsBudget {
			outcome = "over_budget"
		}
		w.Metrics.RecordAddDocument(outcome, elapsed)
	}

	return stats, nil
}

// Persist writes the lexicon and forward index to disk. Called by the
// owning engine after AddDocument succeeds, and whenever a bulk build
// completes; kept separate so callers can batch many AddDocument calls
// behind a single lexicon/forward-index flush.
func (w *Writer) Persist(lexiconPath, forwardIndexPath string) error {
	if err := w.Lexicon.Save(lexiconPath); err != nil {
		return err
	}
	return w.ForwardIndex.Save(forwardIndexPath)
}

func termIDKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func docIDKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
