// Package query implements the query pipeline: analyze -> lexicon lookup
// -> routing -> barrel fetch (cache) -> candidate accumulation -> BM25 ->
// boost -> sort -> top-k.
package query

import (
	"sort"
	"strconv"
	"time"

	"github.com/scoutindex/scoutindex/pkg/analyzer"
	"github.com/scoutindex/scoutindex/pkg/barrel"
	"github.com/scoutindex/scoutindex/pkg/forwardindex"
	"github.com/scoutindex/scoutindex/pkg/lexicon"
	"github.com/scoutindex/scoutindex/pkg/logger"
	"github.com/scoutindex/scoutindex/pkg/metrics"
	"github.com/scoutindex/scoutindex/pkg/scorer"
	"github.com/scoutindex/scoutindex/pkg/sidedata"
)

// Result is one ranked document in a search response.
type Result struct {
	Rank      int      `json:"rank"`
	DocID     int64    `json:"doc_id"`
	Name      string   `json:"name"`
	Score     float64  `json:"score"`
	Valuation *float64 `json:"valuation,omitempty"`
}

// Response is the full return value of Search: the ranked results plus
// the elapsed time and whether the 500ms soft budget was exceeded.
type Response struct {
	Results    []Result `json:"results"`
	TimingMS   float64  `json:"timing_ms"`
	OverBudget bool     `json:"over_budget"`
}

// Engine holds the read-only view over the process-wide index state
// needed to answer queries: the lexicon, forward index, barrel store,
// and side metadata.
type Engine struct {
	Lexicon      *lexicon.Lexicon
	ForwardIndex *forwardindex.ForwardIndex
	Barrels      *barrel.Store
	Side         *sidedata.Metadata
	Scorer       scorer.Config
	BudgetMS     int
	Log          logger.Logger
	Metrics      *metrics.Manager
}

// New constructs a query Engine over the given index layers.
func New(lex *lexicon.Lexicon, fwd *forwardindex.ForwardIndex, barrels *barrel.Store, side *sidedata.Metadata, cfg scorer.Config, budgetMS int, log logger.Logger) *Engine {
	return &Engine{
		Lexicon:      lex,
		ForwardIndex: fwd,
		Barrels:      barrels,
		Side:         side,
		Scorer:       cfg,
		BudgetMS:     budgetMS,
		Log:          log,
	}
}

// Search runs the full query pipeline and returns up to topK ranked
// results. Unknown query terms are silently dropped (step 2); a query
// with no terms remaining in the lexicon returns an empty result rather
// than erroring (step 3). Overruns of the soft latency budget are
// logged, never returned as an error.
func (e *Engine) Search(query string, topK int) (Response, error) {
	start := time.Now()

	// Steps 1-3: tokenize, dedupe by term_id, drop unknown tokens.
	tokens := analyzer.Tokenize(query)
	termIDs := e.resolveTermIDs(tokens)
	if len(termIDs) == 0 {
		return e.finish(query, nil, start), nil
	}

	// Step 4: required shards. A lexicon-known term_id always has a
	// routing entry; one without is simply excluded from this query's
	// candidate set.
	shardOf := make(map[int64]string, len(termIDs))
	required := make(map[string]struct{})
	for _, tid := range termIDs {
		name, ok := e.Barrels.ShardOf(tid)
		if !ok {
			continue
		}
		shardOf[tid] = name
		required[name] = struct{}{}
	}

	// Step 5: ensure each required shard is resident.
	shards := make(map[string]*barrel.Shard, len(required))
	for name := range required {
		shard, err := e.Barrels.LoadExisting(name)
		if err != nil {
			if e.Log != nil {
				logger.WithShard(e.Log, name).Error("failed to load required shard", "error", err)
			}
			if e.Metrics != nil {
				e.Metrics.RecordShardLoad("error")
			}
			return Response{}, err
		}
		if e.Metrics != nil {
			e.Metrics.RecordShardLoad("ok")
		}
		shards[name] = shard
	}

	// Step 6-7: accumulate BM25 scores per candidate document.
	n := e.ForwardIndex.Count()
	avgLen := e.ForwardIndex.AverageDocLength()
	scores := make(map[int64]float64)

	for _, tid := range termIDs {
		name, ok := shardOf[tid]
		if !ok {
			continue
		}
		shard := shards[name]
		termEntry, ok := shard.InvertedIndex[itoa(tid)]
		if !ok {
			continue
		}
		df := termEntry.DF
		for docIDStr, posting := range termEntry.Postings {
			docID := parseDocID(docIDStr)
			docLen := e.ForwardIndex.DocLength(docID)
			scores[docID] += scorer.BM25Term(e.Scorer, posting.TF, df, n, docLen, avgLen)
		}
	}

	if len(scores) == 0 {
		return e.finish(query, nil, start), nil
	}

	// Step 8: boost pass. The full analyzer output feeds the name-token
	// comparison, not the lexicon-resolved subset: a query token absent
	// from every indexed body can still hit a candidate's name, and
	// dropping it would misfire the no-name-match penalty.
	boostCtx := scorer.NewQueryBoostContext(query, tokens)
	results := make([]Result, 0, len(scores))
	for docID, bm25Score := range scores {
		name, _ := e.ForwardIndex.Name(docID)
		docMeta := scorer.BuildNameMetadata(name)

		metrics := e.documentMetrics(docID)
		boost := scorer.Boost(e.Scorer, boostCtx, docMeta, metrics)

		var valuation *float64
		if metrics.HasValuation {
			v := metrics.Valuation
			valuation = &v
		}

		results = append(results, Result{
			DocID:     docID,
			Name:      name,
			Score:     bm25Score + boost,
			Valuation: valuation,
		})
	}

	// Step 9: sort by score descending, ties broken by doc_id ascending.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	return e.finish(query, results, start), nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseDocID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

func (e *Engine) resolveTermIDs(tokens []string) []int64 {
	seen := make(map[int64]struct{})
	termIDs := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		tid, ok := e.Lexicon.Get(tok)
		if !ok {
			continue
		}
		if _, dup := seen[tid]; dup {
			continue
		}
		seen[tid] = struct{}{}
		termIDs = append(termIDs, tid)
	}
	return termIDs
}

func (e *Engine) documentMetrics(docID int64) scorer.DocumentMetrics {
	if e.Side == nil {
		return scorer.DocumentMetrics{}
	}
	var metrics scorer.DocumentMetrics
	if v, ok := e.Side.Valuations[docID]; ok {
		metrics.HasValuation = true
		metrics.Valuation = v
		metrics.ValuationLogMax = e.Side.ValuationLogMax
	}
	if l, ok := e.Side.ProfileLengths[docID]; ok {
		metrics.HasLength = true
		metrics.Length = l
		metrics.LengthLogMax = e.Side.ProfileLogMax
	}
	return metrics
}

func (e *Engine) finish(query string, results []Result, start time.Time) Response {
	elapsed := time.Since(start)
	elapsedMS := float64(elapsed.Microseconds()) / 1000.0
	overBudget := e.BudgetMS > 0 && elapsedMS > float64(e.BudgetMS)
	if overBudget && e.Log != nil {
		logger.WithQuery(e.Log, query).Warn("query exceeded soft latency budget",
			"elapsed_ms", elapsedMS,
			"budget_ms", e.BudgetMS,
		)
	}
	if e.Metrics != nil {
		outcome := "ok"
		if overBudget {
			outcome = "over_budget"
			e.Metrics.RecordQueryBudgetOverrun()
		}
		e.Metrics.RecordQuery(outcome, elapsed, len(results))
	}
	if results == nil {
		results = []Result{}
	}
	return Response{
		Results:    results,
		TimingMS:   elapsedMS,
		OverBudget: overBudget,
	}
}
