// Package engine is the composition root that owns the lexicon, forward
// index, barrel store, and side metadata behind a single writer mutex,
// and exposes the read path (Search) and write path (AddDocument,
// BuildFromDocuments) used by the HTTP API and the CLI.
package engine

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/scoutindex/scoutindex/config"
	"github.com/scoutindex/scoutindex/pkg/barrel"
	"github.com/scoutindex/scoutindex/pkg/forwardindex"
	"github.com/scoutindex/scoutindex/pkg/lexicon"
	"github.com/scoutindex/scoutindex/pkg/logger"
	"github.com/scoutindex/scoutindex/pkg/metrics"
	"github.com/scoutindex/scoutindex/pkg/query"
	"github.com/scoutindex/scoutindex/pkg/scorer"
	"github.com/scoutindex/scoutindex/pkg/sidedata"
	"github.com/scoutindex/scoutindex/pkg/writer"
)

type engineState int32

const (
	stateIdle engineState = iota
	stateLoaded
	stateError
)

// EngineStatus is the detailed status payload served at /status.
type EngineStatus struct {
	State           string `json:"state"`
	Documents       int    `json:"documents"`
	LexiconSize     int    `json:"lexicon_size"`
	BarrelCacheHits int64  `json:"barrel_cache_hits"`
	BarrelCacheMiss int64  `json:"barrel_cache_misses"`
	BarrelEvictions int64  `json:"barrel_cache_evictions"`
}

// Document is the public add-document request shape, re-exported from
// pkg/writer so callers need not import it directly.
type Document = writer.Document

// AddDocumentStats is the public add-document response shape.
type AddDocumentStats = writer.Stats

// SearchResponse is the public search response shape.
type SearchResponse = query.Response

// Engine owns every index layer for one data root and serializes all
// mutating operations behind writeMu. Reads (Search) take no lock of
// their own: every index layer is already safe for concurrent readers,
// and the writer never replaces an index layer in place, only mutates it.
type Engine struct {
	cfg     *config.Config
	log     logger.Logger
	state   atomic.Int32
	writeMu sync.Mutex

	lexicon      *lexicon.Lexicon
	forwardIndex *forwardindex.ForwardIndex
	barrels      *barrel.Store
	side         *sidedata.Metadata

	query   *query.Engine
	writer  *writer.Writer
	metrics *metrics.Manager
}

// SetMetrics wires a metrics manager into the engine's read and write
// paths. Called once after Load, from the serve command, since the
// manager is constructed from cfg.Metrics independently of index loading.
func (e *Engine) SetMetrics(m *metrics.Manager) {
	e.metrics = m
	if e.query != nil {
		e.query.Metrics = m
	}
	if e.writer != nil {
		e.writer.Metrics = m
	}
	if e.barrels != nil {
		e.barrels.SetObserver(m)
	}
	e.reportIndexSizeMetrics()
}

func (e *Engine) reportIndexSizeMetrics() {
	if e.metrics == nil || engineState(e.state.Load()) != stateLoaded {
		return
	}
	e.metrics.SetDocumentsIndexed(e.forwardIndex.Count())
	e.metrics.SetLexiconSize(e.lexicon.Size())
}

// New constructs an Engine from configuration without loading anything
// from disk; call Load to bootstrap or open the on-disk index.
func New(cfg *config.Config, log logger.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = logger.New(nil)
	}
	e := &Engine{cfg: cfg, log: log}
	e.state.Store(int32(stateIdle))
	return e, nil
}

// Load opens (bootstrapping if absent) the lexicon, forward index, barrel
// store, and side metadata rooted at cfg.Data, then wires the read and
// write engines over them. Side-metadata load failures are recoverable
// (logged, not fatal): the boost pass simply runs without market-value or
// profile-length signal until the files exist.
func (e *Engine) Load() error {
	data := e.cfg.Data

	lexiconPath := filepath.Join(data.Root, data.LexiconPath)
	forwardIndexPath := filepath.Join(data.Root, data.ForwardIndexPath)
	barrelsDir := filepath.Join(data.Root, data.BarrelsDir)
	routingPath := filepath.Join(barrelsDir, data.RoutingTablePath)

	lex, err := lexicon.Load(lexiconPath)
	if err != nil {
		e.state.Store(int32(stateError))
		return err
	}

	fwd, err := forwardindex.Load(forwardIndexPath)
	if err != nil {
		e.state.Store(int32(stateError))
		return err
	}

	barrels, err := barrel.NewStore(barrelsDir, routingPath, e.cfg.Index.BarrelCacheSize)
	if err != nil {
		e.state.Store(int32(stateError))
		return err
	}
	if err := barrels.Bootstrap(e.cfg.Index.InitialShards); err != nil {
		e.state.Store(int32(stateError))
		return err
	}

	var side *sidedata.Metadata
	if data.MarketValueDir != "" || data.ProfilesPath != "" {
		marketDir := ""
		if data.MarketValueDir != "" {
			marketDir = filepath.Join(data.Root, data.MarketValueDir)
		}
		profilesPath := ""
		if data.ProfilesPath != "" {
			profilesPath = filepath.Join(data.Root, data.ProfilesPath)
		}
		meta, valuationErr, lengthErr := sidedata.Load(marketDir, profilesPath)
		side = meta
		if valuationErr != nil {
			e.log.Warn("market value side data unavailable", "error", valuationErr)
		}
		if lengthErr != nil {
			e.log.Warn("profile length side data unavailable", "error", lengthErr)
		}
	}

	e.lexicon = lex
	e.forwardIndex = fwd
	e.barrels = barrels
	e.side = side

	scorerCfg := scorer.Config{
		K1:                  e.cfg.Index.BM25.K1,
		B:                   e.cfg.Index.BM25.B,
		NameTokenHit:        e.cfg.Index.Boosts.NameTokenHit,
		NameExactMatch:      e.cfg.Index.Boosts.NameExactMatch,
		NamePrefixMatch:     e.cfg.Index.Boosts.NamePrefixMatch,
		RawSubstringMatch:   e.cfg.Index.Boosts.RawSubstringMatch,
		NoNameMatchPenalty:  e.cfg.Index.Boosts.NoNameMatchPenalty,
		MarketValueWeight:   e.cfg.Index.Boosts.MarketValueWeight,
		ProfileLengthWeight: e.cfg.Index.Boosts.ProfileLengthWeight,
	}

	e.query = query.New(e.lexicon, e.forwardIndex, e.barrels, e.side, scorerCfg, e.cfg.Index.QueryBudgetMS, e.log)
	e.writer = writer.New(e.lexicon, e.forwardIndex, e.barrels, e.log)
	if e.cfg.Index.AddDocumentBudgetSeconds > 0 {
		e.writer.BudgetSeconds = float64(e.cfg.Index.AddDocumentBudgetSeconds)
	}

	e.state.Store(int32(stateLoaded))
	e.log.Info("index loaded",
		"documents", e.forwardIndex.Count(),
		"lexicon_size", e.lexicon.Size(),
	)
	return nil
}

// Search answers a query against the currently loaded index.
func (e *Engine) Search(queryStr string, topK int) (SearchResponse, error) {
	if engineState(e.state.Load()) != stateLoaded {
		return SearchResponse{}, &EngineNotLoadedError{}
	}
	return e.query.Search(queryStr, topK)
}

// AddDocument incrementally indexes one new document and persists the
// lexicon and forward index afterward. Barrel writes are already durable
// by the time writer.AddDocument returns; this only adds the lexicon /
// forward-index flush that pkg/writer leaves to its caller so many
// AddDocument calls in BuildFromDocuments can share one flush.
func (e *Engine) AddDocument(doc Document) (AddDocumentStats, error) {
	if engineState(e.state.Load()) != stateLoaded {
		return AddDocumentStats{}, &EngineNotLoadedError{}
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	stats, err := e.writer.AddDocument(doc)
	if err != nil {
		return AddDocumentStats{}, err
	}

	data := e.cfg.Data
	lexiconPath := filepath.Join(data.Root, data.LexiconPath)
	forwardIndexPath := filepath.Join(data.Root, data.ForwardIndexPath)
	if err := e.writer.Persist(lexiconPath, forwardIndexPath); err != nil {
		return AddDocumentStats{}, err
	}

	e.reportIndexSizeMetrics()
	return stats, nil
}

// BuildFromDocuments bulk-ingests a batch of documents under a single
// writer-mutex hold and a single lexicon/forward-index flush at the end.
// It runs the same per-document pipeline as AddDocument, so a bulk build
// and an equivalent sequence of incremental adds converge on the same
// index state.
func (e *Engine) BuildFromDocuments(docs []Document) ([]AddDocumentStats, error) {
	if engineState(e.state.Load()) != stateLoaded {
		return nil, &EngineNotLoadedError{}
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	results := make([]AddDocumentStats, 0, len(docs))
	for _, doc := range docs {
		stats, err := e.writer.AddDocument(doc)
		if err != nil {
			return results, err
		}
		results = append(results, stats)
	}

	data := e.cfg.Data
	lexiconPath := filepath.Join(data.Root, data.LexiconPath)
	forwardIndexPath := filepath.Join(data.Root, data.ForwardIndexPath)
	if err := e.writer.Persist(lexiconPath, forwardIndexPath); err != nil {
		return results, err
	}

	e.reportIndexSizeMetrics()
	return results, nil
}

// IsHealthy reports liveness: the engine has not entered a fatal state.
func (e *Engine) IsHealthy() bool {
	return engineState(e.state.Load()) != stateError
}

// IsReady reports readiness: the index is loaded and able to serve
// queries and writes.
func (e *Engine) IsReady() bool {
	return engineState(e.state.Load()) == stateLoaded
}

// GetStatus returns a snapshot of the engine's current state and index
// size, served at /status.
func (e *Engine) GetStatus() EngineStatus {
	status := EngineStatus{State: e.stateString()}
	if engineState(e.state.Load()) != stateLoaded {
		return status
	}
	status.Documents = e.forwardIndex.Count()
	status.LexiconSize = e.lexicon.Size()
	status.BarrelCacheHits, status.BarrelCacheMiss, status.BarrelEvictions = e.barrels.Stats()
	return status
}

func (e *Engine) stateString() string {
	switch engineState(e.state.Load()) {
	case stateIdle:
		return "idle"
	case stateLoaded:
		return "loaded"
	case stateError:
		return "error"
	default:
		return "unknown"
	}
}

// EngineNotLoadedError reports a Search/AddDocument call before Load
// succeeded.
type EngineNotLoadedError struct{}

func (e *EngineNotLoadedError) Error() string {
	return "engine index is not loaded"
}

