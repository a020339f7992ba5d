// Package forwardindex implements the per-document record of which terms
// appear and at what frequency -- the dual of the inverted index.
package forwardindex

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/scoutindex/scoutindex/pkg/atomicfile"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

// TermStat is one term's statistics within a document.
type TermStat struct {
	TermID    int64 `json:"term_id"`
	TF        int   `json:"tf"`
	Positions []int `json:"positions,omitempty"`
}

// Entry is one document's forward-index record.
type Entry struct {
	DocID       int64      `json:"player_id"`
	Name        string     `json:"player_name"`
	TotalTerms  int        `json:"total_terms"`
	UniqueTerms int        `json:"unique_terms"`
	Terms       []TermStat `json:"terms"`
}

// ForwardIndex is the process-wide per-document term-statistics store.
type ForwardIndex struct {
	mu       sync.RWMutex
	byDocID  map[int64]*Entry
	order    []int64
	totalLen int64
}

// New returns an empty forward index.
func New() *ForwardIndex {
	return &ForwardIndex{byDocID: make(map[int64]*Entry)}
}

// Load reads a forward index from its on-disk JSON array representation. A
// missing file yields an empty, valid index.
func Load(path string) (*ForwardIndex, error) {
	fi := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fi, nil
		}
		return nil, &scouterrors.IOError{Path: path, Op: "read", Err: err}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &scouterrors.IOError{Path: path, Op: "parse", Err: err}
	}

	for i := range entries {
		e := entries[i]
		fi.byDocID[e.DocID] = &e
		fi.order = append(fi.order, e.DocID)
		fi.totalLen += int64(e.TotalTerms)
	}
	return fi, nil
}

// Save persists the forward index as a JSON array in append order.
func (fi *ForwardIndex) Save(path string) error {
	fi.mu.RLock()
	entries := make([]Entry, 0, len(fi.order))
	for _, id := range fi.order {
		entries = append(entries, *fi.byDocID[id])
	}
	fi.mu.RUnlock()

	data, err := json.Marshal(entries)
	if err != nil {
		return &scouterrors.IOError{Path: path, Op: "marshal", Err: err}
	}
	if err := atomicfile.Write(path, data); err != nil {
		return &scouterrors.IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Get returns the forward-index entry for a doc_id, or ok=false if absent.
func (fi *ForwardIndex) Get(docID int64) (Entry, bool) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	e, ok := fi.byDocID[docID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Has reports whether doc_id is already present.
func (fi *ForwardIndex) Has(docID int64) bool {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	_, ok := fi.byDocID[docID]
	return ok
}

// Append adds a new forward-index entry. Callers must ensure DocID is not
// already present (the writer enforces DuplicateDocument before calling
// this).
func (fi *ForwardIndex) Append(e Entry) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	stored := e
	fi.byDocID[e.DocID] = &stored
	fi.order = append(fi.order, e.DocID)
	fi.totalLen += int64(e.TotalTerms)
}

// DocLength returns total_terms for a document, consulted during scoring.
func (fi *ForwardIndex) DocLength(docID int64) int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	e, ok := fi.byDocID[docID]
	if !ok {
		return 0
	}
	return e.TotalTerms
}

// Count returns the total number of documents, N in the BM25 formula.
func (fi *ForwardIndex) Count() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return len(fi.byDocID)
}

// AverageDocLength returns the mean of total_terms across all documents.
func (fi *ForwardIndex) AverageDocLength() float64 {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	n := len(fi.byDocID)
	if n == 0 {
		return 0
	}
	return float64(fi.totalLen) / float64(n)
}

// Name returns the stored document name, used by the scorer's boost pass.
func (fi *ForwardIndex) Name(docID int64) (string, bool) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	e, ok := fi.byDocID[docID]
	if !ok {
		return "", false
	}
	return e.Name, true
}

// AllDocIDs returns every doc_id currently present, in append order.
func (fi *ForwardIndex) AllDocIDs() []int64 {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	out := make([]int64, len(fi.order))
	copy(out, fi.order)
	return out
}
