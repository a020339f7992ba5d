// Package lexicon implements the authoritative bidirectional mapping
// between surface tokens and compact integer term identifiers, plus each
// term's document frequency.
package lexicon

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/scoutindex/scoutindex/pkg/atomicfile"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

// Entry is the on-disk representation of one lexicon record.
type Entry struct {
	Token  string `json:"token"`
	DF     int    `json:"df"`
	TermID int64  `json:"term_id"`
}

// Lexicon is the process-wide token<->term_id map. It is read by both the
// query engine and the incremental writer, but mutated only by the writer.
type Lexicon struct {
	mu        sync.RWMutex
	tokenToID map[string]int64
	idToToken map[int64]string
	df        map[int64]int
	maxTermID int64
}

// New returns an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		tokenToID: make(map[string]int64),
		idToToken: make(map[int64]string),
		df:        make(map[int64]int),
		maxTermID: -1,
	}
}

// Load reads a lexicon from its on-disk JSON array representation. A
// missing file yields an empty, valid lexicon (bootstrap case).
func Load(path string) (*Lexicon, error) {
	l := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, &scouterrors.IOError{Path: path, Op: "read", Err: err}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &scouterrors.IOError{Path: path, Op: "parse", Err: err}
	}

	for _, e := range entries {
		l.tokenToID[e.Token] = e.TermID
		l.idToToken[e.TermID] = e.Token
		l.df[e.TermID] = e.DF
		if e.TermID > l.maxTermID {
			l.maxTermID = e.TermID
		}
	}
	return l, nil
}

// Save persists the lexicon as a JSON array, ordered by decreasing df
// (informational only; readers must not rely on order after updates).
func (l *Lexicon) Save(path string) error {
	l.mu.RLock()
	entries := make([]Entry, 0, len(l.tokenToID))
	for token, id := range l.tokenToID {
		entries = append(entries, Entry{Token: token, DF: l.df[id], TermID: id})
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DF != entries[j].DF {
			return entries[i].DF > entries[j].DF
		}
		return entries[i].TermID < entries[j].TermID
	})

	data, err := json.Marshal(entries)
	if err != nil {
		return &scouterrors.IOError{Path: path, Op: "marshal", Err: err}
	}
	if err := atomicfile.Write(path, data); err != nil {
		return &scouterrors.IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Get returns the term_id for a token, or ok=false if absent.
func (l *Lexicon) Get(token string) (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.tokenToID[token]
	return id, ok
}

// Token returns the surface token for a term_id, or ok=false if absent.
func (l *Lexicon) Token(termID int64) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tok, ok := l.idToToken[termID]
	return tok, ok
}

// Intern assigns a new term_id to a previously unseen token, with df=1, and
// returns it. If the token already exists, it returns the existing id and
// leaves df untouched; callers must call IncrementDF themselves in that
// case.
func (l *Lexicon) Intern(token string) (termID int64, isNew bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.tokenToID[token]; ok {
		return id, false
	}

	l.maxTermID++
	id := l.maxTermID
	l.tokenToID[token] = id
	l.idToToken[id] = token
	l.df[id] = 1
	return id, true
}

// DF returns the document frequency for a term_id.
func (l *Lexicon) DF(termID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.df[termID]
}

// IncrementDF increases a term's document frequency by exactly one
// (document-level, not occurrence-level).
func (l *Lexicon) IncrementDF(termID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.df[termID]++
}

// Size returns the number of distinct tokens in the lexicon.
func (l *Lexicon) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tokenToID)
}
