// Package sidedata loads the side metadata the scorer's boost pass
// consumes: the latest market valuation per document and the body length
// per document. Both sources are independently optional; a missing file
// is recoverable and simply disables the boost that would have consumed
// it.
package sidedata

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

// Metadata holds the loaded side data plus the precomputed normalization
// maxima the scorer's metadata boosts divide by.
type Metadata struct {
	Valuations      map[int64]float64
	ProfileLengths  map[int64]int
	MaxValuation    float64
	MaxProfileLen   int
	ValuationLogMax float64
	ProfileLogMax   float64
}

// profileEntry mirrors one record of processed/complete_player_profiles.json.
type profileEntry struct {
	DocID   int64  `json:"player_id"`
	Name    string `json:"player_name"`
	Content string `json:"detailed_content"`
}

// Load reads the market-value CSV directory and the profile-length JSON
// file, returning recoverable MissingSideFile errors when either is
// absent (callers should log and continue with the other, or with
// neither).
func Load(marketValueDir, profilesPath string) (*Metadata, error, error) {
	valuations, valuationErr := loadMarketValues(marketValueDir)
	lengths, lengthErr := loadProfileLengths(profilesPath)

	m := &Metadata{
		Valuations:     valuations,
		ProfileLengths: lengths,
	}
	for _, v := range valuations {
		if v > m.MaxValuation {
			m.MaxValuation = v
		}
	}
	for _, l := range lengths {
		if l > m.MaxProfileLen {
			m.MaxProfileLen = l
		}
	}
	if m.MaxValuation > 0 {
		m.ValuationLogMax = math.Log1p(m.MaxValuation)
	} else {
		m.ValuationLogMax = 1.0
	}
	if m.MaxProfileLen > 0 {
		m.ProfileLogMax = math.Log1p(float64(m.MaxProfileLen))
	} else {
		m.ProfileLogMax = 1.0
	}

	return m, valuationErr, lengthErr
}

// loadMarketValues reads every CSV file in dir and keeps, per doc_id, the
// value with the lexicographically greatest date_unix.
func loadMarketValues(dir string) (map[int64]float64, error) {
	values := make(map[int64]float64)
	dateKeys := make(map[int64]string)

	if dir == "" {
		return values, &scouterrors.MissingSideFileError{Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return values, &scouterrors.MissingSideFileError{Path: dir}
		}
		return values, &scouterrors.IOError{Path: dir, Op: "readdir", Err: err}
	}

	found := false
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		found = true
		path := filepath.Join(dir, entry.Name())
		if err := mergeMarketValueFile(path, values, dateKeys); err != nil {
			return values, err
		}
	}
	if !found {
		return values, &scouterrors.MissingSideFileError{Path: dir}
	}
	return values, nil
}

func mergeMarketValueFile(path string, values map[int64]float64, dateKeys map[int64]string) error {
	f, err := os.Open(path)
	if err != nil {
		return &scouterrors.IOError{Path: path, Op: "read", Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return &scouterrors.IOError{Path: path, Op: "parse", Err: err}
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	docIDCol, hasDocID := col["player_id"]
	valueCol, hasValue := col["value"]
	dateCol, hasDate := col["date_unix"]
	if !hasDocID || !hasValue {
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &scouterrors.IOError{Path: path, Op: "parse", Err: err}
		}

		docID, err := strconv.ParseInt(row[docIDCol], 10, 64)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(row[valueCol], 64)
		if err != nil {
			continue
		}
		dateKey := ""
		if hasDate && dateCol < len(row) {
			dateKey = row[dateCol]
		}

		if current, ok := dateKeys[docID]; !ok || dateKey > current {
			values[docID] = value
			dateKeys[docID] = dateKey
		}
	}
	return nil
}

// loadProfileLengths reads complete_player_profiles.json and records each
// document's detailed-content character count.
func loadProfileLengths(path string) (map[int64]int, error) {
	lengths := make(map[int64]int)

	if path == "" {
		return lengths, &scouterrors.MissingSideFileError{Path: path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lengths, &scouterrors.MissingSideFileError{Path: path}
		}
		return lengths, &scouterrors.IOError{Path: path, Op: "read", Err: err}
	}

	var entries []profileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return lengths, &scouterrors.IOError{Path: path, Op: "parse", Err: err}
	}

	for _, e := range entries {
		if e.Content != "" {
			lengths[e.DocID] = len([]rune(e.Content))
		}
	}
	return lengths, nil
}
