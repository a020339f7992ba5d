package engine

import (
	"path/filepath"
	"testing"

	"github.com/scoutindex/scoutindex/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.Root = t.TempDir()
	// No market-value/profile side data in this fixture; leave ProfilesPath
	// and MarketValueDir pointed at paths that simply won't exist, which
	// Engine.Load treats as recoverable.
	return cfg
}

func TestEngine_LoadBootstrapsEmptyIndex(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := e.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !e.IsReady() {
		t.Fatal("expected engine to be ready after Load")
	}
	status := e.GetStatus()
	if status.Documents != 0 || status.LexiconSize != 0 {
		t.Fatalf("expected empty index, got %+v", status)
	}
}

func TestEngine_SearchBeforeLoadErrors(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := e.Search("messi", 10); err == nil {
		t.Fatal("expected error searching before Load")
	}
}

func TestEngine_AddDocumentThenSearch(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := e.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	stats, err := e.AddDocument(Document{
		DocID:   1,
		Name:    "Lionel Messi",
		Content: "Messi is a striker who has scored many goals for Barcelona.",
	})
	if err != nil {
		t.Fatalf("AddDocument() error: %v", err)
	}
	if stats.DocID != 1 {
		t.Fatalf("expected doc_id 1, got %d", stats.DocID)
	}

	resp, err := e.Search("Messi", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DocID != 1 {
		t.Fatalf("expected single result doc_id=1, got %+v", resp.Results)
	}

	status := e.GetStatus()
	if status.Documents != 1 || status.LexiconSize == 0 {
		t.Fatalf("expected populated status after add-document, got %+v", status)
	}
}

func TestEngine_ReloadSeesPersistedDocument(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := e.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := e.AddDocument(Document{DocID: 7, Name: "Alex Kim", Content: "Midfielder from Seoul."}); err != nil {
		t.Fatalf("AddDocument() error: %v", err)
	}

	reopened, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error on reopen: %v", err)
	}

	resp, err := reopened.Search("Kim", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DocID != 7 {
		t.Fatalf("expected persisted document to survive reload, got %+v", resp.Results)
	}
}

func TestEngine_BuildFromDocuments(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := e.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	docs := []Document{
		{DocID: 1, Name: "Lionel Messi", Content: "Striker from Rosario."},
		{DocID: 2, Name: "Cristiano Ronaldo", Content: "Striker from Madeira."},
	}
	results, err := e.BuildFromDocuments(docs)
	if err != nil {
		t.Fatalf("BuildFromDocuments() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	status := e.GetStatus()
	if status.Documents != 2 {
		t.Fatalf("expected 2 documents indexed, got %d", status.Documents)
	}

	lexiconPath := filepath.Join(cfg.Data.Root, cfg.Data.LexiconPath)
	reopened, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reopened.GetStatus().Documents != 2 {
		t.Fatalf("expected bulk-built index to persist at %s", lexiconPath)
	}
}
