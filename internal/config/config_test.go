package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lens")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.SearchTopK != 3 || cfg.MinScore != 0.05 {
		t.Errorf("retrieval defaults: topK=%d minScore=%v", cfg.SearchTopK, cfg.MinScore)
	}
	if cfg.QueryTimeout != 2*time.Second {
		t.Errorf("QueryTimeout = %v", cfg.QueryTimeout)
	}
	if cfg.EventConcurrency != 4 {
		t.Errorf("EventConcurrency = %d", cfg.EventConcurrency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lens")
	t.Setenv("SEARCH_TOP_K", "7")
	t.Setenv("QUERY_TIMEOUT_MS", "500")
	t.Setenv("DOCTRINE_DIR", "/srv/doctrines")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SearchTopK != 7 {
		t.Errorf("SearchTopK = %d", cfg.SearchTopK)
	}
	if cfg.QueryTimeout != 500*time.Millisecond {
		t.Errorf("QueryTimeout = %v", cfg.QueryTimeout)
	}
	if cfg.DoctrineDir != "/srv/doctrines" {
		t.Errorf("DoctrineDir = %q", cfg.DoctrineDir)
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("want error when DATABASE_URL is unset")
	}
}
