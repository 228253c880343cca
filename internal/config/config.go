package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string

	// Doctrine index
	DoctrineDir  string
	ChunkSize    int
	ChunkOverlap int

	// Retrieval tuning
	SearchTopK   int
	MinScore     float64
	QueryTimeout time.Duration

	// Workers
	AnalyzeWorkers   int
	EventConcurrency int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseFloat(v, 64); err == nil {
			return out
		}
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DoctrineDir:      getenv("DOCTRINE_DIR", "data/doctrines"),
		ChunkSize:        getenvInt("DOCTRINE_CHUNK_SIZE", 1000),
		ChunkOverlap:     getenvInt("DOCTRINE_CHUNK_OVERLAP", 200),
		SearchTopK:       getenvInt("SEARCH_TOP_K", 3),
		MinScore:         getenvFloat("SEARCH_MIN_SCORE", 0.05),
		QueryTimeout:     time.Duration(getenvInt("QUERY_TIMEOUT_MS", 2000)) * time.Millisecond,
		AnalyzeWorkers:   getenvInt("ANALYZE_WORKERS", 0),
		EventConcurrency: getenvInt("EVENT_CONCURRENCY", 4),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
