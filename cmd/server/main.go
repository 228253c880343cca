package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/adapters/doctrine"
	httpadapter "github.com/21phuctran/i4NS-LENS/internal/adapters/http"
	pg "github.com/21phuctran/i4NS-LENS/internal/adapters/postgres"
	"github.com/21phuctran/i4NS-LENS/internal/config"
	"github.com/21phuctran/i4NS-LENS/internal/ports"
	chatsvc "github.com/21phuctran/i4NS-LENS/internal/services/chat"
	"github.com/21phuctran/i4NS-LENS/internal/services/compliance"
	analysisworker "github.com/21phuctran/i4NS-LENS/internal/workers/analysisrunner"
)

func main() {
	cfg, err := config.Load()

	var log *zap.Logger
	if cfg.Env == "production" {
		log, _ = zap.NewProduction()
	} else {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	if err != nil {
		log.Warn("config incomplete", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect error", zap.Error(err))
	}
	defer db.Close()

	// Doctrine corpus: seed the sample manual on first run, then index.
	if created, err := doctrine.EnsureSampleDoctrine(cfg.DoctrineDir); err != nil {
		log.Fatal("doctrine dir error", zap.Error(err))
	} else if created {
		log.Info("no doctrine documents found, sample doctrine created", zap.String("dir", cfg.DoctrineDir))
	}
	index := doctrine.New(cfg.DoctrineDir, cfg.ChunkSize, cfg.ChunkOverlap, log.Named("doctrine"))
	if _, err := index.Reindex(ctx); err != nil {
		log.Fatal("doctrine index build failed", zap.Error(err))
	}

	// Wire repositories to services (ports)
	var _ ports.MissionRepository = db
	var _ ports.AnalysisRepository = db
	var _ ports.JobRepository = db

	compCfg := compliance.DefaultConfig()
	compCfg.TopK = cfg.SearchTopK
	compCfg.MinScore = cfg.MinScore
	compCfg.QueryTimeout = cfg.QueryTimeout
	comparator := compliance.NewComparator(index, compliance.DefaultRules(), compCfg, log.Named("comparator"))
	analyzer := compliance.NewAggregator(comparator, cfg.EventConcurrency, log.Named("aggregator"))
	chat := chatsvc.New(index, 5, log.Named("chat"))

	processor := analysisworker.AnalysisProcessor{
		Missions: db, Analyses: db, Analyzer: analyzer, Log: log.Named("processor"),
	}
	srv := httpadapter.New(analyzer, chat, index, db, db, db, processor, log.Named("http"))
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background analysis workers
	if cfg.AnalyzeWorkers > 0 {
		go analysisworker.Run(ctx, db, processor, cfg.AnalyzeWorkers, 500*time.Millisecond, log.Named("workers"))
		log.Info("analysis workers started", zap.Int("count", cfg.AnalyzeWorkers))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", zap.String("addr", cfg.ListenAddr))

	// graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	}
}
