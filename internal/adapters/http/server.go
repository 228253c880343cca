package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
	"github.com/21phuctran/i4NS-LENS/internal/ports"
	"github.com/21phuctran/i4NS-LENS/internal/services/compliance"
	"github.com/21phuctran/i4NS-LENS/internal/services/normalize"
	analysisrunner "github.com/21phuctran/i4NS-LENS/internal/workers/analysisrunner"
)

const maxUploadBytes = 10 << 20

// Server exposes the REST surface over the analysis core.
type Server struct {
	analyzer  ports.MissionAnalyzer
	chat      ports.DoctrineChat
	index     ports.DoctrineIndex
	missions  ports.MissionRepository
	analyses  ports.AnalysisRepository
	jobs      ports.JobRepository
	processor analysisrunner.Processor
	log       *zap.Logger
}

func New(analyzer ports.MissionAnalyzer, chat ports.DoctrineChat, index ports.DoctrineIndex,
	missions ports.MissionRepository, analyses ports.AnalysisRepository, jobs ports.JobRepository,
	processor analysisrunner.Processor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		analyzer: analyzer, chat: chat, index: index,
		missions: missions, analyses: analyses, jobs: jobs,
		processor: processor, log: log,
	}
}

// Routes returns a chi.Router with all API handlers mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/health", s.handleHealth)
	r.Post("/api/missions/upload", s.handleUpload)
	r.Post("/api/missions/analyze", s.handleAnalyze)
	r.Get("/api/missions", s.handleListMissions)
	r.Get("/api/missions/{missionID}/analysis", s.handleGetAnalysis)
	r.Get("/api/jobs/{jobID}", s.handleJobStatus)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/sample/mission", s.handleSampleMission)
	r.Post("/api/doctrines/reindex", s.handleReindex)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "i4NS LENS",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	mission, skipped, err := normalize.MissionLogBytes(body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.missions.SaveMission(r.Context(), mission, body); err != nil {
		s.log.Error("mission save failed", zap.String("mission_id", mission.MissionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not store mission")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"success":        true,
		"mission_id":     mission.MissionID,
		"mission_name":   mission.MissionName,
		"events_count":   len(mission.Events),
		"skipped_events": skipped,
	})
}

// handleAnalyze accepts either a full mission log (stored before analysis) or
// {"mission_id": "..."} referencing an uploaded one. With ?wait=false the
// analysis runs on the background workers and a job id is returned.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		missionID string
		skipped   []string
	)
	if _, hasStart := raw["start_time"]; !hasStart {
		id, _ := raw["mission_id"].(string)
		if id == "" {
			s.respondError(w, http.StatusBadRequest, "provide a mission log or a mission_id")
			return
		}
		if _, err := s.missions.GetMission(r.Context(), id); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				s.respondError(w, http.StatusNotFound, "mission not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, "could not load mission")
			return
		}
		missionID = id
	} else {
		mission, notes, err := normalize.MissionLog(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.missions.SaveMission(r.Context(), mission, body); err != nil {
			s.respondError(w, http.StatusInternalServerError, "could not store mission")
			return
		}
		missionID = mission.MissionID
		skipped = notes
	}

	jobID, err := s.jobs.Enqueue(r.Context(), missionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "could not queue analysis")
		return
	}

	wait := true
	if v := r.URL.Query().Get("wait"); v != "" {
		wait, _ = strconv.ParseBool(v)
	}
	if !wait {
		s.respond(w, http.StatusAccepted, map[string]any{"job_id": jobID, "mission_id": missionID})
		return
	}

	timeout := 30 * time.Second
	if v := r.URL.Query().Get("timeout"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	// Same processor logic as the background workers.
	if err := analysisrunner.ProcessInline(ctx, s.jobs, s.processor, missionID); err != nil {
		if errors.Is(err, domain.ErrEmptyMission) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error("inline analysis failed", zap.String("mission_id", missionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	analysis, found, err := s.analyses.LatestByMission(ctx, missionID)
	if err != nil || !found {
		s.respondError(w, http.StatusInternalServerError, "analysis not available")
		return
	}
	compliance.AttachSkipNotes(&analysis, skipped)
	s.respond(w, http.StatusOK, analysis)
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.missions.ListMissions(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "could not list missions")
		return
	}
	if missions == nil {
		missions = []domain.MissionSummary{}
	}
	s.respond(w, http.StatusOK, missions)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")
	analysis, found, err := s.analyses.LatestByMission(r.Context(), missionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "could not load analysis")
		return
	}
	if !found {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.respond(w, http.StatusOK, analysis)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	status, err := s.jobs.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "could not load job")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"job_id": jobID, "status": status})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var q domain.ChatQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := s.chat.Answer(r.Context(), q)
	if err != nil {
		var rerr *domain.RetrievalError
		if errors.As(err, &rerr) {
			s.respondError(w, http.StatusBadGateway, "doctrine lookup failed")
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *Server) handleSampleMission(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, normalize.SampleMission())
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.index.Reindex(r.Context())
	if err != nil {
		s.log.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"success": true, "chunks": chunks})
}

func (s *Server) respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, msg string) {
	s.respond(w, code, map[string]any{"error": msg})
}
