package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
	"github.com/21phuctran/i4NS-LENS/internal/ports"
)

// MissionRepository

// SaveMission upserts a mission by mission_id, keeping both the canonical
// log and the raw upload for audit.
func (db *DB) SaveMission(ctx context.Context, mission domain.MissionLog, raw []byte) error {
	log, err := json.Marshal(mission)
	if err != nil {
		return fmt.Errorf("marshal mission: %w", err)
	}
	if raw == nil {
		raw = log
	}
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO missions (mission_id, mission_name, vessel_name, start_time, end_time, log, raw)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (mission_id) DO UPDATE SET
            mission_name = EXCLUDED.mission_name,
            vessel_name = EXCLUDED.vessel_name,
            start_time = EXCLUDED.start_time,
            end_time = EXCLUDED.end_time,
            log = EXCLUDED.log,
            raw = EXCLUDED.raw
    `, mission.MissionID, mission.MissionName, mission.VesselName, mission.StartTime, mission.EndTime, log, raw)
	return err
}

func (db *DB) GetMission(ctx context.Context, missionID string) (domain.MissionLog, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx, `SELECT log FROM missions WHERE mission_id = $1`, missionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MissionLog{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.MissionLog{}, err
	}
	var mission domain.MissionLog
	if err := json.Unmarshal(payload, &mission); err != nil {
		return domain.MissionLog{}, fmt.Errorf("decode mission %s: %w", missionID, err)
	}
	return mission, nil
}

func (db *DB) ListMissions(ctx context.Context) ([]domain.MissionSummary, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT m.mission_id, m.mission_name, m.vessel_name, m.start_time,
               COALESCE(jsonb_array_length(m.log->'events'), 0),
               EXISTS (SELECT 1 FROM analyses a WHERE a.mission_id = m.mission_id)
        FROM missions m
        ORDER BY m.start_time DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MissionSummary
	for rows.Next() {
		var s domain.MissionSummary
		if err := rows.Scan(&s.MissionID, &s.MissionName, &s.VesselName, &s.StartTime, &s.EventsCount, &s.HasAnalysis); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AnalysisRepository

// SaveAnalysis appends a new row per run; analyses are immutable.
func (db *DB) SaveAnalysis(ctx context.Context, analysis domain.MissionAnalysis) (string, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}
	id := uuid.NewString()
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO analyses (id, mission_id, score, payload, generated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, id, analysis.MissionID, analysis.OverallComplianceScore, payload, analysis.GeneratedAt)
	return id, err
}

func (db *DB) LatestByMission(ctx context.Context, missionID string) (domain.MissionAnalysis, bool, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx, `
        SELECT payload FROM analyses
        WHERE mission_id = $1
        ORDER BY generated_at DESC
        LIMIT 1
    `, missionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MissionAnalysis{}, false, nil
	}
	if err != nil {
		return domain.MissionAnalysis{}, false, err
	}
	var analysis domain.MissionAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return domain.MissionAnalysis{}, false, fmt.Errorf("decode analysis for %s: %w", missionID, err)
	}
	return analysis, true, nil
}
