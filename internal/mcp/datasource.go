package mcp

import (
	"context"
	"time"

	"github.com/meltforce/fitforge/internal/models"
	"github.com/meltforce/fitforge/internal/overload"
	"github.com/meltforce/fitforge/internal/progress"
	"github.com/meltforce/fitforge/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) both satisfy this interface.
type DataSource interface {
	PersonalRecord(ctx context.Context, userID int, exerciseID string) (*storage.PersonalRecordRow, error)
	VolumeTrend(ctx context.Context, userID int, windowDays int) ([]storage.DayVolume, error)
	RecoveryState(ctx context.Context, userID int) ([]progress.MuscleRecovery, error)
	Recommend(ctx context.Context, userID int, exerciseID string) (*overload.Recommendation, error)
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.Session, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
}

// Local serves MCP tools straight from the database and the in-process
// aggregation engines, with no network hop.
type Local struct {
	DB         *storage.DB
	Aggregator *progress.Aggregator
	Engine     *overload.Engine
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) PersonalRecord(ctx context.Context, userID int, exerciseID string) (*storage.PersonalRecordRow, error) {
	return l.Aggregator.PersonalRecord(ctx, userID, exerciseID)
}

func (l *Local) VolumeTrend(ctx context.Context, userID int, windowDays int) ([]storage.DayVolume, error) {
	return l.Aggregator.VolumeTrend(ctx, userID, windowDays)
}

func (l *Local) RecoveryState(ctx context.Context, userID int) ([]progress.MuscleRecovery, error) {
	return l.Aggregator.RecoveryState(ctx, userID)
}

func (l *Local) Recommend(ctx context.Context, userID int, exerciseID string) (*overload.Recommendation, error) {
	return l.Engine.Recommend(ctx, userID, exerciseID)
}

func (l *Local) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.Session, error) {
	return l.DB.QuerySessions(ctx, start, end, userID)
}

func (l *Local) GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error) {
	return l.DB.GetDataStats(ctx, userID)
}

func (l *Local) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return l.DB.ListExercises(ctx)
}
