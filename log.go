package shockwave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/core"
	"github.com/remix-astronautics/shockwave/domain"
)

var logLevels = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
	"FATAL": slog.LevelError + 4,
}

// WriteLog stores an application log entry, mirrors it to the structured logger and hands it
// to the log handler. level is one of DEBUG, INFO, WARN, ERROR or FATAL.
func (planner *Planner) WriteLog(level string, message string, options ...core.LogOption) error {
	slogLevel, ok := logLevels[level]
	if !ok {
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	if planner.Repo == nil {
		return errors.New("planner has no repository")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	log := domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, option := range options {
		err := option(&log)
		if err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}

	planner.Logger.Log(context.Background(), slogLevel, message, "log_id", log.ID)
	if err := planner.Repo.InsertLog(&log); err != nil {
		return fmt.Errorf("inserting log : %w", err)
	}
	if planner.OnLog != nil {
		if err := planner.OnLog(log); err != nil {
			return fmt.Errorf("log handler : %w", err)
		}
	}
	return nil
}

// WriteLogContext is WriteLog for code running inside a sync pass. The entry is tied to the
// pass whose ID ctx carries.
func (planner *Planner) WriteLogContext(ctx context.Context, level string, message string, options ...core.LogOption) error {
	if id, ok := core.SyncIDFromContext(ctx); ok {
		options = append(options, core.LogWithSyncID(id))
	}
	return planner.WriteLog(level, message, options...)
}

func (planner *Planner) recordLog(ctx context.Context, level, message string, options ...core.LogOption) {
	if err := planner.WriteLogContext(ctx, level, message, options...); err != nil {
		planner.Logger.Error("writing record log entry", "error", err)
	}
}
