// Package core provides small helpers shared by the planner, the syncer and the CLI.
// This file contains option functions for customizing log entries.
package core

import (
	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

// LogOption customizes a log entry before it is stored.
type LogOption func(log *domain.Log) error

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) LogOption {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithLaunchID is an option to associate a log entry with a launch.
func LogWithLaunchID(id uuid.UUID) LogOption {
	return func(log *domain.Log) error {
		log.LaunchID = &id
		return nil
	}
}

// LogWithSyncID is an option to associate a log entry with the sync pass that produced it.
func LogWithSyncID(id uuid.UUID) LogOption {
	return func(log *domain.Log) error {
		log.SyncID = &id
		return nil
	}
}
