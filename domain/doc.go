// Package domain defines the core data structures of the Shockwave planner.
// It contains the launch and re-entry models, the sync bookkeeping types and the
// repository interfaces that define the contracts for data persistence.
//
// The package has no knowledge of SQL, HTTP or the user interface. The db package
// implements the repositories, the spacedevs package produces SyncedLaunch records
// and the syncer package merges them through the repositories.
package domain
