// Package repositories implements SQLite persistence for playback snapshots and token refresh outcomes.
//
// Key Implementations:
//   - [SnapshotRepository] : the current and last-known snapshot per [Kind], nothing older
//   - [RefreshLogRepository] : a bounded log of refresh attempts, never the tokens themselves
//
// Both rely on the schema applied by [shared.RunMigrations].
package repositories
