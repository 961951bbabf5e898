package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

// Kind names the record a snapshot holds.
type Kind string

const (
	KindPlayerState      Kind = "player_state"
	KindCurrentlyPlaying Kind = "currently_playing"
)

// ParseKind accepts the stored kind names.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPlayerState, KindCurrentlyPlaying:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown snapshot kind %q", shared.ErrInvalidArgument, s)
}

// Slot selects the current or the previous snapshot.
type Slot string

const (
	SlotCurrent Slot = "current"
	SlotLast    Slot = "last"
)

// Snapshot is a stored row. Payload is the record's JSON, "null" when nothing was active.
type Snapshot struct {
	ID         string
	Kind       Kind
	Slot       Slot
	Payload    json.RawMessage
	CapturedAt time.Time
}

// SnapshotRepository keeps at most two rows per kind.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SavePlayerState stores state as the current player snapshot. A nil state records "no active device".
func (r *SnapshotRepository) SavePlayerState(state *models.PlayerState, at time.Time) error {
	if state != nil {
		if err := state.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return r.save(KindPlayerState, state, at)
}

// SaveCurrentlyPlaying stores cur as the current track snapshot. A nil cur records "nothing playing".
func (r *SnapshotRepository) SaveCurrentlyPlaying(cur *models.CurrentlyPlaying, at time.Time) error {
	if cur != nil {
		if err := cur.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return r.save(KindCurrentlyPlaying, cur, at)
}

// save rotates current to last, drops the old last, and inserts the new current in one transaction.
func (r *SnapshotRepository) save(kind Kind, record any, at time.Time) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM snapshots WHERE kind = ? AND slot = ?`, kind, SlotLast); err != nil {
			return fmt.Errorf("failed to drop last snapshot: %w", err)
		}
		if _, err := tx.Exec(`UPDATE snapshots SET slot = ? WHERE kind = ? AND slot = ?`, SlotLast, kind, SlotCurrent); err != nil {
			return fmt.Errorf("failed to rotate snapshot: %w", err)
		}

		query := `
			INSERT INTO snapshots (id, kind, slot, payload, captured_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, shared.GenerateID(), kind, SlotCurrent, string(payload), at.UTC()); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		return nil
	})
}

// Get returns the raw snapshot in slot, or [shared.ErrNotFound].
func (r *SnapshotRepository) Get(kind Kind, slot Slot) (*Snapshot, error) {
	query := `
		SELECT id, kind, slot, payload, captured_at
		FROM snapshots
		WHERE kind = ? AND slot = ?
	`

	var s Snapshot
	var payload string
	err := r.db.QueryRow(query, kind, slot).Scan(&s.ID, &s.Kind, &s.Slot, &payload, &s.CapturedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s snapshot for %s", shared.ErrNotFound, slot, kind)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	s.Payload = json.RawMessage(payload)
	return &s, nil
}

// PlayerState decodes the player snapshot in slot. The record is nil when no device was active.
func (r *SnapshotRepository) PlayerState(slot Slot) (*models.PlayerState, time.Time, error) {
	s, err := r.Get(KindPlayerState, slot)
	if err != nil {
		return nil, time.Time{}, err
	}
	var state *models.PlayerState
	if err := json.Unmarshal(s.Payload, &state); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, s.CapturedAt, nil
}

// CurrentlyPlaying decodes the track snapshot in slot. The record is nil when nothing was playing.
func (r *SnapshotRepository) CurrentlyPlaying(slot Slot) (*models.CurrentlyPlaying, time.Time, error) {
	s, err := r.Get(KindCurrentlyPlaying, slot)
	if err != nil {
		return nil, time.Time{}, err
	}
	var cur *models.CurrentlyPlaying
	if err := json.Unmarshal(s.Payload, &cur); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return cur, s.CapturedAt, nil
}

// Count returns the number of stored rows for kind.
func (r *SnapshotRepository) Count(kind Kind) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE kind = ?`, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// Clear removes every snapshot of kind.
func (r *SnapshotRepository) Clear(kind Kind) error {
	if _, err := r.db.Exec(`DELETE FROM snapshots WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
