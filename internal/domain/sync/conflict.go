package sync

import "time"

// ConflictWinner identifies which system's copy of an entity survives a
// concurrent-modification conflict
type ConflictWinner string

const (
	// WinnerSource means the commerce platform's copy is kept
	WinnerSource ConflictWinner = "source"
	// WinnerTarget means the CRM's copy is kept
	WinnerTarget ConflictWinner = "target"
)

// ConflictSide is one system's view of a contested entity: its payload and
// the instant it was last modified there
type ConflictSide struct {
	ModifiedAt time.Time
	Data       map[string]any
}

// ConflictResolution is the outcome of last-write-wins resolution
type ConflictResolution struct {
	EntityType string
	EntityID   string
	Winner     ConflictWinner
	Data       map[string]any
}

// ResolveConflict applies strict last-write-wins between the two sides.
// The target wins only when its timestamp is strictly later; a tie keeps
// the source copy. No field-level merge is performed.
func ResolveConflict(entityType, entityID string, source, target ConflictSide) ConflictResolution {
	resolution := ConflictResolution{
		EntityType: entityType,
		EntityID:   entityID,
	}
	if target.ModifiedAt.After(source.ModifiedAt) {
		resolution.Winner = WinnerTarget
		resolution.Data = target.Data
	} else {
		resolution.Winner = WinnerSource
		resolution.Data = source.Data
	}
	return resolution
}
