// Package records keeps end-of-run summaries. It never stores live game
// state; rooms stay in memory for their whole lifetime.
package records

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("run not found")

// Run summarizes one finished game.
type Run struct {
	ID       string    `json:"id"`
	RoomCode string    `json:"roomCode"`
	Seed     int64     `json:"seed"`
	Wave     int       `json:"wave"`
	Score    int       `json:"score"`
	Kills    int       `json:"kills"`
	Players  []string  `json:"players"`
	EndedAt  time.Time `json:"endedAt"`
}

// NewRun stamps a fresh id and end time.
func NewRun(roomCode string, seed int64, wave, score, kills int, players []string) Run {
	return Run{
		ID:       uuid.NewString(),
		RoomCode: roomCode,
		Seed:     seed,
		Wave:     wave,
		Score:    score,
		Kills:    kills,
		Players:  players,
		EndedAt:  time.Now().UTC(),
	}
}

// DefaultTopRuns is the TopRuns limit used when the caller passes limit <= 0.
const DefaultTopRuns = 10

// Storage defines the interface for run persistence
type Storage interface {
	SaveRun(run Run) error
	GetRun(id string) (Run, error)
	TopRuns(limit int) ([]Run, error)
	Close() error
}

// sortRuns orders by score, then wave, then most recent.
func sortRuns(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Score != runs[j].Score {
			return runs[i].Score > runs[j].Score
		}
		if runs[i].Wave != runs[j].Wave {
			return runs[i].Wave > runs[j].Wave
		}
		return runs[i].EndedAt.After(runs[j].EndedAt)
	})
}
