// Package dedupe turns the rankings rows of every scoring convention into one
// enrichment task per distinct player.
package dedupe

import (
	"sync"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
)

// Deduper records player ids that already have an enrichment task
type Deduper interface {
	// SeenAndRecord reports whether id was seen before and records it if not
	SeenAndRecord(id int) bool
	Size() int
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[int]struct{}
}

// NewInMemoryDeduper returns an empty, unbounded deduper. A season has well under
// two thousand ranked players so no eviction is needed.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[int]struct{})}
}

func (d *inMemoryDeduper) SeenAndRecord(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Scheduler collects enrichment tasks from ranking rows as they arrive
type Scheduler struct {
	seen  Deduper
	tasks []models.Player
}

// NewScheduler creates a scheduler backed by d
func NewScheduler(d Deduper) *Scheduler {
	return &Scheduler{seen: d}
}

// Add schedules rp's player unless an earlier row already did. The first row seen
// for a player decides its identity and position. Returns true when a task was added.
func (s *Scheduler) Add(rp models.RankedPlayer) bool {
	if s.seen.SeenAndRecord(rp.Identity.ID) {
		return false
	}
	s.tasks = append(s.tasks, models.Player{
		PlayerIdentity: rp.Identity,
		Position:       rp.Position,
	})
	return true
}

// AddAll schedules every row and returns how many new tasks were created
func (s *Scheduler) AddAll(rows []models.RankedPlayer) int {
	added := 0
	for _, rp := range rows {
		if s.Add(rp) {
			added++
		}
	}
	return added
}

// Tasks returns the scheduled players in first-seen order
func (s *Scheduler) Tasks() []models.Player {
	return s.tasks
}
