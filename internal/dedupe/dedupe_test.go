package dedupe

import (
	"sync"
	"testing"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int, conv models.ScoringConvention, pos models.Position) models.RankedPlayer {
	return models.RankedPlayer{
		Identity:   models.PlayerIdentity{ID: id, Name: "Player", Team: "KC"},
		Position:   pos,
		Convention: conv,
	}
}

func TestDeduper_SeenAndRecord(t *testing.T) {
	d := NewInMemoryDeduper()

	assert.False(t, d.SeenAndRecord(10), "First sighting should be new")
	assert.True(t, d.SeenAndRecord(10), "Second sighting should be a duplicate")
	assert.False(t, d.SeenAndRecord(11))
	assert.Equal(t, 2, d.Size())
}

func TestDeduper_Concurrent(t *testing.T) {
	d := NewInMemoryDeduper()

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := 0; id < 100; id++ {
				if !d.SeenAndRecord(id) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, fresh, "Each id must be new exactly once")
	assert.Equal(t, 100, d.Size())
}

func TestScheduler_OneTaskPerDistinctPlayer(t *testing.T) {
	s := NewScheduler(NewInMemoryDeduper())

	standard := []models.RankedPlayer{row(1, models.Standard, models.RB), row(2, models.Standard, models.WR), row(3, models.Standard, models.QB)}
	half := []models.RankedPlayer{row(2, models.Half, models.WR), row(1, models.Half, models.RB), row(4, models.Half, models.TE)}
	ppr := []models.RankedPlayer{row(4, models.PPR, models.TE), row(2, models.PPR, models.WR), row(5, models.PPR, models.K)}

	assert.Equal(t, 3, s.AddAll(standard))
	assert.Equal(t, 1, s.AddAll(half))
	assert.Equal(t, 1, s.AddAll(ppr))

	tasks := s.Tasks()
	require.Len(t, tasks, 5, "Tasks should equal distinct ids, not rows")

	ids := make([]int, 0, len(tasks))
	for _, p := range tasks {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids, "Tasks keep first-seen order")
	assert.Equal(t, models.TE, tasks[3].Position)
}

func TestScheduler_FirstRowWins(t *testing.T) {
	s := NewScheduler(NewInMemoryDeduper())

	first := row(9, models.Standard, models.RB)
	first.Identity.Name = "First Name"
	later := row(9, models.PPR, models.WR)
	later.Identity.Name = "Later Name"

	assert.True(t, s.Add(first))
	assert.False(t, s.Add(later))

	require.Len(t, s.Tasks(), 1)
	assert.Equal(t, "First Name", s.Tasks()[0].Name)
	assert.Equal(t, models.RB, s.Tasks()[0].Position)
}
