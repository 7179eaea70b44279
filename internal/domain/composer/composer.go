// Package composer selects and orders the task list for one practice
// session: due reviews first, then new material, up to the configured
// target count.
//
// Ordering within each partition is randomized through an injected
// *rand.Rand so identical inputs and an identical seed reproduce an
// identical session; passing a nil source switches to a fully
// deterministic ordering (sorted by item ID), which the tests rely on.
package composer

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

// Compose produces the ordered task list for a session. The result
// contains at most config.TargetCount item IDs and never a duplicate;
// fewer than TargetCount simply means the pool could not fill the
// session — that is a smaller session, not an error.
func Compose(
	pool []*domain.ContentItem,
	records map[uuid.UUID]*domain.SchedulingRecord,
	config domain.SessionConfiguration,
	now time.Time,
	rng *rand.Rand,
) ([]uuid.UUID, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(pool) == 0 {
		return []uuid.UUID{}, nil
	}

	var due, fresh []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(pool))

	for _, item := range pool {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		record, ok := records[item.ID]
		switch {
		case config.IncludeReview && ok && !record.IsNew() && record.IsDue(now):
			due = append(due, item.ID)
		case !ok || record.IsNew():
			fresh = append(fresh, item.ID)
		}
	}

	order(due, rng)
	order(fresh, rng)

	taskIDs := make([]uuid.UUID, 0, config.TargetCount)
	for _, id := range due {
		if len(taskIDs) == config.TargetCount {
			break
		}
		taskIDs = append(taskIDs, id)
	}
	for _, id := range fresh {
		if len(taskIDs) == config.TargetCount {
			break
		}
		taskIDs = append(taskIDs, id)
	}

	return taskIDs, nil
}

// order shuffles ids with the injected source, or sorts them by ID when
// no source is given (reproducibility mode).
func order(ids []uuid.UUID, rng *rand.Rand) {
	if rng == nil {
		sort.Slice(ids, func(i, j int) bool {
			return ids[i].String() < ids[j].String()
		})
		return
	}

	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
