package knowledge

import (
	"context"
	"log/slog"
)

// EvictionPolicy decides how many items to remove given the current count
// and the configured capacity.
type EvictionPolicy interface {
	Plan(count, capacity int64) int64
}

// OldestFirstPolicy evicts down to exactly the capacity once it is
// exceeded.
type OldestFirstPolicy struct{}

func (OldestFirstPolicy) Plan(count, capacity int64) int64 {
	if count <= capacity {
		return 0
	}
	return count - capacity
}

// HysteresisPolicy triggers once count passes Trigger*capacity and evicts
// down to Target*capacity, trading strict bounds for fewer eviction runs.
type HysteresisPolicy struct {
	Trigger float64
	Target  float64
}

func (p HysteresisPolicy) Plan(count, capacity int64) int64 {
	trigger := int64(float64(capacity) * p.Trigger)
	if count <= trigger {
		return 0
	}
	target := int64(float64(capacity) * p.Target)
	if count <= target {
		return 0
	}
	return count - target
}

// EvictIfOverCapacity removes the oldest unpinned content items, with their
// entities, topics, relationships, suggestions and vectors, until the
// policy is satisfied. Items referenced by an applied suggestion are never
// evicted.
func (b *Base) EvictIfOverCapacity(ctx context.Context) (int64, error) {
	count, err := b.store.ContentStore().Total(ctx)
	if err != nil {
		return 0, err
	}

	toEvict := b.policy.Plan(count, b.cfg.Capacity)
	if toEvict <= 0 {
		return 0, nil
	}

	pinnedIDs, err := b.store.SuggestionStore().AppliedContentIDs(ctx)
	if err != nil {
		return 0, err
	}
	pinned := make(map[string]bool, len(pinnedIDs))
	for _, id := range pinnedIDs {
		pinned[id] = true
	}

	// over-fetch so pinned items can be skipped
	oldest, err := b.store.ContentStore().ListOldest(ctx, uint64(toEvict)+uint64(len(pinnedIDs)))
	if err != nil {
		return 0, err
	}

	var evicted int64
	for _, item := range oldest {
		if evicted >= toEvict {
			break
		}
		if pinned[item.ID] {
			continue
		}

		itemID := item.ID
		err := b.store.Transaction(ctx, func(ctx context.Context) error {
			if err := b.store.EntityStore().DeleteByContent(ctx, itemID); err != nil {
				return err
			}
			if err := b.store.TopicStore().DeleteByContent(ctx, itemID); err != nil {
				return err
			}
			if err := b.store.RelationshipStore().DeleteByContent(ctx, itemID); err != nil {
				return err
			}
			if err := b.store.SuggestionStore().DeleteByContent(ctx, itemID); err != nil {
				return err
			}
			if err := b.store.VectorStore().Delete(ctx, itemID); err != nil {
				return err
			}
			return b.store.ContentStore().Delete(ctx, itemID)
		})
		if err != nil {
			return evicted, err
		}
		evicted++
	}

	if evicted > 0 {
		slog.Info("knowledge base eviction",
			slog.Int64("evicted", evicted),
			slog.Int64("capacity", b.cfg.Capacity))
	}
	return evicted, nil
}
