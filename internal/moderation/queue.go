// Package moderation implements the plain operator-decision queue:
// items are submitted, sit in PENDING, and an operator routes the whole
// batch to one terminal outcome. The capacity-aware request allocator is
// a different animal and lives in the admission engine.
package moderation

import "eventhub-backend/internal/apperr"

type Decision[T any] struct {
	Accepted []T
	Removed  []T
}

// Decide routes a batch of pending items to one terminal outcome.
// pending must hold exactly the items named by the batch; a shorter list
// means some named id was missing or no longer pending, which fails the
// whole batch with no partial effects.
func Decide[T any](pending []T, requested int, accept bool) (*Decision[T], error) {
	if len(pending) != requested {
		return nil, apperr.NotFoundf("incorrect id(s) in the moderation batch: %d of %d found pending",
			len(pending), requested)
	}
	if accept {
		return &Decision[T]{Accepted: pending}, nil
	}
	return &Decision[T]{Removed: pending}, nil
}
