package grouping

import (
	"context"
	"fmt"
)

// GroupLookup reads the stored group of a treatment.
type GroupLookup interface {
	GroupID(ctx context.Context, treatmentID int64) (*int64, error)
}

// Resolver derives the group id to tag onto events and payments when the
// caller supplied only a treatment id. Groups have no storage of their own
// here; membership lives on the treatment rows.
type Resolver struct {
	treatments GroupLookup
}

func NewResolver(treatments GroupLookup) *Resolver {
	return &Resolver{treatments: treatments}
}

// Resolve prefers an explicit group id, falls back to the treatment's
// stored group, and returns nil when neither is derivable.
func (r *Resolver) Resolve(ctx context.Context, explicitGroupID, treatmentID *int64) (*int64, error) {
	if explicitGroupID != nil {
		return explicitGroupID, nil
	}
	if treatmentID == nil {
		return nil, nil
	}
	groupID, err := r.treatments.GroupID(ctx, *treatmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group for treatment %d: %w", *treatmentID, err)
	}
	return groupID, nil
}
