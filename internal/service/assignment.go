package service

import "github.com/cleanoyo/wasteup-api/internal/models"

// ResolveOperator selects an operator for a new pickup request from the
// provided pool. The pool is a snapshot; availability is advisory, so a
// stale snapshot over-assigning an operator who just went unavailable is
// tolerated.
//
// Policy: an explicit preferred operator wins when it exists in the pool.
// Otherwise the first operator whose zone matches the request zone and who
// is available (nil flag counts as available) is chosen. First match wins;
// the caller supplies the pool in a stable order. Returns nil when nobody
// matches and the request stays unassigned awaiting manual dispatch.
func ResolveOperator(zone string, preferredID string, pool []models.User) *models.User {
	if preferredID != "" {
		for i := range pool {
			if pool[i].ID == preferredID && pool[i].Role == models.RolePSPOperator {
				return &pool[i]
			}
		}
	}

	for i := range pool {
		op := &pool[i]
		if op.Role != models.RolePSPOperator {
			continue
		}
		if op.Zone == zone && op.Available() {
			return op
		}
	}

	return nil
}
