// Package store holds the GORM-backed collections for users, projects,
// events and invitations. Stores are cheap values around a *gorm.DB, so a
// workflow can build them on a transaction handle and get atomic writes.
//
// Lookups of a missing row return an error wrapping utils.ErrNotFound;
// unique violations wrap utils.ErrConflict. Anything else is an
// unexpected storage failure.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"teamcal/utils"
)

// Stores bundles one of each store over the same handle.
type Stores struct {
	Users       *UserStore
	Projects    *ProjectStore
	Events      *EventStore
	Invitations *InvitationStore
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		Users:       NewUserStore(db),
		Projects:    NewProjectStore(db),
		Events:      NewEventStore(db),
		Invitations: NewInvitationStore(db),
	}
}

func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewError(utils.ErrNotFound, "%s not found", what)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

// dedupe drops repeated ids while keeping first-seen order.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
