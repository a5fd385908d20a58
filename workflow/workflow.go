// Package workflow runs the multi-step writes: creating events and projects
// with their members, replacing membership sets and answering invitations.
// Each operation runs in a single database transaction, so a failure
// leaves no partial state behind.
package workflow

import (
	"context"

	"gorm.io/gorm"
	"teamcal/store"
	"teamcal/utils"
)

type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// inTx runs fn with stores bound to one transaction.
func (e *Engine) inTx(ctx context.Context, fn func(s *store.Stores) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(store.New(tx))
	})
}

// checkUsers fails with a validation error naming the first unknown id.
func checkUsers(ctx context.Context, users *store.UserStore, ids []uint) error {
	missing, err := users.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return utils.NewError(utils.ErrValidation, "user %d does not exist", missing[0])
	}
	return nil
}

func checkProject(ctx context.Context, projects *store.ProjectStore, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := projects.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewError(utils.ErrValidation, "project %d does not exist", *id)
	}
	return nil
}

func requireFound(ok bool, err error, what string) error {
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewError(utils.ErrNotFound, "%s not found", what)
	}
	return nil
}
