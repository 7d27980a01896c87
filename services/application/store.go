package application

import (
	"context"

	appmodel "passport-apply/models/application"
)

// Store is the persistence boundary for application aggregates. Load returns
// a NotFound error for unknown ids.
type Store interface {
	Load(ctx context.Context, id uint) (*appmodel.Application, error)
	Save(ctx context.Context, app *appmodel.Application) (*appmodel.Application, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]appmodel.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]appmodel.Application, error)
}
