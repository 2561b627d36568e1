package store

import (
	"context"

	"github.com/novendor/novendor-site/server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (filestore, sqlite, postgres).
type Store interface {
	Bookings() Bookings
}

// UpdateFunc derives the next version of a record. Returning an error aborts
// the update without writing anything.
type UpdateFunc func(current model.Booking) (model.Booking, error)

// Bookings persists booking records keyed by id.
type Bookings interface {
	Create(ctx context.Context, b *model.Booking) (*model.Booking, error)
	// GetByID returns model.ErrNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Update applies fn to the stored record and persists the result. The
	// returned record always keeps the original id. Unknown ids yield
	// model.ErrNotFound and no write.
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.Booking, error)
}

// Closer is implemented by stores holding connections or file handles.
type Closer interface {
	Close() error
}
