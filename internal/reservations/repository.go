package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
)

var (
	// ErrNotFound is returned by UpdateStatus when no reservation has the id.
	ErrNotFound = errors.New("reservation not found")
	// ErrNotPending is returned by UpdateStatus when the reservation was
	// already accepted or rejected.
	ErrNotPending = errors.New("reservation already decided")
)

// Reservation is a table booking as stored in the redis document and
// returned to clients.
type Reservation struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Phone     string                  `json:"phone"`
	Date      string                  `json:"date"`
	Time      string                  `json:"time"`
	Guests    int                     `json:"guests"`
	Status    enums.ReservationStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

func fromModel(m models.Reservation) Reservation {
	return Reservation{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Date:      m.Date,
		Time:      m.Time,
		Guests:    m.Guests,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

func (r Reservation) toModel() models.Reservation {
	return models.Reservation{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Date:      r.Date,
		Time:      r.Time,
		Guests:    r.Guests,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

// Repository is the persistence port for reservations. UpdateStatus only
// moves a pending reservation and reports ErrNotFound or ErrNotPending
// otherwise.
type Repository interface {
	List(ctx context.Context) ([]Reservation, error)
	Create(ctx context.Context, r Reservation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error
}
