package reservations

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/validation"
)

// Form is the public booking form.
type Form struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required,phone"`
	Date   string `json:"date" validate:"required,isodate"`
	Time   string `json:"time" validate:"required,clock"`
	Guests *int   `json:"guests" validate:"omitempty,min=1"`
}

// Filter narrows List. A nil Status matches every status; Query matches name
// and email case-insensitively and phone as a substring.
type Filter struct {
	Status *enums.ReservationStatus
	Query  string
}

// Counts tallies reservations by status.
type Counts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Service moderates table bookings.
type Service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	return &Service{repo: repo, logg: logg, now: time.Now}, nil
}

// Create validates the form and stores a pending reservation. Validation
// errors name only the failing fields and nothing is stored.
func (s *Service) Create(ctx context.Context, form Form) (*Reservation, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Date = strings.TrimSpace(form.Date)
	form.Time = strings.TrimSpace(form.Time)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	guests := 1
	if form.Guests != nil {
		guests = *form.Guests
	}
	res := Reservation{
		ID:        uuid.New(),
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Date:      form.Date,
		Time:      form.Time,
		Guests:    guests,
		Status:    enums.ReservationStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, pkgerrors.ClassifyDB(err, "store reservation")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "reservation_id", res.ID.String()), "reservation.created")
	}
	return &res, nil
}

// Accept moves a pending reservation to accepted.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, enums.ReservationStatusAccepted)
}

// Reject moves a pending reservation to rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, enums.ReservationStatusRejected)
}

// transition ignores unknown ids and refuses to change a decided
// reservation.
func (s *Service) transition(ctx context.Context, id uuid.UUID, to enums.ReservationStatus) error {
	err := s.repo.UpdateStatus(ctx, id, to)
	switch {
	case err == nil:
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"reservation_id": id.String(),
				"status":         to.String(),
			}), "reservation.status_changed")
		}
		return nil
	case errors.Is(err, ErrNotFound):
		return nil
	case errors.Is(err, ErrNotPending):
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation was already decided").
			WithDetails(map[string]string{"id": id.String()})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
	}
}

// List returns the reservations matching filter, newest first. The sequence
// is finite and may be ranged over more than once.
func (s *Service) List(ctx context.Context, filter Filter) (iter.Seq[Reservation], error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	return func(yield func(Reservation) bool) {
		for _, r := range all {
			if filter.Status != nil && r.Status != *filter.Status {
				continue
			}
			if query != "" && !matches(r, query) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}, nil
}

// Stats counts reservations by status.
func (s *Service) Stats(ctx context.Context) (Counts, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return Counts{}, err
	}
	return count(all), nil
}

func (s *Service) snapshot(ctx context.Context) ([]Reservation, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	sorted := slices.Clone(all)
	slices.SortStableFunc(sorted, func(a, b Reservation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted, nil
}

func count(all []Reservation) Counts {
	c := Counts{Total: len(all)}
	for _, r := range all {
		switch r.Status {
		case enums.ReservationStatusPending:
			c.Pending++
		case enums.ReservationStatusAccepted:
			c.Accepted++
		case enums.ReservationStatusRejected:
			c.Rejected++
		}
	}
	return c
}

func matches(r Reservation, query string) bool {
	return strings.Contains(strings.ToLower(r.Name), query) ||
		strings.Contains(strings.ToLower(r.Email), query) ||
		strings.Contains(r.Phone, query)
}
