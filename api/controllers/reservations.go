package controllers

import (
	"context"
	"iter"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/reservations"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

// ReservationService is the subset of the reservation service the HTTP layer
// drives.
type ReservationService interface {
	Create(ctx context.Context, form reservations.Form) (*reservations.Reservation, error)
	Accept(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter reservations.Filter) (iter.Seq[reservations.Reservation], error)
	Stats(ctx context.Context) (reservations.Counts, error)
}

// SnapshotSource yields the latest encoded reservation snapshot.
type SnapshotSource interface {
	Latest() []byte
}

// StreamServer upgrades a request into a broadcast subscriber.
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request, greeting []byte) error
}

var _ ReservationService = (*reservations.Service)(nil)

// ReservationCreate accepts the public booking form.
func ReservationCreate(svc ReservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "reservation service")
			return
		}
		var form reservations.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ReservationList returns reservations newest first, filtered by ?status=
// and searched by ?q=.
func ReservationList(svc ReservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "reservation service")
			return
		}
		status, err := enums.ParseReservationStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.FieldErrors(map[string]string{"status": "must be all, pending, accepted or rejected"}))
			return
		}
		seq, err := svc.List(r.Context(), reservations.Filter{
			Status: status,
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), 120),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list := slices.Collect(seq)
		if list == nil {
			list = []reservations.Reservation{}
		}
		responses.WriteSuccess(w, list)
	}
}

func ReservationStats(svc ReservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "reservation service")
			return
		}
		counts, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// ReservationAccept and ReservationReject answer 204 on success and on an
// unknown id; deciding an already decided reservation is a 409.
func ReservationAccept(svc ReservationService, logg *logger.Logger) http.HandlerFunc {
	return reservationDecision(svc, logg, ReservationService.Accept)
}

func ReservationReject(svc ReservationService, logg *logger.Logger) http.HandlerFunc {
	return reservationDecision(svc, logg, ReservationService.Reject)
}

func reservationDecision(svc ReservationService, logg *logger.Logger, decide func(ReservationService, context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "reservation service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := decide(svc, r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ReservationStream upgrades to a websocket that first receives the current
// snapshot and then every change the watcher observes.
func ReservationStream(hub StreamServer, source SnapshotSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil || source == nil {
			unavailable(w, r, logg, "reservation stream")
			return
		}
		if err := hub.Serve(w, r, source.Latest()); err != nil && logg != nil {
			// the upgrader has already written the failure response
			logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "reservations.stream_upgrade_failed")
		}
	}
}
