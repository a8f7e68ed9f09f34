package controllers

import (
	"net/http"

	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/catalog"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

// MenuAvailable lists the dishes on sale, optionally filtered by ?category=.
// It backs both the public menu and the POS grid.
func MenuAvailable(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		category, err := enums.ParseDishCategoryFilter(r.URL.Query().Get("category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.FieldErrors(map[string]string{"category": "unknown category"}))
			return
		}
		dishes, err := svc.ListAvailable(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dishes)
	}
}

func MenuList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		dishes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dishes)
	}
}

func MenuGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dish, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dish)
	}
}

func MenuCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		var input catalog.DishInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dish, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dish)
	}
}

func MenuUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input catalog.DishInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dish, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, dish)
	}
}

func MenuDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// MenuToggleAvailability flips whether a dish shows on the POS and public
// menu.
func MenuToggleAvailability(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dish, err := svc.ToggleAvailability(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, dish)
	}
}
