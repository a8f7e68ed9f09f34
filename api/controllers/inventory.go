package controllers

import (
	"net/http"

	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/shopspring/decimal"
)

type adjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

type setStockRequest struct {
	Stock decimal.Decimal `json:"stock" validate:"gte=0"`
}

func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func InventoryLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		items, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func InventoryCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		var input inventory.IngredientInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input inventory.IngredientInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, item)
	}
}

func InventoryDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
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

// InventoryAdjust applies a signed delta to the stock. The result is clamped
// at zero.
func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.AdjustStock(r.Context(), id, req.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, item)
	}
}

func InventorySetStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.SetStock(r.Context(), id, req.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, item)
	}
}
