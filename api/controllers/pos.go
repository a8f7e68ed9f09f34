package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/cart"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

type addCartItemRequest struct {
	DishID uuid.UUID `json:"dish_id" validate:"required"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type submitSaleRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// SaleSubmitter turns an employee's session cart into a sale.
type SaleSubmitter interface {
	Submit(ctx context.Context, employeeID uuid.UUID, method enums.PaymentMethod) (*sales.SaleDTO, error)
}


func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), employeeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CartAddItem adds one unit of a dish to the caller's cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Add(r.Context(), employeeID, req.DishID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dishID, err := validators.URLParamUUID(r, "dishId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.UpdateQuantity(r.Context(), employeeID, dishID, *req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dishID, err := validators.URLParamUUID(r, "dishId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Remove(r.Context(), employeeID, dishID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// SaleSubmit charges the caller's cart. On failure the cart is left as it
// was so the cashier can retry.
func SaleSubmit(svc SaleSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req submitSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.FieldErrors(map[string]string{"payment_method": "must be cash or card"}))
			return
		}
		sale, err := svc.Submit(r.Context(), employeeID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}
