package controllers

import (
	"net/http"

	"github.com/litcafe/backoffice/api/middleware"
	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/auth"
	"github.com/litcafe/backoffice/pkg/logger"
)

// AuthLogin exchanges email and password for an access and refresh token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthRefresh rotates the refresh token bound to the (possibly expired)
// bearer token.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}
		accessToken, err := middleware.BearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tokens, err := svc.Refresh(r.Context(), accessToken, req.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tokens)
	}
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}
		accessToken, err := middleware.BearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Logout(r.Context(), accessToken); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}
		employeeID, err := employeeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		me, err := svc.Me(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, me)
	}
}
