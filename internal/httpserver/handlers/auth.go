package handlers

import (
	"errors"
	"net/http"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/mw"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginRequest
		if err := decodeJSON(r, &in); err != nil || in.Username == "" || in.Password == "" {
			respond.Error(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		signed, err := d.Auth.Login(r.Context(), in.Username, in.Password)
		switch {
		case err == nil:
			respond.JSON(w, http.StatusOK, loginResponse{Token: signed})
		case errors.Is(err, service.ErrValidation):
			msg, _ := validationMessage(err)
			respond.Error(w, http.StatusBadRequest, msg)
		case errors.Is(err, service.ErrInvalidCredentials):
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			internalError(w, d.Logger, "Login failed", err)
		}
	}
}

func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := mw.ClaimsFrom(r.Context())
		if err := d.Auth.Logout(r.Context(), claims); err != nil {
			internalError(w, d.Logger, "Logout failed", err)
			return
		}
		respond.OK(w, "Logout successful")
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func ChangePassword(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := mw.ClaimsFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var in changePasswordRequest
		if err := decodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, "Input tidak valid")
			return
		}

		err := d.Auth.ChangePassword(r.Context(), claims.AdminID, in.CurrentPassword, in.NewPassword)
		switch {
		case err == nil:
			respond.OK(w, "Password berhasil diubah")
		case errors.Is(err, service.ErrValidation):
			msg, _ := validationMessage(err)
			respond.Error(w, http.StatusBadRequest, msg)
		case errors.Is(err, service.ErrWrongPassword):
			respond.Error(w, http.StatusBadRequest, "password saat ini salah")
		default:
			internalError(w, d.Logger, "gagal mengubah password", err)
		}
	}
}
