package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/service"
)

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
}

// uintParam parses a chi URL parameter as an unsigned 32-bit id.
func uintParam(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// validationMessage returns the admin-facing message of a validation error.
func validationMessage(err error) (string, bool) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

func internalError(w http.ResponseWriter, log logger.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	respond.Error(w, http.StatusInternalServerError, msg)
}
