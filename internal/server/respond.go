package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

// ErrorEnvelope is the JSON body of every error response.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorEnvelope{Code: code, Message: message})
}

// writeServiceError maps a service error to a response: typed request errors
// keep their code, database errors with a stable UPPER_SNAKE message become
// 422s, everything else collapses to the fallback code.
func writeServiceError(w http.ResponseWriter, err error, fallbackCode string) {
	switch {
	case httperr.IsBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error(), err.Error())
	case httperr.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), err.Error())
	default:
		if _, ok := errors.AsType[*pgconn.PgError](err); ok {
			msg := stablePgMessage(err)
			if isStableDBCode(msg) {
				writeError(w, http.StatusUnprocessableEntity, msg, msg)
				return
			}
			if isPgInvalidInput(err) {
				writeError(w, http.StatusBadRequest, "INVALID_INPUT", pgErrorMessage(err))
				return
			}
		}
		writeError(w, http.StatusInternalServerError, fallbackCode, fallbackCode)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "bad json")
		return false
	}
	return true
}
