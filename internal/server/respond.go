package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/logger"
)

// maxBodyBytes bounds request bodies. Editor tabs carry whole SQL files,
// so the limit is generous.
const maxBodyBytes = 8 << 20

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindNotConnected:
		return http.StatusConflict
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	case errs.ErrKindQueryFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.ErrorWith("request failed", err, map[string]any{"path": r.URL.Path})
	} else {
		log.Debugf("request rejected: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind.String()})
}

// decode reads a JSON body into v. Unknown fields are tolerated so older
// clients keep working.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.New(errs.ErrKindInvalidInput, "request body is empty")
		case errors.As(err, &tooLarge):
			return errs.Wrap(errs.ErrKindInvalidInput, "request body is too large", err)
		default:
			return errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
		}
	}
	return nil
}
