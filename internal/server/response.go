package server

import (
	"context"
	"net/http"

	"garen-bot/internal/api"
	"garen-bot/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var errInvalidInput = errors.New("invalid input")

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Status     string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := err.Error()

	log := zerolog.Ctx(ctx)
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", mapped.HTTPStatus).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", mapped.HTTPStatus).Msg("request rejected")
	}

	switch mapped.HTTPStatus {
	case http.StatusInternalServerError:
		message = "internal server error"
	case http.StatusServiceUnavailable:
		message = "riot api is temporarily unavailable, try again later"
	}

	writeJSON(w, mapped.HTTPStatus, envelope{Error: &errorBody{
		Code:    mapped.HTTPStatus,
		Status:  mapped.Status,
		Message: message,
	}})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, errInvalidInput),
		errors.Is(err, domain.ErrInvalidRiotID),
		errors.Is(err, domain.ErrInvalidGuildID):
		return mappedError{HTTPStatus: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNotInGame),
		errors.Is(err, domain.ErrNoPlayers):
		return mappedError{HTTPStatus: http.StatusNotFound, Status: "NOT_FOUND"}
	case errors.Is(err, domain.ErrDuplicateAccount):
		return mappedError{HTTPStatus: http.StatusConflict, Status: "ALREADY_EXISTS"}
	case api.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Status: "INTERNAL"}
	}
}
