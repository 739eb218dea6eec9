package handler

import (
	"context"
	"errors"
	"net/http"
	"pixproxy/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// StatusCode maps an error returned while serving a request to its HTTP status.
func StatusCode(err error) int {
	var (
		malformed   *domain.MalformedSourceError
		quality     *domain.InvalidQualityError
		query       *QueryError
		illegalHost *domain.IllegalHostError
		size        *domain.MaxSizeExceededError
		fetch       *domain.FetchError
		unsupported *domain.UnsupportedEncodingError
		imageErr    *domain.ImageError
	)

	switch {
	case errors.As(err, &malformed), errors.As(err, &quality), errors.As(err, &query),
		errors.Is(err, domain.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.As(err, &illegalHost):
		return http.StatusForbidden
	case errors.As(err, &size):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unsupported):
		if unsupported.Stage == domain.StageEncode {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	case errors.As(err, &imageErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)

	l := log.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	http.Error(w, err.Error(), status)
}
