package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"pixproxy/internal/core/domain"
	"pixproxy/internal/core/port"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const UpstreamCacheHeader = "Pixproxy-Upstream-Cache"

// QueryError reports a query parameter that could not be parsed.
type QueryError struct {
	Param string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %v", e.Param, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Image serves transformed images addressed by an encoded source command.
type Image struct {
	processor port.ImageProcessor
}

func NewImage(processor port.ImageProcessor) *Image {
	return &Image{processor: processor}
}

// Router returns the HTTP routes of the proxy.
func (h *Image) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/{command}", h.Serve)

	return r
}

func (h *Image) Serve(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(chi.URLParam(r, "command"), r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.processor.Process(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.MIMEType)
	w.Header().Set(UpstreamCacheHeader, res.CacheStatus.String())
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Bytes)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(res.Bytes); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to write response")
	}
}

// ParseRequest decodes a command of the form base64url(source)[.extension] together with
// the query parameters of r.
func ParseRequest(command string, r *http.Request) (domain.Request, error) {
	encoded, ext, hasExt := strings.Cut(command, ".")

	source, err := DecodeSource(encoded)
	if err != nil {
		return domain.Request{}, err
	}

	req := domain.Request{Source: source}

	if hasExt {
		req.Format, err = domain.ParseFormat(ext)
		if err != nil {
			return domain.Request{}, err
		}
	} else {
		req.Format = negotiate(r.Header.Get("Accept"))
	}

	query := r.URL.Query()

	if req.Dimensions.Width, err = queryUint32(query.Get, "width", "w"); err != nil {
		return domain.Request{}, err
	}

	if req.Dimensions.Height, err = queryUint32(query.Get, "height", "h"); err != nil {
		return domain.Request{}, err
	}

	if raw, param := lookup(query.Get, "quality", "q"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Request{}, &QueryError{Param: param, Err: err}
		}
		req.Quality = &q
	}

	return req, nil
}

// DecodeSource decodes an unpadded base64url source. Trailing padding is tolerated.
func DecodeSource(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", &domain.MalformedSourceError{Reason: "source is not valid base64url", Err: err}
	}

	if !utf8.Valid(raw) {
		return "", &domain.MalformedSourceError{Reason: "source is not valid utf-8"}
	}

	return string(raw), nil
}

func negotiate(accept string) domain.Format {
	if strings.Contains(accept, domain.FormatWebP.MIMEType()) {
		return domain.FormatWebP
	}
	return domain.FormatJPEG
}

func lookup(get func(string) string, names ...string) (string, string) {
	for _, name := range names {
		if v := get(name); v != "" {
			return v, name
		}
	}
	return "", ""
}

func queryUint32(get func(string) string, names ...string) (*uint32, error) {
	raw, param := lookup(get, names...)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, &QueryError{Param: param, Err: err}
	}

	n := uint32(v)
	return &n, nil
}
