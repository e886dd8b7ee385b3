package editord

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/opencode-ai/netforge/internal/state"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error      string             `json:"error"`
	Violations []models.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONError sends {"error": message} with the given status code.
func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		parseErr     *hocon.ParseError
		collision    *state.NameCollisionError
		invalid      *documents.InvalidNetworkError
		tooLarge     *http.MaxBytesError
		syntaxErr    *json.SyntaxError
		unmarshalErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr), errors.As(err, &syntaxErr), errors.As(err, &unmarshalErr):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrInvalidParamType), errors.Is(err, errBadRequest), errors.Is(err, starters.ErrMissingVariable):
		return http.StatusBadRequest
	case errors.As(err, &collision), errors.Is(err, state.ErrFrontmanRequired):
		return http.StatusConflict
	case errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err with its mapped status. Invalid networks carry
// their violations.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var invalid *documents.InvalidNetworkError
	if errors.As(err, &invalid) {
		resp.Violations = invalid.Violations
	}

	event := s.logger.Debug()
	if code >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", code).
		Msg("request failed")

	writeJSON(w, code, resp)
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
}

// readText reads a raw document body.
func readText(r *http.Request) (string, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeDocument(w http.ResponseWriter, tree map[string]any, format hocon.Format) error {
	data, err := documents.Render(tree, format)
	if err != nil {
		return err
	}
	switch format {
	case hocon.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case hocon.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

// formatParam reads ?format=, defaulting to HOCON.
func formatParam(r *http.Request) (hocon.Format, error) {
	format, err := hocon.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return format, nil
}

// sourceParam names an uploaded document for error messages.
func sourceParam(r *http.Request, fallback string) string {
	if source := r.URL.Query().Get("source"); source != "" {
		return source
	}
	return fallback
}
