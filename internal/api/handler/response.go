// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"fintrack/internal/api/types"
	"fintrack/internal/auth"
	"fintrack/internal/util"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

// base carries the helpers shared by all handlers.
type base struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h base) respondWithJSON(w http.ResponseWriter, code int, message string, data interface{}) {
	response, err := json.Marshal(types.Envelope{Success: code < http.StatusBadRequest, Message: message, Data: data})
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

var notFoundErrors = []error{
	util.ErrWalletNotFound,
	util.ErrTransactionNotFound,
	util.ErrCategoryNotFound,
	util.ErrUserNotFound,
	util.ErrNotFound,
}

// Helper function to send error responses.
func (h base) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrNegativeBalance):
		statusCode = http.StatusBadRequest
		message = util.ErrNegativeBalance.Error()
	case util.IsError(err, util.ErrSameWalletTransfer):
		statusCode = http.StatusBadRequest
		message = util.ErrSameWalletTransfer.Error()
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsNotFound(err):
		statusCode = http.StatusNotFound
		for _, target := range notFoundErrors {
			if errors.Is(err, target) {
				message = target.Error()
				break
			}
		}
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, message, nil)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %v: %w", err, util.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			problems := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed on '%s'", lowerFirst(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%s: %w", strings.Join(problems, "; "), util.ErrInvalidInput)
		}
		return fmt.Errorf("%v: %w", err, util.ErrInvalidInput)
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// idParam parses a positive int64 path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, util.ErrInvalidInput)
	}
	return id, nil
}

// intQuery parses an optional integer query parameter. Missing means def.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, util.ErrInvalidInput)
	}
	return v, nil
}

// currentUserID returns the authenticated caller's id set by RequireAuth.
func currentUserID(r *http.Request) (int64, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return 0, util.ErrUnauthorized
	}
	return p.ID, nil
}
