package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/middleware"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errorEnvelope keeps the message at the top level as "detail", which is
// what the web client reads.
type errorEnvelope struct {
	Detail string    `json:"detail"`
	Error  errorBody `json:"error"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.writeError(w, status, errorBody{Code: code, Message: message})
}

func (a *App) writeError(w http.ResponseWriter, status int, body errorBody) {
	a.json(w, status, errorEnvelope{Detail: body.Message, Error: body})
}

// fail maps a service error onto the HTTP error envelope. Unexpected errors
// are logged and reported without detail.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		a.writeError(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: ve.Message, Field: ve.Field})
		return
	}
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrPaymentVerification):
		status, code = http.StatusBadRequest, "payment_verification_failed"
	case errors.Is(err, domain.ErrCaptcha):
		status, code = http.StatusBadRequest, "captcha_failed"
	case errors.Is(err, domain.ErrGateway):
		status, code = http.StatusBadGateway, "gateway_error"
	}
	if status == http.StatusInternalServerError {
		a.Logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("request failed")
		a.error(w, status, code, "internal server error")
		return
	}
	a.error(w, status, code, err.Error())
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		if domain.IsValidation(err) {
			a.fail(w, r, err)
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func (a *App) principal(r *http.Request) middleware.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func isAdmin(p middleware.Principal) bool {
	return p.HasRole(string(domain.RoleAdmin))
}
