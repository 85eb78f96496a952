package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/domain"
)

func render(t *testing.T, err error, development bool) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.Nop(), development)
	handler(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrUserExists, http.StatusBadRequest},
		{domain.ErrEmailTaken, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrLeadNotFound, http.StatusNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrActivityNotFound, http.StatusNotFound},
		{domain.ErrNotificationNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		code, body := render(t, tc.err, false)
		if code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if body["success"] != false {
			t.Errorf("%v: expected failure envelope, got %+v", tc.err, body)
		}
	}
}

func TestErrorHandler_WrappedErrorsStillMap(t *testing.T) {
	wrapped := fmt.Errorf("update lead: %w", domain.ErrLeadNotFound)
	code, body := render(t, wrapped, false)
	if code != http.StatusNotFound {
		t.Fatalf("wrapped sentinel should map to 404, got %d", code)
	}
	if body["message"] == "" {
		t.Fatalf("message should not be empty")
	}
}

func TestErrorHandler_UnexpectedErrorHidesDetails(t *testing.T) {
	code, body := render(t, errors.New("pq: connection refused"), false)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("internal details must stay hidden, got %q", body["message"])
	}
}

func TestErrorHandler_DevelopmentExposesDetails(t *testing.T) {
	code, body := render(t, errors.New("pq: connection refused"), true)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["message"] != "pq: connection refused" {
		t.Fatalf("development mode should expose the cause, got %q", body["message"])
	}
}

func TestErrorHandler_EchoHTTPErrorPassthrough(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusUnauthorized, "missing token"), false)
	if code != http.StatusUnauthorized || body["message"] != "missing token" {
		t.Fatalf("echo errors should pass through, got %d %+v", code, body)
	}
}
