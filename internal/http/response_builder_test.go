package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"financetracker/internal/auth"
	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/storage"
)

func TestErrorResponseFor(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		errType   string
		wantField string
	}{
		{"duplicate category", core.DuplicateCategoryError(), http.StatusConflict, log.ErrorTypeConflict, "name"},
		{"duplicate budget", core.DuplicateBudgetError(core.Monthly, "Utilities"), http.StatusConflict, log.ErrorTypeConflict, nonFieldErrors},
		{"validation", fmt.Errorf("create: %w", requiredField("amount")), http.StatusUnprocessableEntity, log.ErrorTypeValidation, "amount"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, log.ErrorTypeAuth, ""},
		{"not found", fmt.Errorf("get: %w", storage.ErrNotFound), http.StatusNotFound, log.ErrorTypeNotFound, ""},
		{"storage duplicate", storage.ErrDuplicate, http.StatusConflict, log.ErrorTypeConflict, ""},
		{"malformed", errMalformedBody, http.StatusBadRequest, log.ErrorTypeValidation, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, log.ErrorTypeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, errType := errorResponseFor(tt.err)
			if errType != tt.errType {
				t.Errorf("errType = %q, want %q", errType, tt.errType)
			}
			rec := httptest.NewRecorder()
			resp.Write(rec)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Header().Get("Content-Type") != contentTypeJSON {
				t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" {
				t.Fatal("empty error message")
			}
			if tt.wantField != "" {
				if msgs := body.Errors[tt.wantField]; len(msgs) != 1 || msgs[0] != body.Error {
					t.Fatalf("errors = %v", body.Errors)
				}
			}
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(rec, req, log.OpRead, errors.New("database is locked"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Internal server error." {
		t.Fatalf("leaked error: %q", body.Error)
	}
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	UnauthorizedError("nope").Write(rec)
	if rec.Header().Get("WWW-Authenticate") == "" || rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d %v", rec.Code, rec.Header())
	}
}
