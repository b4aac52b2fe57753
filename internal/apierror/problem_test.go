package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	problem := &ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
	}

	data, err := json.Marshal(problem)
	if err != nil {
		t.Fatalf("Failed to marshal ProblemDetails: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	for _, field := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "action", "errors"} {
		if _, exists := result[field]; exists {
			t.Errorf("Expected field %q to be omitted when empty, but it was present", field)
		}
	}
	for _, field := range []string{"type", "title", "status"} {
		if _, exists := result[field]; !exists {
			t.Errorf("Expected required field %q to be present", field)
		}
	}
}

func TestWriteProblemContentType(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewInternalError("req-123"))

	if got := w.Header().Get("Content-Type"); got != ContentTypeProblemJSON {
		t.Errorf("Expected Content-Type=%q, got %q", ContentTypeProblemJSON, got)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status=%d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !c.IsAborted() {
		t.Error("Expected the handler chain to be aborted")
	}
}

func TestWriteProblemRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewRateLimitError("req-456", 120))

	if got := w.Header().Get("Retry-After"); got != "120" {
		t.Errorf("Expected Retry-After header=%q, got %q", "120", got)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response body: %v", err)
	}
	if result["retry_after"] != float64(120) {
		t.Errorf("Expected retry_after in body=%d, got %v", 120, result["retry_after"])
	}
}

func TestWriteProblemNoRetryAfterWhenNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteProblem(c, NewInternalError("req-789"))

	if got := w.Header().Get("Retry-After"); got != "" {
		t.Errorf("Expected no Retry-After header, got %q", got)
	}
}

func TestFromBindingError_FieldErrors(t *testing.T) {
	UseJSONFieldNames()

	type payload struct {
		Amount    float64 `json:"amount" binding:"required,gt=0"`
		DailyGoal int     `json:"daily_goal" binding:"gte=0"`
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/intake", strings.NewReader(`{"amount": -5, "daily_goal": -1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	err := c.ShouldBindJSON(&p)
	if err == nil {
		t.Fatal("Expected binding to fail")
	}

	problem := FromBindingError("req-1", err)
	if problem.Type != TypeValidation {
		t.Fatalf("Expected type=%q, got %q", TypeValidation, problem.Type)
	}
	if len(problem.Errors) != 2 {
		t.Fatalf("Expected 2 field errors, got %+v", problem.Errors)
	}
	if problem.Errors[0].Field != "amount" || problem.Errors[0].Code != "gt" {
		t.Errorf("Unexpected first field error: %+v", problem.Errors[0])
	}
	if problem.Errors[1].Field != "daily_goal" || problem.Errors[1].Message != "must be at least 0" {
		t.Errorf("Unexpected second field error: %+v", problem.Errors[1])
	}
}

func TestFromBindingError_MalformedJSON(t *testing.T) {
	problem := FromBindingError("req-2", errors.New("unexpected EOF"))

	if problem.Type != TypeBadRequest {
		t.Errorf("Expected type=%q, got %q", TypeBadRequest, problem.Type)
	}
	if problem.Detail != "unexpected EOF" {
		t.Errorf("Expected detail=%q, got %q", "unexpected EOF", problem.Detail)
	}
}

func TestFromAnalyticsError(t *testing.T) {
	err := fmt.Errorf("failed to build report: %w", &analytics.ValidationError{Field: "weight_kg", Message: "must be greater than zero"})

	problem := FromAnalyticsError("req-3", err)
	if problem == nil {
		t.Fatal("Expected a problem for a wrapped validation error")
	}
	if problem.Status != http.StatusBadRequest {
		t.Errorf("Expected status=%d, got %d", http.StatusBadRequest, problem.Status)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "weight_kg" {
		t.Errorf("Unexpected field errors: %+v", problem.Errors)
	}

	if FromAnalyticsError("req-4", errors.New("boom")) != nil {
		t.Error("Expected nil for a non-validation error")
	}
}

func TestNewInternalErrorHidesDetails(t *testing.T) {
	problem := NewInternalError("req-xyz")

	if problem.Detail != "An unexpected error occurred" {
		t.Errorf("Expected generic detail, got %q", problem.Detail)
	}
	if problem.UserMessage == "" {
		t.Error("Expected user_message to be set")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		problem *ProblemDetails
		typ     string
		status  int
	}{
		{"not found", NewNotFoundError("r", "Intake", "abc"), TypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("r", "dup"), TypeConflict, http.StatusConflict},
		{"rate limit", NewRateLimitError("r", 60), TypeRateLimit, http.StatusTooManyRequests},
		{"unauthorized", NewUnauthorizedError("r"), TypeUnauthorized, http.StatusUnauthorized},
		{"invalid uuid", NewInvalidUUIDError("r", "id", "nope"), TypeInvalidUUID, http.StatusBadRequest},
		{"future timestamp", NewFutureTimestampError("r", "id"), TypeFutureTimestamp, http.StatusBadRequest},
		{"unavailable", NewServiceUnavailableError("r", 300), TypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.problem.Type != tt.typ {
				t.Errorf("Expected type=%q, got %q", tt.typ, tt.problem.Type)
			}
			if tt.problem.Status != tt.status {
				t.Errorf("Expected status=%d, got %d", tt.status, tt.problem.Status)
			}
			if tt.problem.RequestID != "r" {
				t.Errorf("Expected request_id=%q, got %q", "r", tt.problem.RequestID)
			}
		})
	}

	if p := NewNotFoundError("r", "Intake", "abc"); p.Detail != "Intake with ID 'abc' was not found" {
		t.Errorf("Unexpected detail: %q", p.Detail)
	}
	if p := NewUnauthorizedError("r"); p.Action != "authenticate" {
		t.Errorf("Expected action=%q, got %q", "authenticate", p.Action)
	}
}

func TestProblemDetailsError(t *testing.T) {
	withDetail := &ProblemDetails{Title: TitleValidation, Detail: "Custom error message"}
	if withDetail.Error() != "Custom error message" {
		t.Errorf("Expected Error()=%q, got %q", "Custom error message", withDetail.Error())
	}

	withoutDetail := &ProblemDetails{Title: TitleValidation}
	if withoutDetail.Error() != TitleValidation {
		t.Errorf("Expected Error()=%q, got %q", TitleValidation, withoutDetail.Error())
	}
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("request_id", "ctx-req-123")
	if got := GetRequestID(c); got != "ctx-req-123" {
		t.Errorf("Expected request_id=%q, got %q", "ctx-req-123", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest("GET", "/test", nil)
	c2.Request.Header.Set("X-Request-ID", "header-req-456")
	if got := GetRequestID(c2); got != "header-req-456" {
		t.Errorf("Expected request_id from header=%q, got %q", "header-req-456", got)
	}

	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Request = httptest.NewRequest("GET", "/test", nil)
	if got := GetRequestID(c3); got != "" {
		t.Errorf("Expected empty request_id, got %q", got)
	}
}
