package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Conflict("x"), http.StatusConflict},
		{FetchFailure(errors.New("boom"), "products"), http.StatusBadGateway},
		{Configuration("x"), http.StatusInternalServerError},
		{Internal(errors.New("db"), "x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.StatusCode != tt.want {
			t.Errorf("%s: status %d, want %d", tt.err.Kind, tt.err.StatusCode, tt.want)
		}
	}
}

func TestIsFollowsWrapChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("load market: %w", FetchFailure(cause, "market"))

	if !Is(err, KindFetchFailure) {
		t.Fatalf("expected fetch failure kind in %v", err)
	}
	if Is(err, KindConfiguration) {
		t.Fatalf("unexpected configuration kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost from chain")
	}
}
