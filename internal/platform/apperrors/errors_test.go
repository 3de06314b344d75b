package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"unauthenticated", Unauthenticated("no token"), KindUnauthenticated},
		{"forbidden", Forbidden("staff required"), KindForbidden},
		{"not found", NotFound("missing"), KindNotFound},
		{"conflict", Conflict("duplicate"), KindConflict},
		{"validation", Validation("email", "required"), KindValidation},
		{"dispatch", Dispatch(fmt.Errorf("db down")), KindDispatch},
		{"plain error", fmt.Errorf("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("expected kind %d, got %d", tc.want, got)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("looking up appointment: %w", NotFound("appointment not found"))
	if !IsNotFound(err) {
		t.Error("kind must survive wrapping with fmt.Errorf")
	}
}

func TestDispatch_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Dispatch(cause)
	if !errors.Is(err, cause) {
		t.Error("dispatch error must unwrap to its cause")
	}
	if KindOf(err) != KindDispatch {
		t.Errorf("expected dispatch kind, got %d", KindOf(err))
	}
}

func TestValidation_MessageIncludesField(t *testing.T) {
	err := Validation("phone", "phone is required")
	if got := err.Error(); got != "phone: phone is required" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Unauthenticated("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Validation("f", "x"), http.StatusBadRequest},
		{Dispatch(fmt.Errorf("x")), http.StatusInternalServerError},
		{fmt.Errorf("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.want, got)
		}
	}
}
