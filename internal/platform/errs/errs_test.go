package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNotFound_WrapsSentinel(t *testing.T) {
	err := NotFound("office visit %d", 42)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if err.Error() != "not found: office visit 42" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("visit"), http.StatusNotFound},
		{Forbidden("role patient"), http.StatusForbidden},
		{InvalidReference("icd code X"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("save visit: %w", ErrInvalidReference), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
