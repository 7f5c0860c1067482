package errx_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

func TestWrapKeepsCode(t *testing.T) {
	base := errx.Unauthorized("token expired")
	wrapped := errx.Wrap(base, "request failed", errx.TypeExternal)

	if wrapped.Code != "AUTHORIZATION" {
		t.Fatalf("expected original code preserved, got %s", wrapped.Code)
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("expected wrapped error to unwrap to base")
	}
}

func TestWrapNil(t *testing.T) {
	if errx.Wrap(nil, "noop", errx.TypeInternal) != nil {
		t.Fatal("wrapping nil must return nil")
	}
}

func TestIsType(t *testing.T) {
	err := errx.Validation("bad input")
	if !errx.IsType(err, errx.TypeValidation) {
		t.Fatal("expected validation type")
	}
	if errx.IsType(errors.New("plain"), errx.TypeValidation) {
		t.Fatal("plain errors have no type")
	}
}

func TestRegistry(t *testing.T) {
	reg := errx.NewRegistry("STREAM")
	code := reg.Register("IDLE_TIMEOUT", errx.TypeCanceled, 499, "stream idle timeout")

	err := reg.New(code)
	if err.Code != "STREAM_IDLE_TIMEOUT" {
		t.Fatalf("expected prefixed code, got %s", err.Code)
	}
	if err.HTTPStatus != 499 {
		t.Fatalf("expected status 499, got %d", err.HTTPStatus)
	}

	custom := reg.NewWithMessage(code, "no events for 180s")
	if custom.Message != "no events for 180s" {
		t.Fatalf("unexpected message %q", custom.Message)
	}
}

func TestTypeToStatus(t *testing.T) {
	if errx.NotFound("x").HTTPStatus != http.StatusNotFound {
		t.Fatal("not found should map to 404")
	}
	if errx.External("x").HTTPStatus != http.StatusBadGateway {
		t.Fatal("external should map to 502")
	}
}
