package oaserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolutionError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ResolutionError{
			Ref:     "#/components/schemas/Pet",
			Path:    "paths./pets.get",
			Message: "target does not exist",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "resolution error at paths./pets.get: #/components/schemas/Pet: target does not exist: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ResolutionError{}
		if err.Error() != "resolution error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message for circular reference", func(t *testing.T) {
		err := &ResolutionError{
			Ref:        "#/components/parameters/Cursor",
			IsCircular: true,
		}
		expected := "circular reference: #/components/parameters/Cursor"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ResolutionError{Cause: cause}
		//nolint:errorlint // testing pointer identity
		if unwrapped := err.Unwrap(); unwrapped != cause {
			t.Error("Unwrap should return cause")
		}
	})

	t.Run("Is matches ErrResolution", func(t *testing.T) {
		err := &ResolutionError{Message: "test"}
		if !errors.Is(err, ErrResolution) {
			t.Error("ResolutionError should match ErrResolution")
		}
	})

	t.Run("Is matches ErrCircularReference only when circular", func(t *testing.T) {
		if !errors.Is(&ResolutionError{IsCircular: true}, ErrCircularReference) {
			t.Error("circular ResolutionError should match ErrCircularReference")
		}
		if errors.Is(&ResolutionError{}, ErrCircularReference) {
			t.Error("non-circular ResolutionError should not match ErrCircularReference")
		}
	})

	t.Run("Is does not match other sentinels", func(t *testing.T) {
		err := &ResolutionError{}
		if errors.Is(err, ErrNoMatch) {
			t.Error("ResolutionError should not match ErrNoMatch")
		}
		if errors.Is(err, ErrNoResponseSpec) {
			t.Error("ResolutionError should not match ErrNoResponseSpec")
		}
	})

	t.Run("As extracts ResolutionError", func(t *testing.T) {
		err := fmt.Errorf("compile: %w", &ResolutionError{Ref: "#/components/schemas/Missing"})
		var resErr *ResolutionError
		if !errors.As(err, &resErr) {
			t.Fatal("errors.As should succeed")
		}
		if resErr.Ref != "#/components/schemas/Missing" {
			t.Errorf("unexpected ref: %s", resErr.Ref)
		}
	})
}

func TestNoMatchError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &NoMatchError{Method: "GET", Path: "/unknown/route"}
		expected := "no matching path template for GET /unknown/route"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrNoMatch", func(t *testing.T) {
		err := &NoMatchError{Method: "GET", Path: "/x"}
		if !errors.Is(err, ErrNoMatch) {
			t.Error("NoMatchError should match ErrNoMatch")
		}
		if errors.Is(err, ErrMethodNotAllowed) {
			t.Error("NoMatchError should not match ErrMethodNotAllowed")
		}
	})
}

func TestMethodNotAllowedError(t *testing.T) {
	t.Run("Error message with allowed methods", func(t *testing.T) {
		err := &MethodNotAllowedError{
			Method:   "DELETE",
			Path:     "/pets/42",
			Template: "/pets/{petId}",
			Allowed:  []string{"GET", "PATCH"},
		}
		expected := "method DELETE not allowed for /pets/{petId} (allowed: GET, PATCH)"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message without allowed methods", func(t *testing.T) {
		err := &MethodNotAllowedError{Method: "POST", Template: "/ping"}
		if err.Error() != "method POST not allowed for /ping" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrMethodNotAllowed", func(t *testing.T) {
		err := &MethodNotAllowedError{Method: "PUT"}
		if !errors.Is(err, ErrMethodNotAllowed) {
			t.Error("MethodNotAllowedError should match ErrMethodNotAllowed")
		}
		if errors.Is(err, ErrNoMatch) {
			t.Error("MethodNotAllowedError should not match ErrNoMatch")
		}
	})
}

func TestNoResponseSpecError(t *testing.T) {
	t.Run("Error message with declared selectors", func(t *testing.T) {
		err := &NoResponseSpecError{
			Status:   409,
			Method:   "POST",
			Template: "/pets",
			Declared: []string{"200", "400", "default"},
		}
		expected := "no response specification for status 409 on POST /pets (declared: 200, 400, default)"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message without declared selectors", func(t *testing.T) {
		err := &NoResponseSpecError{Status: 500, Method: "GET", Template: "/pets"}
		if err.Error() != "no response specification for status 500 on GET /pets" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrNoResponseSpec", func(t *testing.T) {
		err := &NoResponseSpecError{Status: 418}
		if !errors.Is(err, ErrNoResponseSpec) {
			t.Error("NoResponseSpecError should match ErrNoResponseSpec")
		}
	})

	t.Run("As extracts NoResponseSpecError", func(t *testing.T) {
		err := fmt.Errorf("validate: %w", &NoResponseSpecError{Status: 409})
		var nrs *NoResponseSpecError
		if !errors.As(err, &nrs) {
			t.Fatal("errors.As should succeed")
		}
		if nrs.Status != 409 {
			t.Errorf("unexpected status: %d", nrs.Status)
		}
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ConfigError{
			Option:  "WithMaxRefDepth",
			Value:   -1,
			Message: "must be positive",
			Cause:   cause,
		}
		expected := "configuration error for WithMaxRefDepth (value: -1): must be positive: underlying"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ConfigError{}
		if err.Error() != "configuration error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrConfig", func(t *testing.T) {
		err := &ConfigError{Option: "WithLogger"}
		if !errors.Is(err, ErrConfig) {
			t.Error("ConfigError should match ErrConfig")
		}
	})

	t.Run("Unwrap returns nil when no cause", func(t *testing.T) {
		err := &ConfigError{}
		if err.Unwrap() != nil {
			t.Error("Unwrap should return nil when no cause")
		}
	})
}
