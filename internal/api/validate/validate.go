package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// MaxBodyBytes bounds inbound JSON bodies.
const MaxBodyBytes = 64 << 10

// ErrInvalidJSON is returned for bodies that are not exactly one JSON object.
var ErrInvalidJSON = errors.New("invalid JSON")

// bookingIDRx matches ids minted by the service ("bk_" + hex) and the
// looser ids older records may carry.
var bookingIDRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// DecodeJSON reads a single JSON object from r into v. Empty bodies,
// trailing data and bodies over MaxBodyBytes are rejected with ErrInvalidJSON.
func DecodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes+1))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(raw) > MaxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidJSON, MaxBodyBytes)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after object", ErrInvalidJSON)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// BookingID checks a path parameter before it reaches the store.
func BookingID(v string) error {
	if v == "" {
		return fmt.Errorf("bookingId is required")
	}
	if !bookingIDRx.MatchString(v) {
		return fmt.Errorf("bookingId contains invalid characters")
	}
	return nil
}
