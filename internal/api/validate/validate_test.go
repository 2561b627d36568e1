package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name     string      `json:"name"`
		Duration interface{} `json:"duration"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "object", body: `{"name":"Jane","duration":45}`},
		{name: "object with padding", body: "  {\"name\":\"Jane\"}\n"},
		{name: "empty", body: "", wantErr: true},
		{name: "truncated", body: `{"name":`, wantErr: true},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "string", body: `"hello"`, wantErr: true},
		{name: "trailing object", body: `{"name":"a"}{"name":"b"}`, wantErr: true},
		{name: "wrong field type", body: `{"name":42}`, wantErr: true},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := DecodeJSON(strings.NewReader(tt.body), &p)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidJSON) {
					t.Fatalf("expected ErrInvalidJSON, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != "Jane" {
				t.Fatalf("expected name Jane, got %q", p.Name)
			}
		})
	}
}

func TestBookingID(t *testing.T) {
	for _, ok := range []string{"bk_0190b1c2d3e4", "legacy-id-1"} {
		if err := BookingID(ok); err != nil {
			t.Fatalf("expected %q to be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "../etc/passwd", "bk 1", strings.Repeat("a", 129)} {
		if err := BookingID(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
