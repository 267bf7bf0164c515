package pipeline

import (
	"testing"

	"github.com/matzehuels/talklike/pkg/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
		code errors.Code
	}{
		{"ok", Options{Filter: "pirate", Text: "hi"}, "pirate", ""},
		{"extension stripped", Options{Filter: "pirate.yaml", Text: "hi"}, "pirate", ""},
		{"missing filter", Options{Text: "hi"}, "", errors.ErrCodeInvalidInput},
		{"traversal", Options{Filter: "../pirate", Text: "hi"}, "", errors.ErrCodeInvalidName},
		{"missing text", Options{Filter: "pirate"}, "", errors.ErrCodeInvalidInput},
		{"invalid utf8", Options{Filter: "pirate", Text: "\xff"}, "", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.opts.Filter != tt.want {
				t.Errorf("Filter = %q, want %q", tt.opts.Filter, tt.want)
			}
			if tt.opts.Logger == nil {
				t.Error("Logger default not set")
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Filter: "disco.toml", Text: "hi"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	logger := opts.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Logger != logger || opts.Filter != "disco" {
		t.Error("second call changed options")
	}
}
