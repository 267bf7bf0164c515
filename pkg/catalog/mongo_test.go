package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	tio "github.com/matzehuels/talklike/pkg/io"
)

func TestMongoDocument(t *testing.T) {
	def := &definition.Definition{
		Name:          "pirate",
		Description:   "arr",
		Substitutions: map[string]string{"hello": "ahoy"},
	}
	for _, format := range tio.Formats {
		t.Run(string(format), func(t *testing.T) {
			doc, err := newMongoDocument("pirate.yaml", def, format)
			if err != nil {
				t.Fatal(err)
			}
			if doc.ID != "pirate" || doc.Description != "arr" || doc.Format != string(format) {
				t.Errorf("document = %+v", doc)
			}
			got, err := doc.definition()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(def, got); diff != "" {
				t.Errorf("definition mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMongoDocumentErrors(t *testing.T) {
	valid := &definition.Definition{Substitutions: map[string]string{"a": "b"}}
	tests := []struct {
		name string
		id   string
		def  *definition.Definition
		code errors.Code
	}{
		{"bad id", "../x", valid, errors.ErrCodeInvalidName},
		{"invalid", "x", &definition.Definition{}, errors.ErrCodeInvalidConfiguration},
		{"unresolved script", "x", &definition.Definition{Script: &definition.Script{File: "a.lua"}}, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newMongoDocument(tt.id, tt.def, tio.FormatJSON); !errors.Is(err, tt.code) {
				t.Errorf("newMongoDocument() error = %v, want %s", err, tt.code)
			}
		})
	}

	doc := mongoDocument{ID: "x", Format: "xml", Body: "<x/>"}
	if _, err := doc.definition(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("definition() error = %v", err)
	}
}
