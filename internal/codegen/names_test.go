package codegen

import (
	"testing"

	"github.com/ppiankov/tagc/internal/model"
)

func TestExportName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"name", "Name"},
		{"full_height", "FullHeight"},
		{"id", "ID"},
		{"uuid", "UUID"},
		{"country_id", "CountryID"},
		{"fooBar", "FooBar"},
		{"foo_bar", "FooBar"},
		{"_private", "Private"},
		{"x_1", "X1"},
		{"größe", "Größe"},
		{"名", "X名"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportName(tt.name); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestMethodName_Raw(t *testing.T) {
	if got := MethodName("full_height", model.NamingRaw); got != "full_height" {
		t.Errorf("Expected raw name, got %s", got)
	}
	if got := MethodName("full_height", model.NamingExported); got != "FullHeight" {
		t.Errorf("Expected FullHeight, got %s", got)
	}
}

func TestReceiverName(t *testing.T) {
	tests := []struct {
		decl     *model.TypeDecl
		override string
		expected string
		desc     string
	}{
		{
			decl:     &model.TypeDecl{Name: "Country"},
			expected: "c",
			desc:     "first letter lowercased",
		},
		{
			decl:     &model.TypeDecl{Name: "Country", Receiver: "country"},
			override: "x",
			expected: "country",
			desc:     "declared receiver wins",
		},
		{
			decl:     &model.TypeDecl{Name: "Country"},
			override: "x",
			expected: "x",
			desc:     "configured override",
		},
		{
			decl:     &model.TypeDecl{Name: "Shade", Variants: []*model.VariantDecl{{Name: "s"}, {Name: "sv"}}},
			expected: "svv",
			desc:     "avoids variant names",
		},
		{
			decl:     &model.TypeDecl{Name: "Flag", Variants: []*model.VariantDecl{{Name: "f"}}},
			expected: "fv",
			desc:     "avoids single variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := receiverName(tt.decl, tt.override); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
