package helpcenter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/help-center/pkg/helpcenter"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Getting Started", "getting-started"},
		{"How to Reset Your Password!", "how-to-reset-your-password"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"UPPER case", "upper-case"},
		{"version 2.0 notes", "version-2-0-notes"},
		{"---", "untitled"},
		{"a--b", "a-b"},
		{"Déjà vu", "d-j-vu"},
		{"如何申请退款", "untitled"},
		{"FAQ 常见问题", "faq"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := helpcenter.Slugify(tt.title)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, helpcenter.ValidateSlug(got), "a derived slug always validates")
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	slug := helpcenter.Slugify(strings.Repeat("word ", 50))
	assert.LessOrEqual(t, len(slug), 100)
	assert.NoError(t, helpcenter.ValidateSlug(slug), "a derived slug always validates")
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"a", "getting-started", "v2-notes", "x1"}
	for _, slug := range valid {
		assert.NoError(t, helpcenter.ValidateSlug(slug), slug)
	}

	invalid := []string{
		"",
		"-leading",
		"trailing-",
		"double--hyphen",
		"Upper",
		"with space",
		"under_score",
		"café",
		strings.Repeat("a", 101),
	}
	for _, slug := range invalid {
		assert.ErrorIs(t, helpcenter.ValidateSlug(slug), helpcenter.ErrInvalidInput, slug)
	}
}
