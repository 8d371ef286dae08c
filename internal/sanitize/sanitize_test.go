package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

func TestStripFieldParens(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		label string
		want  string
	}{
		{
			name:  "single word label",
			in:    "חשמלאי מומחה (חשמלאי) באזור",
			label: "חשמלאי",
			want:  "חשמלאי מומחה באזור",
		},
		{
			name:  "multi word label matches first word too",
			in:    "שלמה (חשמלאי) לשירותכם",
			label: "חשמלאי מוסמך",
			want:  "שלמה לשירותכם",
		},
		{
			name:  "no parens",
			in:    "אינסטלטור ותיק",
			label: "אינסטלטור",
			want:  "אינסטלטור ותיק",
		},
		{
			name:  "empty label is a no-op",
			in:    "טקסט כלשהו",
			label: "",
			want:  "טקסט כלשהו",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFieldParens(tt.in, tt.label))
		})
	}
}

func TestStripLatin(t *testing.T) {
	assert.Equal(t, "שירות עבודות החשמל מהיר", StripLatin("שירות Electrical work מהיר"))
	assert.Equal(t, "טכנאי מומחה", StripLatin("טכנאי AC מומחה"))
	assert.Equal(t, "ללא שינוי", StripLatin("ללא שינוי"))
}

func TestStripExperience(t *testing.T) {
	assert.Equal(t, "חשמלאי באזור", StripExperience("חשמלאי עם 10 שנות ניסיון באזור"))
	assert.Equal(t, "טכנאי בתחום", StripExperience("טכנאי ניסיון רב בתחום"))
	assert.Equal(t, "שירות אמין", StripExperience("שירות אמין"))
}

func TestStripCities(t *testing.T) {
	assert.Equal(t, "שירותי חשמל והסביבה", StripCities("שירותי חשמל בתל אביב והסביבה"))
	assert.Equal(t, "אינסטלציה מקצועית", StripCities("אינסטלציה בחיפה מקצועית"))
	assert.Equal(t, "שירות ארצי", StripCities("שירות ארצי"))
}

func TestRedactClaims(t *testing.T) {
	t.Run("unlicensed loses cert and warranty terms", func(t *testing.T) {
		got := RedactClaims("חשמלאי מוסמך עם אחריות מלאה", model.Policy{})
		assert.NotContains(t, got, "מוסמך")
		assert.NotContains(t, got, "אחריות")
	})

	t.Run("licensed keeps cert terms", func(t *testing.T) {
		got := RedactClaims("חשמלאי מוסמך לשירותכם", model.Policy{Licensed: true})
		assert.Contains(t, got, "מוסמך")
	})

	t.Run("warranty kept with warranty years", func(t *testing.T) {
		got := RedactClaims("אחריות מלאה על העבודה", model.Policy{WarrantyYears: 2})
		assert.Contains(t, got, "אחריות מלאה")
	})

	t.Run("invoice terms gated on vat flag", func(t *testing.T) {
		assert.NotContains(t, RedactClaims("כולל חשבונית מס", model.Policy{}), "חשבונית")
		assert.Contains(t, RedactClaims("כולל חשבונית מס", model.Policy{InvoiceVAT: true}), "חשבונית")
	})

	t.Run("claim terms never match inside words", func(t *testing.T) {
		assert.Equal(t, "העבודה באחריותנו המלאה",
			RedactClaims("העבודה באחריותנו המלאה", model.Policy{}))
		assert.Equal(t, "הבקשה התקבלה במשרד",
			RedactClaims("הבקשה התקבלה במשרד", model.Policy{}))
	})

	t.Run("adjacent claim terms are all removed", func(t *testing.T) {
		got := RedactClaims("חשמלאי מוסמך מורשה ומנוסה", model.Policy{})
		assert.NotContains(t, got, "מוסמך")
		assert.NotContains(t, got, "מורשה")
	})

	t.Run("emergency availability always stripped", func(t *testing.T) {
		got := RedactClaims("זמינים 24/7 לכל קריאה", model.Policy{Emergency: true})
		assert.NotContains(t, got, "24")
		assert.Equal(t, "זמינים לכל קריאה", got)
	})
}

func TestSanitizePipeline(t *testing.T) {
	got := Sanitize(
		"חשמלאי מוסמך (חשמלאי) עם 5 שנות ניסיון בתל אביב, זמין 24/7",
		"חשמלאי",
		model.Policy{},
	)
	assert.Equal(t, "חשמלאי, זמין", got)
}

func TestSanitizeKeepsAuthorizedClaims(t *testing.T) {
	got := Sanitize(
		"חשמלאי מוסמך לכל עבודות החשמל",
		"חשמלאי מוסמך",
		model.Policy{Licensed: true},
	)
	assert.Contains(t, got, "מוסמך")
	assert.NotEmpty(t, got)
}
