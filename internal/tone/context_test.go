package tone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

func TestCollectContext(t *testing.T) {
	w := model.WorkerRecord{
		Name:         "דנה לוי",
		CompanyName:  "לוי אינסטלציה",
		FieldDisplay: "אינסטלטורית",
		City:         "רחובות",
		Years:        7,
		Rating:       4.67,
		ReviewsCount: 31,
		Languages:    []string{"עברית", "עברית", " אנגלית "},
		ServicesList: []string{"פתיחת סתימות", "איתור נזילות"},
		Highlights:   []string{"הגעה מהירה"},
		About:        "אינסטלטורית ותיקה באזור המרכז",
		CTA:          &model.CallToAction{Status: "open"},
		IsLicensed:   true,
	}

	ctx := CollectContext(w)
	assert.Equal(t, "לוי אינסטלציה", ctx.DisplayName)
	assert.Equal(t, "דנה לוי", ctx.PersonName)
	assert.Equal(t, "אינסטלטורית", ctx.FieldLabel)
	assert.Equal(t, "רחובות", ctx.City)
	assert.Equal(t, "7 שנות ניסיון", ctx.Years)
	assert.Equal(t, "4.7/5", ctx.Rating)
	assert.Equal(t, "31", ctx.ReviewsCount)
	assert.Equal(t, []string{"עברית", "אנגלית"}, ctx.Languages, "languages are de-duplicated and trimmed")
	assert.Equal(t, "פתיחת סתימות, איתור נזילות", ctx.SubServicesCompact)
	assert.Equal(t, "זמין כעת", ctx.Availability)
	assert.True(t, ctx.Policy.Licensed)
	assert.Equal(t, "אינסטלטורית ותיקה באזור המרכז", ctx.SourceBio)
}

func TestCollectContextDefaults(t *testing.T) {
	ctx := CollectContext(model.WorkerRecord{})
	assert.Equal(t, "בעל מקצוע", ctx.DisplayName)
	assert.Empty(t, ctx.Years)
	assert.Empty(t, ctx.Rating)
	assert.Empty(t, ctx.Availability)
}

func TestAvailabilityClosed(t *testing.T) {
	assert.Equal(t, "לא זמין", availability(model.WorkerRecord{
		CTA: &model.CallToAction{Status: "closed"},
	}))
	assert.Equal(t, "נחזור מחר", availability(model.WorkerRecord{
		CTA: &model.CallToAction{Status: "closed", Subline: "נחזור מחר"},
	}))
	assert.Equal(t, "בתיאום מראש", availability(model.WorkerRecord{
		CTA: &model.CallToAction{Subline: "בתיאום מראש"},
	}))
}

func TestCompressSubServicesUnderBudget(t *testing.T) {
	cleaned, compact := compressSubServices([]string{"א", "ב", "א"})
	assert.Equal(t, []string{"א", "ב"}, cleaned)
	assert.Equal(t, "א, ב", compact)
}

func TestCompressSubServicesOverBudget(t *testing.T) {
	var many []string
	for i := 0; i < 40; i++ {
		many = append(many, strings.Repeat("שירות", 3)+strings.Repeat("א", i))
	}
	cleaned, compact := compressSubServices(many)
	require.Len(t, cleaned, 40, "the cleaned list keeps everything")
	assert.Contains(t, compact, "ועוד")
	assert.Contains(t, compact, "שירותים")
	assert.Less(t, len([]rune(compact)), maxSubServiceChars+30,
		"the compact form stays near the budget even with the remainder marker")
}

func TestCompressSubServicesEmpty(t *testing.T) {
	cleaned, compact := compressSubServices(nil)
	assert.Nil(t, cleaned)
	assert.Empty(t, compact)
}

func TestUsedFields(t *testing.T) {
	ctx := CollectContext(model.WorkerRecord{Name: "יוסי", Field: "חשמלאי"})
	used := ctx.UsedFields()
	assert.Equal(t, "יוסי", used["display_name"])
	assert.Equal(t, "חשמלאי", used["field_label"])
	_, ok := used["policy_flags"]
	assert.True(t, ok)
}
