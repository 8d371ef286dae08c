package composer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

func workerFixture() model.WorkerRecord {
	return model.WorkerRecord{
		WorkerID: "42",
		Name:     "יוסי כהן",
		Field:    "חשמלאי",
		SubServices: []string{
			"תיקון קצרי חשמל",
			"התקנת תאורה",
		},
	}
}

func TestSeedPrecedence(t *testing.T) {
	assert.Equal(t, "saved-seed", Seed(model.WorkerRecord{AIVariantSeed: "saved-seed", WorkerID: "42"}))
	assert.Equal(t, "id:42", Seed(model.WorkerRecord{WorkerID: "42"}))

	pre := Seed(model.WorkerRecord{Name: "יוסי", Phone: "050"})
	assert.True(t, len(pre) > 4 && pre[:4] == "pre:", "anonymous records get a provisional seed")
	assert.Equal(t, pre, Seed(model.WorkerRecord{Name: "יוסי", Phone: "050"}), "provisional seed is stable")
}

func TestGenerateDraftDeterministic(t *testing.T) {
	c := New(nil, false)
	w := workerFixture()

	a := c.GenerateDraft(w)
	b := c.GenerateDraft(w)

	assert.Equal(t, a.BioShort, b.BioShort)
	assert.Equal(t, a.BioFull, b.BioFull)
	assert.Equal(t, a.SEOTitle, b.SEOTitle)
	assert.Equal(t, a.VariantID, b.VariantID)
	assert.Equal(t, a.Services, b.Services)
}

func TestGenerateDraftDeterministicWithInferredServices(t *testing.T) {
	// Unknown trade, services inferred from a bio that matches hints for
	// more than one trade: the whole draft must still be byte-identical
	// across calls.
	c := New(nil, false)
	w := model.WorkerRecord{
		WorkerID: "88",
		Name:     "דני לוי",
		Field:    "טכנאי",
		Bio:      "מתקין מזגנים ובונה מטבחים ורהיטים בהתאמה אישית",
	}

	a := c.GenerateDraft(w)
	b := c.GenerateDraft(w)

	assert.Equal(t, a.BioShort, b.BioShort)
	assert.Equal(t, a.BioFull, b.BioFull)
	assert.Equal(t, a.SEOTitle, b.SEOTitle)
	assert.Equal(t, a.Services, b.Services)
}

func TestGenerateDraftScenario(t *testing.T) {
	c := New(nil, false)
	draft := c.GenerateDraft(workerFixture())

	require.Equal(t, model.DraftStatusReady, draft.Status)
	assert.NotEmpty(t, draft.BioShort)
	assert.NotEmpty(t, draft.BioFull)
	assert.Equal(t, draft.BioShort, draft.Bio)
	assert.NotEmpty(t, draft.SEOTitle)
	assert.NotEmpty(t, draft.VariantID)
	assert.Equal(t, 1, draft.CursorNext)
	assert.Equal(t, Generator, draft.Generator)
	assert.Contains(t, styleNames, draft.Style)

	// Unlicensed worker: no certification claims in any prose.
	assert.NotContains(t, draft.BioShort, "מוסמך")
	assert.NotContains(t, draft.BioFull, "מוסמך")

	// No Latin script and no city names survive sanitization.
	latin := regexp.MustCompile(`[A-Za-z]`)
	assert.False(t, latin.MatchString(draft.BioShort))
	assert.False(t, latin.MatchString(draft.BioFull))
	assert.NotContains(t, draft.BioShort, "תל אביב")

	assert.ElementsMatch(t, []string{"תיקון קצרי חשמל", "התקנת תאורה"}, draft.Services)
}

func TestGenerateDraftCursorRotatesVariant(t *testing.T) {
	c := New(nil, false)

	w := workerFixture()
	a := c.GenerateDraft(w)

	w.AIVariantCursor = model.FlexIntPtr(1)
	b := c.GenerateDraft(w)

	assert.NotEqual(t, a.VariantID, b.VariantID)
	assert.Equal(t, 2, b.CursorNext)
}

func TestGenerateDraftAllServices(t *testing.T) {
	c := New(nil, false)

	w := workerFixture()
	w.SubServices = append([]string{}, knownPatterns["חשמלאי"]...)

	draft := c.GenerateDraft(w)
	require.Equal(t, model.DraftStatusReady, draft.Status)
	assert.Contains(t, draft.BioShort, "מתמחה בכל עבודות החשמל")
	assert.Contains(t, draft.BioFull, "מתמחה בכל עבודות החשמל")
	assert.Len(t, draft.Services, len(knownPatterns["חשמלאי"]))
}

func TestGenerateDraftEmptyRecordStillComposes(t *testing.T) {
	c := New(nil, false)
	draft := c.GenerateDraft(model.WorkerRecord{})

	assert.Equal(t, model.DraftStatusReady, draft.Status)
	assert.NotEmpty(t, draft.BioShort)
}

func TestGenerateDraftDisableCTA(t *testing.T) {
	with := New(nil, false).GenerateDraft(workerFixture())
	without := New(nil, true).GenerateDraft(workerFixture())

	assert.True(t, len(without.BioShort) < len(with.BioShort),
		"suppressing the CTA shortens the teaser")
}

func TestGenerateDraftKeepsLicensedClaims(t *testing.T) {
	c := New(nil, false)

	w := workerFixture()
	w.IsLicensed = true
	w.OriginalBio = "חשמלאי מוסמך עם דגש על יחס אישי"

	draft := c.GenerateDraft(w)
	require.Equal(t, model.DraftStatusReady, draft.Status)
	// The cert suffix only widens the parens strip; prose from templates never
	// invents one, so just assert composition stays intact.
	assert.NotEmpty(t, draft.BioShort)
}

func TestSEOTitleUsesCompanyAndTopServices(t *testing.T) {
	c := New(nil, false)

	w := workerFixture()
	w.CompanyName = "כהן חשמל"

	draft := c.GenerateDraft(w)
	assert.Contains(t, draft.SEOTitle, "כהן חשמל")
}
