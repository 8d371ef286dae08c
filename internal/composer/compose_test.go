package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

func TestJoinInline(t *testing.T) {
	assert.Equal(t, "", joinInline(nil))
	assert.Equal(t, "א", joinInline([]string{"א"}))
	assert.Equal(t, "א וב", joinInline([]string{"א", "ב"}))
	assert.Equal(t, "א, ב וג", joinInline([]string{"א", "ב", "ג"}))
	assert.Equal(t, "א וב", joinInline([]string{"א", " ", "ב"}))
}

func TestFieldGenitive(t *testing.T) {
	assert.Equal(t, "עבודות החשמל", FieldGenitive("חשמלאי"))
	assert.Equal(t, "שירותי המיזוג", FieldGenitive("טכנאי מזגנים"))
	assert.Equal(t, "עבודות הגנן", FieldGenitive("גנן"))
	assert.Equal(t, "עבודות", FieldGenitive(""))
}

func TestDeriveVoiceTags(t *testing.T) {
	tags := DeriveVoiceTags("מקפיד על עמידה בלוחות זמנים, מחירים הוגנים ויחס אישי")
	assert.Len(t, tags, 2, "at most two echoes")
	assert.Equal(t, "עמידה בלוחות זמנים", tags[0])

	assert.Empty(t, DeriveVoiceTags(""))
	assert.Empty(t, DeriveVoiceTags("טקסט ללא אף ביטוי מוכר"))
}

func TestVoiceLine(t *testing.T) {
	assert.Equal(t, "", voiceLine(nil))
	assert.Equal(t, "דגש על שקיפות בתמחור.", voiceLine([]string{"שקיפות בתמחור"}))
	assert.Equal(t, "דגש על א וב.", voiceLine([]string{"א", "ב"}))
}

func TestSplitServiceGroups(t *testing.T) {
	groups := splitServiceGroups([]string{"א", "ב", "ג", "ד", "ה", "ו", "ז"}, 3)
	assert.Len(t, groups, 3)
	assert.Equal(t, []string{"א", "ב", "ג"}, groups[0])
	assert.Equal(t, []string{"ז"}, groups[2])

	assert.Nil(t, splitServiceGroups(nil, 3))
}

func TestPickCTA(t *testing.T) {
	assert.Empty(t, pickCTA(0, "id:1", 0, true), "disabled CTA yields nothing")

	a := pickCTA(0, "id:1", 0, false)
	assert.NotEmpty(t, a)
	assert.Equal(t, a, pickCTA(0, "id:1", 0, false), "deterministic per seed and offset")

	b := pickCTA(0, "id:1", 1, false)
	assert.NotEqual(t, a, b, "cursor offset cycles the CTA")
}

func TestPickCTANegativeGroup(t *testing.T) {
	assert.NotEmpty(t, pickCTA(-3, "id:1", 0, false))
	assert.NotEmpty(t, pickCTA(17, "id:1", 0, false))
}

func TestDisplayHeading(t *testing.T) {
	heading, hasComp := displayHeading(model.WorkerRecord{Name: "יוסי כהן", CompanyName: "כהן חשמל"})
	assert.Equal(t, "כהן חשמל בהנהלת יוסי כהן", heading)
	assert.True(t, hasComp)

	heading, hasComp = displayHeading(model.WorkerRecord{Name: "יוסי כהן"})
	assert.Equal(t, "יוסי", heading)
	assert.False(t, hasComp)
}

func TestFixKmoKhen(t *testing.T) {
	got := fixKmoKhen("יוסי כהן כמו כן זמין לקריאות", "יוסי כהן")
	assert.Equal(t, "כמו כן, יוסי זמין לקריאות", got)

	assert.Equal(t, "ללא שינוי", fixKmoKhen("ללא שינוי", "יוסי כהן"))
	assert.Equal(t, "", fixKmoKhen("", "יוסי"))
}

func TestEnrichmentSentencesDeterministicAndCapped(t *testing.T) {
	a := enrichmentSentences("מנעולן", "id:5", nil)
	b := enrichmentSentences("מנעולן", "id:5", nil)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, len(a), 3)
	assert.Contains(t, a, specialityLines["מנעולן"], "speciality line is woven in")
}

func TestEnrichmentSentencesSkipsCardDuplicates(t *testing.T) {
	card := []string{specialityLines["נגר"]}
	got := enrichmentSentences("נגר", "id:5", card)
	assert.NotContains(t, got, specialityLines["נגר"])
}
