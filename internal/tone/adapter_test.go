package tone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptProducesAllTones(t *testing.T) {
	out := Adapt("חשמלאי אמין באזור", "מתמחה בתיקוני חשמל ובהתקנות תאורה")

	require.Len(t, out, 3)
	for _, key := range Keys {
		styled, ok := out[key]
		require.True(t, ok, "missing tone %s", key)
		assert.NotEmpty(t, styled.Teaser)
		assert.NotEmpty(t, styled.Body)
		assert.Equal(t, "adapter", styled.Source)
	}

	assert.NotEqual(t, out[KeyNeutralProfessional].Body, out[KeyUrgentTrust].Body,
		"tones must differ in their layered phrasing")
}

func TestAdaptIsPure(t *testing.T) {
	a := Adapt("טיזר", "גוף הטקסט")
	b := Adapt("טיזר", "גוף הטקסט")
	assert.Equal(t, a, b)
}

func TestAdaptTeaserCharBudget(t *testing.T) {
	long := strings.Repeat("מילה ארוכה ", 40)
	out := Adapt(long, "גוף")
	for _, key := range Keys {
		assert.LessOrEqual(t, len([]rune(out[key].Teaser)), MaxTeaserChars+1,
			"teaser must fit the character budget (plus ellipsis)")
	}
}

func TestAdaptBodyWordBudget(t *testing.T) {
	long := strings.Repeat("מילה ", 200)
	out := Adapt("טיזר", long)
	for _, key := range Keys {
		words := strings.Fields(out[key].Body)
		assert.LessOrEqual(t, len(words), MaxBodyWords)
	}
}

func TestWordTrim(t *testing.T) {
	assert.Equal(t, "אחת שתיים", wordTrim("אחת שתיים", 5))
	assert.Equal(t, "אחת שתיים…", wordTrim("אחת שתיים שלוש ארבע", 2))
	assert.Equal(t, "אחת…", wordTrim("אחת, שתיים", 1), "trailing punctuation is dropped before the ellipsis")
}

func TestCharTrim(t *testing.T) {
	assert.Equal(t, "קצר", charTrim("קצר", 10))

	got := charTrim("מילה ראשונה מילה שנייה מילה שלישית", 15)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 16)
}

func TestPunctuate(t *testing.T) {
	assert.Equal(t, "משפט.", punctuate("משפט"))
	assert.Equal(t, "משפט!", punctuate("משפט!"))
	assert.Equal(t, "", punctuate("  "))
}

func TestLabelsCoverKeys(t *testing.T) {
	for _, key := range Keys {
		assert.NotEmpty(t, Labels[key])
	}
}
