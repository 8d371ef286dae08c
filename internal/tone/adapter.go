// Package tone turns one composed (teaser, body) pair into the three fixed
// presentation tones shown on profile pages, with an optional model-backed
// path and a TTL cache in front of it.
package tone

import (
	"regexp"
	"strings"
)

// Word and character budgets shared by the prompt and the local transforms.
const (
	MaxTeaserWords = 28
	MaxBodyWords   = 85
	MaxTeaserChars = 120
)

// Tone keys, stable across the API and the LLM contract.
const (
	KeyNeutralProfessional = "neutral_professional"
	KeyServiceHuman        = "service_human"
	KeyUrgentTrust         = "urgent_trust"
)

// Keys lists the tone keys in presentation order.
var Keys = []string{KeyNeutralProfessional, KeyServiceHuman, KeyUrgentTrust}

// Labels maps tone keys to their Hebrew admin-facing names.
var Labels = map[string]string{
	KeyNeutralProfessional: "ניטרלי-מקצועי",
	KeyServiceHuman:        "שירותי-אנושי",
	KeyUrgentTrust:         "דחוף/אמינות",
}

// Styled is one tone rendition of the composed copy.
type Styled struct {
	Teaser string `json:"teaser"`
	Body   string `json:"body"`
	Source string `json:"source"`
}

// profile defines the fixed phrase layers of one tone.
type profile struct {
	key         string
	extraTeaser string
	opening     string
	middle      string
	cta         string
}

var profiles = []profile{
	{
		key:         KeyNeutralProfessional,
		extraTeaser: "שירות מקצועי ואמין.",
		opening:     "אנו מלווים כל פנייה באופן מסודר ומקצועי.",
		middle:      "העבודה מתבצעת בשקיפות מלאה ולפי התקנים",
		cta:         "מוזמנים לפנות אלינו לכל שאלה",
	},
	{
		key:         KeyServiceHuman,
		extraTeaser: "יחס אישי לכל לקוח.",
		opening:     "חשוב לנו שתרגישו בידיים טובות מהרגע הראשון.",
		middle:      "מקשיבים לצרכים שלכם ומתאימים את הפתרון אליכם",
		cta:         "נשמח ללוות גם אתכם",
	},
	{
		key:         KeyUrgentTrust,
		extraTeaser: "מענה מהיר ואמין.",
		opening:     "כשצריך פתרון מהיר, אנחנו בדרך אליכם.",
		middle:      "מגיעים בזמן, מתעדים הכול ומסיימים בפתרון מלא",
		cta:         "התקשרו עכשיו ונתאם הגעה",
	},
}

var wordPat = regexp.MustCompile(`\S+`)

// wordTrim trims text to a word budget, appending an ellipsis marker when
// anything was cut.
func wordTrim(text string, limit int) string {
	words := wordPat.FindAllString(text, -1)
	if len(words) <= limit {
		return strings.TrimSpace(text)
	}
	trimmed := strings.TrimRight(strings.Join(words[:limit], " "), ".,;: ")
	return trimmed + "…"
}

// charTrim trims text to a character budget at a word boundary, appending an
// ellipsis marker when anything was cut.
func charTrim(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, ".,;: ") + "…"
}

// punctuate terminates a phrase with a period unless it already ends a
// sentence.
func punctuate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// Adapt layers the fixed tone phrases onto a composed (teaser, body) pair.
// Pure and stateless: identical inputs yield identical outputs.
func Adapt(teaser, body string) map[string]Styled {
	teaser = strings.TrimSpace(teaser)
	body = strings.TrimSpace(body)

	out := make(map[string]Styled, len(profiles))
	for _, p := range profiles {
		toneTeaser := strings.TrimSpace(strings.Join([]string{teaser, p.extraTeaser}, " "))
		toneTeaser = charTrim(toneTeaser, MaxTeaserChars)

		var parts []string
		if p.opening != "" {
			parts = append(parts, punctuate(p.opening))
		}
		if body != "" {
			parts = append(parts, punctuate(body))
		}
		if p.middle != "" {
			parts = append(parts, punctuate(p.middle))
		}
		if p.cta != "" {
			parts = append(parts, punctuate(p.cta))
		}
		toneBody := wordTrim(strings.Join(parts, " "), MaxBodyWords)

		out[p.key] = Styled{
			Teaser: toneTeaser,
			Body:   toneBody,
			Source: "adapter",
		}
	}
	return out
}
