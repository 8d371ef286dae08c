// Package sanitize implements the ordered text-safety pipeline applied to all
// generated Hebrew prose: field-label stripping, Latin-script removal,
// experience and city scrubbing, punctuation normalization and policy-gated
// claims redaction. Every transform is total; absence of a match is a no-op.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

// The site is Hebrew-first; RE2's \b is ASCII-only and never fires next to
// Hebrew letters, so the patterns below anchor on whitespace classes instead.
var (
	cityPat = regexp.MustCompile(`\s?ב(?:תל ?אביב(?:-יפו)?|יפו|ירושלים|חיפה|באר ?שבע|פתח ?תקווה|נתניה|אשדוד|ראשון ?לציון|רחובות|כפר ?סבא|רעננה|מודיעין|בית שמש|חולון|בת ים|הרצליה|אשקלון|נהריה|עפולה|רמת גן|גבעתיים|נוף הגליל|טבריה|צפת|כרמיאל|אילת)`)

	latinPat = regexp.MustCompile(`[A-Za-z]+(?:[ -]*[A-Za-z]+)*`)

	expNumPat     = regexp.MustCompile(`(?:עם\s+)?(?:\d{1,2}\s*(?:שנה|שנות)\s*(?:ניסיון|נסיון)|וותק\s*(?:של)?\s*\d{1,2}\s*(?:שנים|שנה)|ניסיון\s*(?:של)?\s*\d{1,2}\s*(?:שנים|שנה))`)
	expGenericPat = regexp.MustCompile(`(?:בעל(?:ת)?\s+ניסיון|ניסיון\s+רב|רב\s+ניסיון)`)

	// Claim terms carry explicit edge groups so they only match whole words:
	// "אחריותנו" is not a warranty claim, "התקבלה" is not a receipt.
	certTerms     = regexp.MustCompile(`(^|[\s,.:;!?()"'-])(?:מוסמך(?:ים)?|מורשה(?:ים)?|רשוי(?:ים)?|תעודה\s*מקצועית)($|[\s,.:;!?()"'-])`)
	warrantyTerms = regexp.MustCompile(`(^|[\s,.:;!?()"'-])אחריות(?:\s*(?:מלאה|כתובה|מורחבת))?($|[\s,.:;!?()"'-])`)
	invoiceTerms  = regexp.MustCompile(`(^|[\s,.:;!?()"'-])(?:חשבונית(?:\s*מס)?|קבלה|מע"מ)($|[\s,.:;!?()"'-])`)

	emergencyPats = []*regexp.Regexp{
		regexp.MustCompile(`חירום\s*24\s*/?\s*7`),
		regexp.MustCompile(`24\s*/?\s*7`),
		regexp.MustCompile(`זמין(?:ה)?\s+ל(?:קריאות\s+)?חירום`),
		regexp.MustCompile(`קריאות\s+חירום`),
	}

	multiSpace      = regexp.MustCompile(`\s{2,}`)
	spaceBeforePunc = regexp.MustCompile(`\s+([,.;:])`)
)

// Known Latin artifact phrases from legacy submissions, transliterated before
// the Latin strip removes whatever is left.
var latinArtifacts = []struct{ from, to string }{
	{"Electrical work", "עבודות החשמל"},
	{"electrical work", "עבודות החשמל"},
}

// StripFieldParens removes an inline parenthesized repetition of the field
// label, e.g. "(חשמלאי מוסמך)".
func StripFieldParens(t, fieldLabel string) string {
	if t == "" || fieldLabel == "" {
		return strings.TrimSpace(t)
	}
	alts := regexp.QuoteMeta(fieldLabel)
	if first := strings.Fields(fieldLabel); len(first) > 0 && first[0] != fieldLabel {
		alts += "|" + regexp.QuoteMeta(first[0])
	}
	pat, err := regexp.Compile(`\s*\((?:` + alts + `)\)\s*`)
	if err != nil {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(pat.ReplaceAllString(t, " "))
}

// StripLatin transliterates known artifact phrases and removes remaining
// Latin-script runs.
func StripLatin(t string) string {
	if t == "" {
		return t
	}
	for _, a := range latinArtifacts {
		t = strings.ReplaceAll(t, a.from, a.to)
	}
	t = latinPat.ReplaceAllString(t, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(t, " "))
}

// StripExperience removes explicit experience-year phrases; experience is
// surfaced elsewhere in the UI.
func StripExperience(t string) string {
	t = expNumPat.ReplaceAllString(t, "")
	t = expGenericPat.ReplaceAllString(t, "")
	t = multiSpace.ReplaceAllString(t, " ")
	t = spaceBeforePunc.ReplaceAllString(t, "$1")
	return strings.TrimSpace(t)
}

// StripCities removes named-city mentions; the service area is rendered
// separately.
func StripCities(t string) string {
	return cityPat.ReplaceAllString(t, "")
}

// NormalizePunct fixes common punctuation and spacing artifacts.
func NormalizePunct(t string) string {
	if t == "" {
		return t
	}
	t = strings.ReplaceAll(t, " ,", ",")
	t = strings.ReplaceAll(t, "דוד או מזגן", "דוד/מזגן")
	t = strings.ReplaceAll(t, "תכנן נקודות", "תכנון נקודות")
	t = strings.ReplaceAll(t, "נבנה עבורכם", "הכנת")
	t = spaceBeforePunc.ReplaceAllString(t, "$1")
	t = multiSpace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// RedactClaims strips trust/compliance assertions the policy does not
// authorize. Emergency availability is always stripped; it is rendered as a
// badge, never as prose.
func RedactClaims(t string, p model.Policy) string {
	if t == "" {
		return t
	}
	if !p.Licensed {
		t = redactBounded(certTerms, t)
	}
	if p.WarrantyYears <= 0 {
		t = redactBounded(warrantyTerms, t)
	}
	if !p.InvoiceVAT {
		t = redactBounded(invoiceTerms, t)
	}
	for _, rx := range emergencyPats {
		t = rx.ReplaceAllString(t, "")
	}
	t = multiSpace.ReplaceAllString(t, " ")
	t = spaceBeforePunc.ReplaceAllString(t, "$1")
	return strings.TrimSpace(t)
}

// redactBounded removes every bounded-term match, keeping the edge characters.
// Re-applied until stable: adjacent terms share an edge character, and one pass
// consumes it for the first term only.
func redactBounded(rx *regexp.Regexp, t string) string {
	for {
		next := rx.ReplaceAllString(t, "${1}${2}")
		if next == t {
			return t
		}
		t = next
	}
}

// Sanitize runs the full ordered pipeline. fieldLabel is the canonical trade
// label (with the certification suffix when the policy allows one) so the
// parens strip can match both spellings.
func Sanitize(t, fieldLabel string, p model.Policy) string {
	t = norm.NFC.String(t)
	steps := []func(string) string{
		func(s string) string { return StripFieldParens(s, fieldLabel) },
		StripLatin,
		StripExperience,
		StripCities,
		NormalizePunct,
		func(s string) string { return RedactClaims(s, p) },
	}
	for _, step := range steps {
		t = step(t)
	}
	return t
}
