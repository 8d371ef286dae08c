package composer

import (
	"bytes"
	"crypto/sha1"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/balei-miktzoa/draftgen/internal/variant"
)

// knownPatterns lists the plausible default services per trade, used when a
// record carries no explicit sub-services and for all-services detection.
var knownPatterns = map[string][]string{
	"חשמלאי": {
		"תיקון קצרי חשמל",
		"התקנת שקעים ומפסקים",
		"שדרוג לוח תלת פאזי",
		"התקנת תאורה",
		"תכנון נקודות חשמל",
		"הכנת תשתיות לדוד/מזגן",
		"איתור תקלות חשמל",
		"התקנת מאוורר תקרה",
	},
	"אינסטלטור": {
		"פתיחת סתימות",
		"איתור נזילות",
		"איתור ותיקון פיצוצי צנרת",
		"החלפת קווי מים וביוב",
		"התקנת כלים סניטריים",
		"הגברת לחץ מים",
		"בדיקת לחץ",
		"ניאגרות סמויות",
		"שיפוץ חדר אמבטיה",
		"טוחן אשפה",
		"התקנת נקודת מים",
	},
	"מנעולן": {
		"פריצת דלתות",
		"החלפת צילינדרים",
		"פתיחת כספות",
		"פריצת רכבים",
		"התקנת מנעולים חכמים",
		"חילוץ מפתחות שבורים",
	},
	"מדביר": {
		"הדברת ג'וקים ונמלים",
		"טיפול במכרסמים",
		"הדברת טרמיטים",
		"הדברה ירוקה",
		"ריסוס לחצרות ולמחסנים",
		"איתור מוקדי מזיקים",
	},
	"נגר": {
		"ייצור מטבחים בהתאמה אישית",
		"נגרות פנים",
		"בניית ארונות קיר",
		"תיקון רהיטי עץ",
		"חידוש משטחי עץ",
		"עבודות פרגולות ודקים",
	},
	"שיפוצניק": {
		"שיפוץ דירות",
		"חידוש חדרי אמבטיה",
		"עבודות צבע וגבס",
		"החלפת ריצוף",
		"שדרוג מטבחים",
		"עבודות חשמל ואינסטלציה משלימות",
	},
	"טכנאי מזגנים": {
		"התקנת מזגנים",
		"תיקון תקלות מיזוג",
		"מילוי גז למזגנים",
		"תחזוקת מערכות VRF",
		"התקנת מזגני מיני מרכזי",
		"ניקוי עמוק למערכות מיזוג",
	},
}

// bioHintOrder fixes the scan order over bioKeywordHints: a bio matching
// hints from several trades must resolve to the same trade on every call.
var bioHintOrder = []string{"מנעולן", "מדביר", "נגר", "שיפוצניק", "טכנאי מזגנים"}

// bioKeywordHints detects a trade from free-text bios, as a last-resort
// fallback when the record names no services and an unknown trade.
var bioKeywordHints = map[string][]*regexp.Regexp{
	"מנעולן": compileAll(
		`מנעול`, `צילינדר`, `פריצ[הת]`, `locksmith`, `keys?`, `צילנדר`,
	),
	"מדביר": compileAll(
		`הדברה`, `מדביר`, `ריסוס`, `pest\s*control`, `חיסול מזיקים`, `טרמיטי?`, `ג'וקים`, `נמלים`,
	),
	"נגר": compileAll(
		`נגר`, `עבודות\s*עץ`, `woodwork`, `carpenter`, `מטבח`, `רהיט`,
	),
	"שיפוצניק": compileAll(
		`שיפוצ`, `renovat`, `גבס`, `ריצוף`, `חידוש בית`,
	),
	"טכנאי מזגנים": compileAll(
		`מזגנ`, `מיזוג`, `a/?c`, `air\s*conditioning`, `vrf`, `צ'ילרים`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// englishServiceHints maps Latin artifact phrases in source bios to their
// Hebrew equivalents before keyword matching.
var englishServiceHints = map[string]string{
	"electrical work":  "עבודות החשמל",
	"Electrical work":  "עבודות החשמל",
	"locksmith":        "שירותי מנעולן",
	"Locksmith":        "שירותי מנעולן",
	"pest control":     "הדברה מקצועית",
	"Pest control":     "הדברה מקצועית",
	"carpenter":        "נגר מקצועי",
	"Carpenter":        "נגר מקצועי",
	"renovation":       "שיפוץ מקצועי",
	"Renovation":       "שיפוץ מקצועי",
	"air conditioning": "מיזוג אוויר",
	"Air conditioning": "מיזוג אוויר",
}

// serviceCanonMap folds historical spellings of service labels to one form.
var serviceCanonMap = map[string]string{
	"שדרוג ללוח תלת פאזי":        "שדרוג לוח תלת פאזי",
	"שדרוג לוחות תלת פאזי":       "שדרוג לוח תלת פאזי",
	"שדרוג לוחות חשמל לתלת פאזי": "שדרוג לוח תלת פאזי",
	"שדרוג לוחות חשמל":           "שדרוג לוח תלת פאזי",
	"תשתיות לדוד או מזגן":        "הכנת תשתיות לדוד/מזגן",
	"הכנת תשתיות לדוד או מזגן":   "הכנת תשתיות לדוד/מזגן",
}

// CanonService maps a single service label to its canonical form.
func CanonService(s string) string {
	s = strings.TrimSpace(s)
	if c, ok := serviceCanonMap[s]; ok {
		return c
	}
	return s
}

// CanonList canonicalizes and de-duplicates a service list, preserving order.
func CanonList(items []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, x := range items {
		if strings.TrimSpace(x) == "" {
			continue
		}
		y := CanonService(x)
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	return out
}

func canonSet(items []string) map[string]bool {
	set := make(map[string]bool)
	for _, x := range items {
		if strings.TrimSpace(x) != "" {
			set[CanonService(x)] = true
		}
	}
	return set
}

// InferServices guesses a plausible default service list from the trade label
// and free-text bio. Only used when the record has no explicit sub-services;
// explicit data is never overridden.
func InferServices(field, sourceBio string) []string {
	var base []string
	f := strings.TrimSpace(field)
	normField := variant.CanonField(f)
	if b, ok := knownPatterns[normField]; ok {
		base = b
	} else if strings.Contains(f, "חשמל") || strings.Contains(f, "חשמלא") {
		base = knownPatterns["חשמלאי"]
	} else if strings.Contains(f, "אינסטל") {
		base = knownPatterns["אינסטלטור"]
	}

	s := strings.NewReplacer("־", "-", "–", "-").Replace(sourceBio)
	if len(base) == 0 && s != "" {
		for _, fieldKey := range bioHintOrder {
			for _, rx := range bioKeywordHints[fieldKey] {
				if rx.MatchString(s) {
					base = knownPatterns[fieldKey]
					break
				}
			}
			if len(base) > 0 {
				break
			}
		}
	}

	if len(base) == 0 {
		return nil
	}
	if s == "" {
		return base[:min(4, len(base))]
	}

	for eng, heb := range englishServiceHints {
		s = strings.ReplaceAll(s, eng, heb)
	}

	found := make(map[string]bool)
	count := 0
	for _, item := range base {
		key := strings.Fields(item)
		if (len(key) > 0 && strings.Contains(s, key[0])) || strings.Contains(s, item) {
			found[item] = true
			count++
		}
	}
	if count < 2 {
		return base[:min(4, len(base))]
	}
	var out []string
	for _, item := range base {
		if found[item] {
			out = append(out, item)
		}
	}
	return out
}

// allServicesRatio: covering at least this share of the catalog counts as
// "selected everything".
const allServicesRatio = 0.98

// SelectedAll reports whether the worker effectively picked the whole service
// catalog for the trade. A caller-supplied catalog takes precedence over the
// known per-trade list.
func SelectedAll(catalog []string, field, sourceBio string, selected []string) bool {
	sel := canonSet(selected)
	if len(sel) == 0 {
		return false
	}

	base := canonSet(catalog)
	if len(base) == 0 {
		f := field
		switch {
		case strings.Contains(f, "חשמל") || strings.Contains(f, "חשמלא"):
			base = canonSet(knownPatterns["חשמלאי"])
		case strings.Contains(f, "אינסטל"):
			base = canonSet(knownPatterns["אינסטלטור"])
		default:
			if b, ok := knownPatterns[variant.CanonField(f)]; ok {
				base = canonSet(b)
			}
		}
	}
	if len(base) == 0 {
		base = canonSet(InferServices(field, sourceBio))
	}
	if len(base) == 0 {
		return false
	}

	covered := 0
	for s := range sel {
		if base[s] {
			covered++
		}
	}
	return float64(covered)/float64(len(base)) >= allServicesRatio
}

// ShuffleDeterministic orders services by a per-item hash of (seed, cursor,
// item): a different-looking order on every regeneration, byte-identical for
// the same seed and cursor.
func ShuffleDeterministic(items []string, seed string, cursor int) []string {
	var arr []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			arr = append(arr, s)
		}
	}
	keys := make(map[string][sha1.Size]byte, len(arr))
	for _, x := range arr {
		keys[x] = sha1.Sum([]byte(seed + "|" + strconv.Itoa(cursor) + "|" + x))
	}
	sort.SliceStable(arr, func(i, j int) bool {
		ki, kj := keys[arr[i]], keys[arr[j]]
		return bytes.Compare(ki[:], kj[:]) < 0
	})
	return arr
}
