package composer

import (
	"crypto/sha1"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

// hashPick deterministically selects an index in [0,n) from seed+salt.
func hashPick(seed, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := sha1.Sum([]byte(seed + "|" + salt))
	v := new(big.Int).SetBytes(sum[:])
	v.Mod(v, big.NewInt(int64(n)))
	return int(v.Int64())
}

// joinInline joins items Hebrew-style: "a, b וc".
func joinInline(items []string) string {
	var clean []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			clean = append(clean, s)
		}
	}
	switch len(clean) {
	case 0:
		return ""
	case 1:
		return clean[0]
	case 2:
		return clean[0] + " ו" + clean[1]
	default:
		return strings.Join(clean[:len(clean)-1], ", ") + " ו" + clean[len(clean)-1]
	}
}

func joinCommasAnd(items []string) string {
	var clean []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	if len(clean) == 1 {
		return clean[0]
	}
	return strings.Join(clean[:len(clean)-1], ", ") + " ו" + clean[len(clean)-1]
}

// fieldGenitive maps a canonical trade to its "works of" display phrase.
var fieldGenitive = map[string]string{
	"חשמלאי":       "עבודות החשמל",
	"אינסטלטור":    "עבודות האינסטלציה",
	"מנעולן":       "שירותי המנעולנות",
	"מדביר":        "שירותי ההדברה",
	"נגר":          "עבודות הנגרות",
	"שיפוצניק":     "עבודות השיפוץ",
	"טכנאי מזגנים": "שירותי המיזוג",
}

// FieldGenitive returns the genitive display phrase for a trade. Unknown
// trades get a generic "works of <trade>" composition.
func FieldGenitive(field string) string {
	f := strings.TrimSpace(field)
	if g, ok := fieldGenitive[f]; ok {
		return g
	}
	if f == "" {
		return "עבודות"
	}
	return "עבודות ה" + f
}

// Voice tags: the three safe echoes we allow from the free-text bio. An
// intentionally simple keyword heuristic, kept as-is.
var (
	voicePunctuality = regexp.MustCompile(`עמידה\s+ב(?:לווחות|לוחות)\s+זמנים|בזמנים`)
	voicePricing     = regexp.MustCompile(`מחירים?\s+הוגנים?|שקיפות\s+בתמחור|שקיפות`)
	voicePersonal    = regexp.MustCompile(`יחס\s+אישי|ליווי\s+צמוד`)
)

// DeriveVoiceTags extracts up to two safely-quotable emphases from the
// source bio.
func DeriveVoiceTags(sourceBio string) []string {
	s := strings.ToLower(strings.NewReplacer("־", "-", "–", "-").Replace(sourceBio))
	var tags []string
	if voicePunctuality.MatchString(s) {
		tags = append(tags, "עמידה בלוחות זמנים")
	}
	if voicePricing.MatchString(s) {
		tags = append(tags, "שקיפות בתמחור")
	}
	if voicePersonal.MatchString(s) {
		tags = append(tags, "יחס אישי וליווי צמוד")
	}
	if len(tags) > 2 {
		tags = tags[:2]
	}
	return tags
}

func voiceLine(tags []string) string {
	var clean []string
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			clean = append(clean, t)
		}
	}
	switch len(clean) {
	case 0:
		return ""
	case 1:
		return "דגש על " + clean[0] + "."
	default:
		return "דגש על " + clean[0] + " ו" + clean[1] + "."
	}
}

var qualityPool = []string{
	"שירות מקצועי, מהיר ואמין.",
	"עמידה בלוחות זמנים, יחס אישי וליווי צמוד.",
	"שקיפות בתמחור והתאמה לצורכי הלקוח.",
}

func qualityTail(seed string, voiceTags []string) string {
	if vl := voiceLine(voiceTags); vl != "" {
		return vl
	}
	return qualityPool[hashPick(seed, "quality", len(qualityPool))]
}

var cardTailPool = []string{
	"שומרים על זמינות מהירה ויחס אישי.",
	"מקפידים על תיאום שקוף מהשיחה הראשונה.",
	"עובדים באמינות ובתיאום מלא מולכם.",
	"חוויית שירות רגועה ומדויקת בכל פנייה.",
}

func cardQualityTail(seed string, voiceTags []string) string {
	if vl := voiceLine(voiceTags); vl != "" {
		return strings.Replace(vl, "דגש על", "שומרים על", 1)
	}
	return cardTailPool[hashPick(seed, "cardtail", len(cardTailPool))]
}

// splitServiceGroups splits services into at most limit chunks of roughly
// equal size.
func splitServiceGroups(services []string, limit int) [][]string {
	var clean []string
	for _, s := range services {
		if strings.TrimSpace(s) != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	chunk := (len(clean) + limit - 1) / limit
	if chunk < 1 {
		chunk = 1
	}
	var groups [][]string
	for i := 0; i < len(clean); i += chunk {
		end := min(i+chunk, len(clean))
		groups = append(groups, clean[i:end])
	}
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// sentenceNotInCard checks a full-paragraph sentence is not already carried
// by the card teaser.
func sentenceNotInCard(text string, cardSentences []string) bool {
	norm := strings.TrimSpace(text)
	if norm == "" {
		return true
	}
	for _, s := range cardSentences {
		if strings.Contains(s, norm) {
			return false
		}
	}
	return true
}

// ctaGroups are the CTA phrase pools, indexed by a variant's CTA group.
// Pushy "let's close the details" phrasings were deliberately removed.
var ctaGroups = [][]string{
	{"מחכים לפנייתכם.", "נשמח לסייע.", "כאן לכל שאלה.", "נשמח לדבר.", "מוזמנים ליצור קשר."},
	{"פנו אליי ונצא לדרך.", "בואו נתקדם.", "נתאם ונגיע.", "נשמח לקבוע מועד."},
	{"נשמח לתת מענה.", "נשמח להציע פתרון.", "נשמח לעזור.", "נשמח לשוחח.", "כאן בשבילכם."},
	{"כתבו לנו ונחזור.", "נחזור אליכם במהירות.", "נשמח לשמוע מכם.", "מחכים לשמוע מכם.", "נשמח ליצור קשר."},
	{"אשמח לשמוע מכם.", "נדבר ונכוון יחד.", "אשמח לסייע.", "מוזמנים לפנות אליי.", "כאן לכל דבר."},
	{"מחכים לפנייתכם.", "נשמח לסייע.", "כאן לכל שאלה.", "נשמח לדבר.", "מוזמנים ליצור קשר."},
	{"פנו אליי ונצא לדרך.", "בואו נתקדם.", "נתאם ונגיע.", "נשמח לקבוע מועד."},
	{"נשמח לתת מענה.", "נשמח להציע פתרון.", "נשמח לעזור.", "נשמח לשוחח.", "כאן בשבילכם."},
}

// pickCTA chooses a CTA sentence for the group, offset by the regeneration
// cursor so repeated clicks cycle through different CTAs.
func pickCTA(ctaGroup int, seed string, offset int, disabled bool) string {
	if disabled {
		return ""
	}
	group := ctaGroups[((ctaGroup%len(ctaGroups))+len(ctaGroups))%len(ctaGroups)]
	idx := (hashPick(seed, "cta", len(group)) + offset) % len(group)
	if idx < 0 {
		idx += len(group)
	}
	return group[idx]
}

func firstName(full string) string {
	fields := strings.Fields(strings.TrimSpace(full))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// displayHeading builds the card heading: "<company> בהנהלת <name>" when a
// company exists, otherwise the first name alone. The trade label is never
// part of generated prose.
func displayHeading(w model.WorkerRecord) (string, bool) {
	name := strings.TrimSpace(w.Name)
	comp := strings.TrimSpace(w.CompanyName)
	if comp != "" && comp != name {
		return comp + " בהנהלת " + name, true
	}
	return firstName(name), false
}

// cardOpening renders the teaser opening sentences for the variant's card
// style, plus a quality tail.
func cardOpening(w model.WorkerRecord, field string, services []string, styleIdx int, seed string, voiceTags []string, isAll bool) ([]string, string) {
	heading, hasComp := displayHeading(w)
	gen := FieldGenitive(field)
	groups := splitServiceGroups(services, 3)
	if len(groups) > 2 {
		var mergedTail []string
		for _, chunk := range groups[1:] {
			mergedTail = append(mergedTail, chunk...)
		}
		groups = [][]string{groups[0], mergedTail}
	}

	describeGroup := func(idx int, group []string) string {
		text := joinInline(group)
		switch ((styleIdx % 5) + 5) % 5 {
		case 0:
			if idx == 0 {
				return heading + " מתמחה ב" + text + "."
			}
			return "בנוסף מטפל ב" + text + "."
		case 1:
			if idx == 0 {
				return heading + " מכסה מגוון של " + text + "."
			}
			return "וכן מטפל ב" + text + "."
		case 2:
			verb := "נותן"
			if hasComp {
				verb = "נותנים"
			}
			if idx == 0 {
				return heading + " " + verb + " מענה מהיר ל" + text + "."
			}
			return "גם לטיפול ב" + text + " תמצאו מענה זריז."
		case 3:
			verb := "מטפל"
			if hasComp {
				verb = "מטפלים"
			}
			if idx == 0 {
				return heading + " " + verb + " ב" + text + "."
			}
			return "כמו כן " + verb + " ב" + text + "."
		default:
			if idx == 0 {
				return "אצל " + heading + " תקבלו מענה ל" + text + "."
			}
			return "בין היתר זמינים ל" + text + "."
		}
	}

	var sentences []string
	switch {
	case isAll && len(groups) > 0:
		sentences = append(sentences, heading+" מתמחה בכל "+gen+": "+joinCommasAnd(services)+".")
	case len(groups) > 0:
		for idx, group := range groups {
			sentences = append(sentences, describeGroup(idx, group))
		}
		if len(groups) == 1 && len(sentences) == 1 {
			verb := "נותן"
			if hasComp {
				verb = "נותנים"
			}
			sentences = append(sentences, heading+" "+verb+" מענה מדויק בכל פרויקט "+gen+".")
		}
	default:
		verb := "נותן"
		if hasComp {
			verb = "נותנים"
		}
		sentences = append(sentences, heading+" "+verb+" מענה מקצועי לכלל "+gen+".")
		sentences = append(sentences, "התמקדות בפתרונות מדויקים ומותאמים אישית לכל לקוח.")
	}

	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	return sentences, cardQualityTail(seed, voiceTags)
}

// fullIntro keeps the full-profile heading neutral: company + manager, or the
// bare name.
func fullIntro(w model.WorkerRecord) string {
	name := strings.TrimSpace(w.Name)
	comp := strings.TrimSpace(w.CompanyName)
	if comp != "" && comp != name {
		return comp + " בהנהלת " + name
	}
	return name
}

// fixKmoKhen rewrites awkward "<full name> כמו כן" constructions to lead with
// the connective and the first name.
func fixKmoKhen(text, name string) string {
	name = strings.TrimSpace(name)
	if text == "" || name == "" {
		return text
	}
	first := firstName(name)
	q := regexp.QuoteMeta(name)
	text = regexp.MustCompile(q+`\s*,?\s*כמו כן`).ReplaceAllString(text, "כמו כן, "+first)
	text = regexp.MustCompile(`כמו כן\s+`+q).ReplaceAllString(text, "כמו כן, "+first)
	return strings.TrimSpace(multiSpacePat.ReplaceAllString(text, " "))
}

var multiSpacePat = regexp.MustCompile(`\s{2,}`)

var (
	processBank = []string{
		"עובדים בשקיפות מלאה מרגע האבחון ועד סיום העבודה.",
		"מתאימים את תהליך העבודה לכל דרישה בשטח.",
		"משלבים תכנון מוקפד עם ביצוע נקי ומאורגן.",
	}
	equipmentBank = []string{
		"עושים שימוש בציוד מקצועי ומעודכן.",
		"מגיעים עם ציוד תקין ומכויל לכל משימה.",
		"מקפידים על חומרים מאושרים ואיכותיים.",
	}
	experienceBank = []string{
		"שמים דגש על חוויית לקוח נינוחה ובטוחה.",
		"מתאמים הגעה מדויקת ומלווים עד לקבלת פתרון מלא.",
		"זמינים לשאלות ולעדכונים לאורך הדרך.",
	}
	specialityLines = map[string]string{
		"מנעולן":       "מגיעים במהירות עם פתרונות מתקדמים לכל סוג מנעול.",
		"מדביר":        "פועלים בשיטות מותאמות עם חומרים בטוחים לדיירים ולחיות המחמד.",
		"נגר":          "מקפידים על גימור קפדני ודיוק במידות עד הפרט האחרון.",
		"שיפוצניק":     "מלווים אתכם בתכנון, בבחירת חומרים ובפיקוח על בעלי המקצוע המשלימים.",
		"טכנאי מזגנים": "בודקים את המערכת מקצה לקצה ומותירים את המקום נקי ומסודר.",
	}
)

// enrichmentSentences picks up to three field-specific enrichment sentences
// (process, equipment, customer experience), deterministically and de-duped
// against the card teaser.
func enrichmentSentences(field, seed string, cardSentences []string) []string {
	banks := [][]string{processBank, equipmentBank, experienceBank}
	var selected []string
	for idx, bank := range banks {
		choice := bank[hashPick(seed, "enrich|"+strconv.Itoa(idx), len(bank))]
		if sentenceNotInCard(choice, cardSentences) {
			selected = append(selected, choice)
		}
	}

	if spec, ok := specialityLines[field]; ok && sentenceNotInCard(spec, cardSentences) {
		if len(selected) >= 1 {
			selected = append(selected[:1], append([]string{spec}, selected[1:]...)...)
		} else {
			selected = append(selected, spec)
		}
	}

	seen := make(map[string]bool)
	var ordered []string
	for _, s := range selected {
		if !seen[s] {
			seen[s] = true
			ordered = append(ordered, s)
		}
	}
	if len(ordered) > 3 {
		ordered = ordered[:3]
	}
	return ordered
}

// fullParagraph composes the long-profile biography paragraph.
func fullParagraph(w model.WorkerRecord, field string, services, voiceTags []string, seed string, isAll bool, cardSentences []string) string {
	sv := CanonList(services)
	display := fullIntro(w)
	gen := FieldGenitive(field)

	var lines []string
	if isAll && len(sv) > 0 {
		lines = append(lines, display+" מתמחה בכל "+gen+": "+joinInline(sv)+".")
	} else {
		a := sv[:min(2, len(sv))]
		var b, c []string
		if len(sv) > 2 {
			b = sv[2:min(5, len(sv))]
		}
		if len(sv) > 5 {
			c = sv[5:]
		}
		if len(a) > 0 {
			lines = append(lines, display+" מתמחה ב"+joinInline(a)+".")
		}
		if len(b) > 0 {
			lines = append(lines, "בנוסף מטפל ב"+joinInline(b)+".")
		}
		if len(c) > 0 {
			lines = append(lines, "כמו כן זמין ל"+joinInline(c)+".")
		}
	}

	if q := qualityTail(seed, voiceTags); q != "" {
		lines = append(lines, q)
	}

	for _, sentence := range enrichmentSentences(field, seed, cardSentences) {
		if sentenceNotInCard(sentence, cardSentences) && !containsString(lines, sentence) {
			lines = append(lines, sentence)
		}
	}

	core := strings.TrimSpace(strings.Join(lines, " "))
	return fixKmoKhen(core, w.Name)
}

func containsString(items []string, s string) bool {
	for _, x := range items {
		if x == s {
			return true
		}
	}
	return false
}
