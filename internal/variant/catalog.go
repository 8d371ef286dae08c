// Package variant holds the deterministic phrasing-variant registry: a static
// catalog of per-trade variants, a seeded circular picker and an allocation
// store enforcing at-most-one-active-assignment per (trade, variant) pair.
package variant

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// GenericKey is the fallback trade group used when a trade has no dedicated
// variants. It must never be empty.
const GenericKey = "__generic__"

// Variant is an immutable combination of phrasing-template indices scoped to
// one trade.
type Variant struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	FieldKey  string `json:"field_key" yaml:"field_key"`
	CardStyle int    `json:"card_style" yaml:"card_style"`
	FullStyle int    `json:"full_style" yaml:"full_style"`
	CTAGroup  int    `json:"cta_group" yaml:"cta_group"`
	Notes     string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// fieldAliases maps singular/plural/synonym trade labels to canonical keys.
var fieldAliases = map[string]string{
	"חשמלאי":  "חשמלאי",
	"חשמלאים": "חשמלאי",
	"חשמל":    "חשמלאי",

	"אינסטלטור":   "אינסטלטור",
	"אינסטלטורים": "אינסטלטור",
	"אינסטלציה":   "אינסטלטור",

	"מנעולן":   "מנעולן",
	"מנעולנים": "מנעולן",

	"שיפוצניק": "שיפוצניק",
	"שיפוצים":  "שיפוצניק",

	"צבאי":  "צבעי",
	"צבע":   "צבעי",
	"צבעים": "צבעי",

	"נגר":   "נגר",
	"נגרים": "נגר",

	"מדביר": "מדביר",
	"הדברה": "מדביר",

	"גנן":   "גנן",
	"גינון": "גנן",

	"מיזוג אוויר":  "טכנאי מזגנים",
	"טכנאי מזגנים": "טכנאי מזגנים",
}

// CanonField canonicalizes a free-text trade label. Unknown trades pass
// through unchanged (the picker then falls back to the generic pool).
func CanonField(s string) string {
	s = strings.TrimSpace(s)
	if canon, ok := fieldAliases[s]; ok {
		return canon
	}
	return s
}

// builtinCatalog is the static variant bank. Extend per trade as the
// directory grows; operators can also append via a YAML override file.
var builtinCatalog = []Variant{
	// חשמלאי
	{ID: "elc_v1", Label: "פתיח קלאסי, חיבורים 'בנוסף/כמו כן'", FieldKey: "חשמלאי", CardStyle: 0, FullStyle: 0, CTAGroup: 0},
	{ID: "elc_v2", Label: "פתיח 'מספק מענה', חיבורים 'נוסף על כך/וכן'", FieldKey: "חשמלאי", CardStyle: 1, FullStyle: 1, CTAGroup: 1},
	{ID: "elc_v3", Label: "פתיח 'מטפל ב', חיבורים 'ועוד/ובנוסף'", FieldKey: "חשמלאי", CardStyle: 2, FullStyle: 2, CTAGroup: 2},
	{ID: "elc_v4", Label: "פתיח 'נותן שירות', חיבורים 'בין היתר/ניתן'", FieldKey: "חשמלאי", CardStyle: 3, FullStyle: 3, CTAGroup: 3},
	{ID: "elc_v5", Label: "פתיח 'אצל {שם} תקבלו', קצב זריז", FieldKey: "חשמלאי", CardStyle: 4, FullStyle: 0, CTAGroup: 4},
	{ID: "elc_v6", Label: "פתיח קלאסי, ניסוח יותר ענייני", FieldKey: "חשמלאי", CardStyle: 0, FullStyle: 1, CTAGroup: 5},
	{ID: "elc_v7", Label: "פתיח 'מספק מענה', טון חם", FieldKey: "חשמלאי", CardStyle: 1, FullStyle: 2, CTAGroup: 6},
	{ID: "elc_v8", Label: "פתיח 'מטפל ב', טון טכני נקי", FieldKey: "חשמלאי", CardStyle: 2, FullStyle: 3, CTAGroup: 7},

	// אינסטלטור
	{ID: "plm_v1", Label: "פתיח קלאסי, 'בנוסף/כמו כן'", FieldKey: "אינסטלטור", CardStyle: 0, FullStyle: 0, CTAGroup: 0},
	{ID: "plm_v2", Label: "'מספק מענה', 'נוסף על כך/וכן'", FieldKey: "אינסטלטור", CardStyle: 1, FullStyle: 1, CTAGroup: 1},
	{ID: "plm_v3", Label: "'מטפל ב', 'ועוד/ובנוסף'", FieldKey: "אינסטלטור", CardStyle: 2, FullStyle: 2, CTAGroup: 2},
	{ID: "plm_v4", Label: "'נותן שירות', 'בין היתר/ניתן'", FieldKey: "אינסטלטור", CardStyle: 3, FullStyle: 3, CTAGroup: 3},
	{ID: "plm_v5", Label: "'אצל {שם} תקבלו', קצב זריז", FieldKey: "אינסטלטור", CardStyle: 4, FullStyle: 0, CTAGroup: 4},
	{ID: "plm_v6", Label: "קלאסי ענייני", FieldKey: "אינסטלטור", CardStyle: 0, FullStyle: 1, CTAGroup: 5},

	// מנעולן
	{ID: "lck_v1", Label: "פתיח מדגיש זמינות", FieldKey: "מנעולן", CardStyle: 2, FullStyle: 2, CTAGroup: 2},
	{ID: "lck_v2", Label: "קלאסי עם דגש על אבטחה", FieldKey: "מנעולן", CardStyle: 0, FullStyle: 1, CTAGroup: 5},
	{ID: "lck_v3", Label: "'אצל {שם} תקבלו', טון אישי", FieldKey: "מנעולן", CardStyle: 4, FullStyle: 0, CTAGroup: 6},

	// מדביר
	{ID: "pst_v1", Label: "פתיח מקיף לכל סוגי ההדברה", FieldKey: "מדביר", CardStyle: 1, FullStyle: 1, CTAGroup: 1},
	{ID: "pst_v2", Label: "טון טכני ונקי", FieldKey: "מדביר", CardStyle: 2, FullStyle: 3, CTAGroup: 7},
	{ID: "pst_v3", Label: "מסר חם עם הדגשת שקיפות", FieldKey: "מדביר", CardStyle: 0, FullStyle: 0, CTAGroup: 0},

	// נגר
	{ID: "crp_v1", Label: "דגש על עבודות בהתאמה אישית", FieldKey: "נגר", CardStyle: 3, FullStyle: 3, CTAGroup: 3},
	{ID: "crp_v2", Label: "פתיח חם ומזמין", FieldKey: "נגר", CardStyle: 1, FullStyle: 2, CTAGroup: 6},
	{ID: "crp_v3", Label: "טון טכני-מדויק", FieldKey: "נגר", CardStyle: 2, FullStyle: 1, CTAGroup: 4},

	// שיפוצניק
	{ID: "rnv_v1", Label: "תכל'ס עם רשימת שירותים", FieldKey: "שיפוצניק", CardStyle: 0, FullStyle: 0, CTAGroup: 5},
	{ID: "rnv_v2", Label: "'מטפל ב', טון חם", FieldKey: "שיפוצניק", CardStyle: 2, FullStyle: 2, CTAGroup: 6},
	{ID: "rnv_v3", Label: "'אצל {שם} תקבלו', טון זמין", FieldKey: "שיפוצניק", CardStyle: 4, FullStyle: 1, CTAGroup: 7},

	// טכנאי מזגנים
	{ID: "ac_v1", Label: "פתיח טכני נקי", FieldKey: "טכנאי מזגנים", CardStyle: 2, FullStyle: 3, CTAGroup: 7},
	{ID: "ac_v2", Label: "טון חם ושירותי", FieldKey: "טכנאי מזגנים", CardStyle: 1, FullStyle: 2, CTAGroup: 6},
	{ID: "ac_v3", Label: "קלאסי עם הדגשת זמינות", FieldKey: "טכנאי מזגנים", CardStyle: 0, FullStyle: 1, CTAGroup: 4},

	// כלליים – מתאימים לכל תחום, בלי רמיזות ספציפיות.
	{ID: "gen_v1", Label: "כללי: פתיח קלאסי", FieldKey: GenericKey, CardStyle: 0, FullStyle: 0, CTAGroup: 0, Notes: "פתיח ניטרלי, חיבורים 'בנוסף/כמו כן'"},
	{ID: "gen_v2", Label: "כללי: מספק מענה", FieldKey: GenericKey, CardStyle: 1, FullStyle: 1, CTAGroup: 1, Notes: "מספק מענה / נוסף על כך"},
	{ID: "gen_v3", Label: "כללי: מטפל ב", FieldKey: GenericKey, CardStyle: 2, FullStyle: 2, CTAGroup: 2, Notes: "מטפל ב / ועוד / ובנוסף"},
	{ID: "gen_v4", Label: "כללי: נותן שירות", FieldKey: GenericKey, CardStyle: 3, FullStyle: 3, CTAGroup: 3, Notes: "נותן שירות / בין היתר / ניתן"},
	{ID: "gen_v5", Label: "כללי: אצל {שם} תקבלו", FieldKey: GenericKey, CardStyle: 4, FullStyle: 0, CTAGroup: 4, Notes: "זריז ואישי"},
	{ID: "gen_v6", Label: "כללי: קלאסי ענייני", FieldKey: GenericKey, CardStyle: 0, FullStyle: 1, CTAGroup: 5, Notes: "נוסח תמציתי ומדויק"},
	{ID: "gen_v7", Label: "כללי: מספק מענה, טון חם", FieldKey: GenericKey, CardStyle: 1, FullStyle: 2, CTAGroup: 6, Notes: "טון חם ושירותי"},
	{ID: "gen_v8", Label: "כללי: מטפל ב, טון טכני נקי", FieldKey: GenericKey, CardStyle: 2, FullStyle: 3, CTAGroup: 7, Notes: "טון טכני-נקי, ברור"},
}

// Catalog is an indexed, immutable view over a set of variants.
type Catalog struct {
	byField map[string][]Variant
}

// NewCatalog indexes the built-in variant bank.
func NewCatalog() *Catalog {
	return newCatalog(builtinCatalog)
}

func newCatalog(variants []Variant) *Catalog {
	c := &Catalog{byField: make(map[string][]Variant)}
	for _, v := range variants {
		key := CanonField(v.FieldKey)
		c.byField[key] = append(c.byField[key], v)
	}
	return c
}

// LoadCatalogFile appends operator-defined variants from a YAML file to the
// built-in bank. Duplicate ids within a trade group are rejected.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "variant: read catalog file")
	}
	var extra struct {
		Variants []Variant `yaml:"variants"`
	}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrap(err, "variant: parse catalog file")
	}
	merged := append(append([]Variant{}, builtinCatalog...), extra.Variants...)
	seen := make(map[[2]string]bool, len(merged))
	for _, v := range merged {
		key := [2]string{CanonField(v.FieldKey), v.ID}
		if seen[key] {
			return nil, eris.Errorf("variant: duplicate id %q in trade %q", v.ID, v.FieldKey)
		}
		seen[key] = true
	}
	return newCatalog(merged), nil
}

// Fields lists the trade keys that have registered variants, generic included.
func (c *Catalog) Fields() []string {
	keys := make([]string, 0, len(c.byField))
	for k := range c.byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForField returns the variant group for a trade, falling back to the generic
// pool, along with the canonical key the group is registered under.
func (c *Catalog) ForField(field string) (string, []Variant) {
	fk := CanonField(field)
	if vs, ok := c.byField[fk]; ok && len(vs) > 0 {
		return fk, vs
	}
	return GenericKey, c.byField[GenericKey]
}

// Count returns the number of variants available for a trade.
func (c *Catalog) Count(field string) int {
	_, vs := c.ForField(field)
	return len(vs)
}
