// Package composer turns a worker record into a deterministic marketing
// draft: a short card teaser, a full biography paragraph and an SEO title,
// all derived from a (seed, cursor) pair so that repeated calls with the same
// inputs are byte-identical.
package composer

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/balei-miktzoa/draftgen/internal/model"
	"github.com/balei-miktzoa/draftgen/internal/sanitize"
	"github.com/balei-miktzoa/draftgen/internal/variant"
)

// Generator identifies this composer in persisted draft records.
const Generator = "deterministic-variants+policy+voiceecho"

// styleNames is a small cosmetic label shown to admins next to a draft.
var styleNames = []string{
	"ישיר ומקצועי",
	"חם ואמין",
	"טכני נקי",
	"תכל'ס",
	"רגוע ושקוף",
	"ענייני ומדויק",
}

func styleFor(w model.WorkerRecord) string {
	key := w.Name + "|" + w.CompanyName + "|" + w.Phone + "|" + w.Field
	sum := md5.Sum([]byte(key))
	v := new(big.Int).SetBytes(sum[:])
	v.Mod(v, big.NewInt(int64(len(styleNames))))
	return styleNames[v.Int64()]
}

// provisionalSeed hashes identity fields for records that have no id yet
// (pending submissions).
func provisionalSeed(w model.WorkerRecord) string {
	base := model.FirstNonEmpty(w.Name) + "|" + model.FirstNonEmpty(w.Phone) + "|" +
		model.FirstNonEmpty(w.Field) + "|" + model.FirstNonEmpty(w.CompanyName)
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])[:16]
}

// Seed resolves the stable variant seed for a worker: a persisted seed wins,
// then the worker id, then a provisional identity hash.
func Seed(w model.WorkerRecord) string {
	if saved := strings.TrimSpace(w.AIVariantSeed); saved != "" {
		return saved
	}
	if wid := w.ResolvedID(); wid != "" {
		return "id:" + wid
	}
	return "pre:" + provisionalSeed(w)
}

// Composer generates draft records against a variant registry.
type Composer struct {
	registry   *variant.Registry
	disableCTA bool
	now        func() time.Time
}

// New creates a Composer. disableCTA suppresses CTA sentences globally.
func New(registry *variant.Registry, disableCTA bool) *Composer {
	if registry == nil {
		registry = variant.NewRegistry(nil, nil)
	}
	return &Composer{
		registry:   registry,
		disableCTA: disableCTA,
		now:        time.Now,
	}
}

// ensurePeriod terminates a sentence if the source template did not.
func ensurePeriod(s string) string {
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

// GenerateDraft composes the full draft record for a worker. It never
// returns an error: composition failure is reported on the record itself
// (the admin flow must not persist a blank draft).
func (c *Composer) GenerateDraft(w model.WorkerRecord) model.DraftRecord {
	field := variant.CanonField(w.Field)
	sourceBio := w.SourceBio()
	policy := model.BuildPolicy(w)

	// The certification suffix never appears in prose; it only widens the
	// parenthesized-label strip.
	fieldWithCert := field
	if policy.Licensed && field != "" {
		fieldWithCert = field + " מוסמך"
	}

	subServices := CanonList(w.Services())
	if len(subServices) == 0 {
		subServices = InferServices(field, sourceBio)
	}

	isAll := SelectedAll(w.ServicesFullCatalog(), field, sourceBio, subServices)
	voiceTags := DeriveVoiceTags(sourceBio)

	seed := Seed(w)
	cursor := w.Cursor()

	pick := c.registry.PickNext(field, seed, cursor, w.SkipInUse())
	if pick.Exhausted {
		zap.L().Warn("composer: variant pool exhausted",
			zap.String("field", field),
			zap.String("seed", seed),
			zap.String("variant", pick.Variant.ID),
		)
	}
	chosen := pick.Variant
	if chosen.ID == "" {
		chosen = variant.Variant{ID: "default"}
	}

	shuffled := ShuffleDeterministic(subServices, seed, cursor)

	cardSentences, tail := cardOpening(w, field, shuffled, chosen.CardStyle, seed, voiceTags, isAll)
	cta := pickCTA(chosen.CTAGroup, seed, cursor, c.disableCTA)

	var parts []string
	for _, sentence := range cardSentences {
		if s := ensurePeriod(sentence); s != "" {
			parts = append(parts, s)
		}
	}
	if s := ensurePeriod(tail); s != "" {
		parts = append(parts, s)
	}
	if s := ensurePeriod(cta); s != "" {
		parts = append(parts, s)
	}

	bioShort := sanitize.Sanitize(strings.Join(parts, " "), fieldWithCert, policy)

	bioFull := fullParagraph(w, field, shuffled, voiceTags, seed, isAll, cardSentences)
	bioFull = sanitize.Sanitize(bioFull, fieldWithCert, policy)

	seoTitle := c.seoTitle(w, shuffled, fieldWithCert, policy)

	services := CanonList(shuffled)
	draft := model.DraftRecord{
		BioShort:         bioShort,
		BioFull:          bioFull,
		Bio:              bioShort,
		Highlights:       []string{"תיאום מהיר ושקוף", "התאמה לצורכי הלקוח", "עבודה מוקפדת"},
		SEOTitle:         seoTitle,
		ServicesSentence: strings.Join(services, ", "),
		Services:         services,
		Style:            styleFor(w),

		VariantID:         chosen.ID,
		CardStyle:         chosen.CardStyle,
		FullStyle:         chosen.FullStyle,
		CTAGroup:          chosen.CTAGroup,
		VariantInUseBy:    pick.InUseBy,
		VariantsExhausted: pick.Exhausted,
		CursorNext:        cursor + 1,

		Status:    model.DraftStatusReady,
		UpdatedAt: c.now().UTC().Truncate(time.Second),
		Generator: Generator,
	}
	if draft.BioFull == "" {
		draft.BioFull = bioShort
	}

	// The single hard failure: blank teaser after all composition steps.
	if bioShort == "" {
		return model.DraftRecord{
			Status:    model.DraftStatusError,
			Error:     "empty bio_short after composition",
			UpdatedAt: c.now().UTC().Truncate(time.Second),
			Generator: Generator,
		}
	}
	return draft
}

// seoTitle builds "<company> | <top-2 services>" (or first name when no
// company), sanitized like all other prose.
func (c *Composer) seoTitle(w model.WorkerRecord, shuffled []string, fieldWithCert string, policy model.Policy) string {
	name := strings.TrimSpace(w.Name)
	comp := strings.TrimSpace(w.CompanyName)
	hasComp := comp != "" && comp != name

	var top2 string
	if canon := CanonList(shuffled); len(canon) > 0 {
		top2 = strings.Join(canon[:min(2, len(canon))], ", ")
	}

	var raw string
	if hasComp {
		raw = comp
		if top2 != "" {
			raw = comp + " | " + top2
		}
	} else {
		first := firstName(name)
		switch {
		case top2 != "" && first != "":
			raw = first + " | " + top2
		case first != "":
			raw = first
		case top2 != "":
			raw = top2
		default:
			raw = "שירות מקצועי"
		}
	}
	return sanitize.Sanitize(strings.Trim(raw, " |"), fieldWithCert, policy)
}
