package model

import "time"

// DraftStatus reports the outcome of a draft generation.
type DraftStatus string

const (
	DraftStatusReady DraftStatus = "ready"
	DraftStatusError DraftStatus = "error"
)

// DraftRecord is the structured text draft handed back to the admin approval
// flow for persistence.
type DraftRecord struct {
	BioShort         string   `json:"ai_draft_bio_short"`
	BioFull          string   `json:"ai_draft_bio_full"`
	Bio              string   `json:"ai_draft_bio"`
	Highlights       []string `json:"ai_draft_highlights,omitempty"`
	SEOTitle         string   `json:"ai_draft_seo_title"`
	ServicesSentence string   `json:"ai_draft_services_sentence"`
	Services         []string `json:"ai_draft_services"`
	Style            string   `json:"ai_style,omitempty"`

	VariantID         string `json:"ai_variant_used"`
	CardStyle         int    `json:"ai_variant_card_style"`
	FullStyle         int    `json:"ai_variant_full_style"`
	CTAGroup          int    `json:"ai_variant_cta_group"`
	VariantInUseBy    string `json:"ai_variant_in_use_by,omitempty"`
	VariantsExhausted bool   `json:"ai_variants_exhausted"`
	CursorNext        int    `json:"ai_variant_cursor_next"`

	Status    DraftStatus `json:"ai_status"`
	Error     string      `json:"ai_error,omitempty"`
	UpdatedAt time.Time   `json:"ai_updated_at"`
	Generator string      `json:"ai_model"`
}
