package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is a bool-like field as it arrives from the flat-file store: submissions
// carry true/false, "1"/"0", "yes"/"on" and friends interchangeably.
type Flag bool

// UnmarshalJSON coerces bools, numbers and truthy strings. Anything
// unrecognized decodes to false rather than failing the whole record.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*f = false
		return nil
	}
	*f = Flag(Truthy(v))
	return nil
}

// Bool returns the underlying value.
func (f Flag) Bool() bool { return bool(f) }

// Truthy reports whether a loosely-typed value means "yes".
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
	}
	return false
}

// FlexInt is an integer field that may arrive as a JSON number or a numeric
// string. Malformed values decode to zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	switch t := v.(type) {
	case float64:
		*n = FlexInt(int(t))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			*n = FlexInt(i)
		} else {
			*n = 0
		}
	default:
		*n = 0
	}
	return nil
}

// Int returns the underlying value.
func (n FlexInt) Int() int { return int(n) }

// FlexIntPtr returns a pointer to a FlexInt, for presence-aware fields.
func FlexIntPtr(i int) *FlexInt {
	n := FlexInt(i)
	return &n
}

// CallToAction carries the availability widget state from the site layer.
type CallToAction struct {
	Status  string `json:"status,omitempty"`
	Subline string `json:"subline,omitempty"`
}

// WorkerRecord is the read-only worker payload supplied by the surrounding
// application (form submission plus flat-file storage). Historical submissions
// spell several fields under more than one key, so aliases are kept as
// separate optional fields and resolved with FirstNonEmpty.
type WorkerRecord struct {
	WorkerID string `json:"worker_id,omitempty"`
	ID       string `json:"id,omitempty"`
	AltID    string `json:"workerId,omitempty"`

	Name        string `json:"name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Business    string `json:"business_name,omitempty"`
	Phone       string `json:"phone,omitempty"`

	Field        string `json:"field,omitempty"`
	FieldHe      string `json:"field_he,omitempty"`
	FieldDisplay string `json:"field_display,omitempty"`
	Title        string `json:"title,omitempty"`

	SubServices  []string `json:"sub_services,omitempty"`
	ServicesList []string `json:"services_list,omitempty"`

	// Optional full catalog the submission form offered, under any of its
	// historical keys. Used only for all-services detection.
	SubServicesCatalog []string `json:"sub_services_catalog,omitempty"`
	ServicesCatalog    []string `json:"services_catalog,omitempty"`
	AllSubServices     []string `json:"all_sub_services,omitempty"`
	ServicesOptions    []string `json:"services_options,omitempty"`

	OriginalBio         string `json:"original_bio,omitempty"`
	OriginalDescription string `json:"original_description,omitempty"`
	BioOriginal         string `json:"bio_original,omitempty"`
	BioRaw              string `json:"bio_raw,omitempty"`
	Bio                 string `json:"bio,omitempty"`
	BioShort            string `json:"bio_short,omitempty"`
	Notes               string `json:"notes,omitempty"`
	Description         string `json:"description,omitempty"`
	AboutClean          string `json:"about_clean,omitempty"`
	About               string `json:"about,omitempty"`

	// Policy flags. Never inferred from free text.
	IsLicensed      Flag    `json:"is_licensed,omitempty"`
	Certified       Flag    `json:"certified,omitempty"`
	Insured         Flag    `json:"insured,omitempty"`
	OffersEmergency Flag    `json:"offers_emergency,omitempty"`
	WarrantyYears   FlexInt `json:"warranty_years,omitempty"`
	InvoiceVAT      Flag    `json:"invoice_vat,omitempty"`
	IssueInvoice    Flag    `json:"issue_invoice,omitempty"`

	LicenseNumber string `json:"license_number,omitempty"`
	License       string `json:"license,omitempty"`
	LicenseNo     string `json:"license_no,omitempty"`
	LicenseNum    string `json:"license_num,omitempty"`

	City     string `json:"city,omitempty"`
	BaseCity string `json:"base_city,omitempty"`
	Area     string `json:"area,omitempty"`

	Years           FlexInt  `json:"years,omitempty"`
	ExperienceYears FlexInt  `json:"experience_years,omitempty"`
	ExperienceText  string   `json:"experience_text,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	ReviewsCount    FlexInt  `json:"reviews_count,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Highlights      []string `json:"highlights,omitempty"`

	CTA *CallToAction `json:"call_to_action,omitempty"`

	AIVariantSeed     string   `json:"ai_variant_seed,omitempty"`
	AIVariantCursor   *FlexInt `json:"ai_variant_cursor,omitempty"`
	VariantRefresh    FlexInt  `json:"variant_refresh,omitempty"`
	SkipInUseVariants *bool    `json:"skip_in_use_variants,omitempty"`

	UpdatedAt   string `json:"updated_at,omitempty"`
	AIUpdatedAt string `json:"ai_updated_at,omitempty"`
}

// FirstNonEmpty returns the first value with non-whitespace content, trimmed.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// ResolvedID returns the worker id under any of its aliases.
func (w WorkerRecord) ResolvedID() string {
	return FirstNonEmpty(w.WorkerID, w.ID, w.AltID)
}

// SourceBio returns the free-text source material in priority order.
func (w WorkerRecord) SourceBio() string {
	return FirstNonEmpty(w.OriginalBio, w.OriginalDescription, w.BioOriginal,
		w.BioRaw, w.Bio, w.Notes, w.Description)
}

// Services returns the explicit service list under either key.
func (w WorkerRecord) Services() []string {
	if len(w.ServicesList) > 0 {
		return w.ServicesList
	}
	return w.SubServices
}

// ServicesFullCatalog returns the first non-empty catalog list, or nil.
func (w WorkerRecord) ServicesFullCatalog() []string {
	for _, c := range [][]string{w.SubServicesCatalog, w.ServicesCatalog, w.AllSubServices, w.ServicesOptions} {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

// Cursor returns the caller-supplied regeneration counter. A present
// ai_variant_cursor wins even when it is zero; variant_refresh only applies
// when the saved cursor is absent.
func (w WorkerRecord) Cursor() int {
	if w.AIVariantCursor != nil {
		return w.AIVariantCursor.Int()
	}
	return w.VariantRefresh.Int()
}

// SkipInUse reports whether variant picking should skip allocated variants.
// Defaults to true when the record does not say otherwise.
func (w WorkerRecord) SkipInUse() bool {
	if w.SkipInUseVariants == nil {
		return true
	}
	return *w.SkipInUseVariants
}

// Policy is the set of claims the generated prose is allowed to make.
// Built exclusively from explicit record flags.
type Policy struct {
	Licensed      bool
	LicenseNumber string
	Insured       bool
	Emergency     bool
	WarrantyYears int
	InvoiceVAT    bool
}

// BuildPolicy derives the claims policy from a worker record.
func BuildPolicy(w WorkerRecord) Policy {
	return Policy{
		Licensed:      w.IsLicensed.Bool() || w.Certified.Bool(),
		LicenseNumber: FirstNonEmpty(w.LicenseNumber, w.License, w.LicenseNo, w.LicenseNum),
		Insured:       w.Insured.Bool(),
		Emergency:     w.OffersEmergency.Bool(),
		WarrantyYears: w.WarrantyYears.Int(),
		InvoiceVAT:    w.InvoiceVAT.Bool() || w.IssueInvoice.Bool(),
	}
}
