package tone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

// Maximum length of the sub-service listing fed into the prompt and the
// fallback copy, after compression.
const maxSubServiceChars = 260

// WorkerContext is the normalized worker payload that feeds both the prompt
// and the deterministic fallback.
type WorkerContext struct {
	DisplayName        string
	PersonName         string
	FieldLabel         string
	City               string
	Years              string
	ExperienceText     string
	Rating             string
	ReviewsCount       string
	Languages          []string
	SubServices        []string
	SubServicesCompact string
	Highlights         []string
	Availability       string
	Policy             model.Policy
	SourceBio          string
}

var spacePat = regexp.MustCompile(`\s+`)

func canonicalList(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range values {
		v := spacePat.ReplaceAllString(strings.TrimSpace(raw), " ")
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// compressSubServices fits the service list into the prompt budget, folding
// the overflow into a "ועוד N" marker.
func compressSubServices(subServices []string) ([]string, string) {
	cleaned := canonicalList(subServices)
	if len(cleaned) == 0 {
		return nil, ""
	}

	joined := strings.Join(cleaned, ", ")
	if len([]rune(joined)) <= maxSubServiceChars {
		return cleaned, joined
	}

	var kept []string
	total := 0
	for _, item := range cleaned {
		projected := total + len([]rune(item))
		if len(kept) > 0 {
			projected += 2
		}
		if projected > maxSubServiceChars {
			break
		}
		kept = append(kept, item)
		total = projected
	}

	remainder := len(cleaned) - len(kept)
	if remainder > 0 {
		plural := "שירות"
		if remainder > 1 {
			plural = "שירותים"
		}
		kept = append(kept, fmt.Sprintf("ועוד %d %s", remainder, plural))
	}
	return cleaned, strings.Join(kept, ", ")
}

func availability(w model.WorkerRecord) string {
	if w.CTA == nil {
		return ""
	}
	switch strings.TrimSpace(w.CTA.Status) {
	case "open":
		return "זמין כעת"
	case "closed":
		if s := strings.TrimSpace(w.CTA.Subline); s != "" {
			return s
		}
		return "לא זמין"
	}
	return strings.TrimSpace(w.CTA.Subline)
}

// CollectContext normalizes a worker record for description generation.
func CollectContext(w model.WorkerRecord) WorkerContext {
	displayName := model.FirstNonEmpty(w.CompanyName, w.Business, w.Name)
	if displayName == "" {
		displayName = "בעל מקצוע"
	}

	years := ""
	if y := max(w.Years.Int(), w.ExperienceYears.Int()); y > 0 {
		years = fmt.Sprintf("%d שנות ניסיון", y)
	}

	rating := ""
	if w.Rating > 0 {
		rating = fmt.Sprintf("%.1f/5", w.Rating)
	}

	reviews := ""
	if n := w.ReviewsCount.Int(); n > 0 {
		reviews = fmt.Sprintf("%d", n)
	}

	cleaned, compact := compressSubServices(append(append([]string{}, w.ServicesList...), w.SubServices...))

	return WorkerContext{
		DisplayName:        displayName,
		PersonName:         strings.TrimSpace(w.Name),
		FieldLabel:         model.FirstNonEmpty(w.FieldDisplay, w.Title, w.Field),
		City:               model.FirstNonEmpty(w.City, w.BaseCity, w.Area),
		Years:              years,
		ExperienceText:     strings.TrimSpace(w.ExperienceText),
		Rating:             rating,
		ReviewsCount:       reviews,
		Languages:          canonicalList(w.Languages),
		SubServices:        cleaned,
		SubServicesCompact: compact,
		Highlights:         canonicalList(w.Highlights),
		Availability:       availability(w),
		Policy:             model.BuildPolicy(w),
		SourceBio:          model.FirstNonEmpty(w.AboutClean, w.About, w.Description, w.Bio),
	}
}

// UsedFields reports which normalized fields fed the generation, for the
// admin debug view.
func (c WorkerContext) UsedFields() map[string]any {
	return map[string]any{
		"display_name":         c.DisplayName,
		"person_name":          c.PersonName,
		"field_label":          c.FieldLabel,
		"city":                 c.City,
		"years":                c.Years,
		"experience_text":      c.ExperienceText,
		"rating":               c.Rating,
		"reviews_count":        c.ReviewsCount,
		"languages":            c.Languages,
		"sub_services":         c.SubServices,
		"sub_services_compact": c.SubServicesCompact,
		"highlights":           c.Highlights,
		"availability":         c.Availability,
		"policy_flags": map[string]any{
			"licensed":  c.Policy.Licensed,
			"insured":   c.Policy.Insured,
			"invoice":   c.Policy.InvoiceVAT,
			"emergency": c.Policy.Emergency,
		},
		"source_bio": c.SourceBio,
	}
}
