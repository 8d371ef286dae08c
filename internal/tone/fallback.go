package tone

import "strings"

// FallbackStyles builds deterministic Hebrew copy from the worker context,
// used whenever the model is unreachable or returns garbage. source tags the
// origin ("fallback" or "error") on each rendition.
func FallbackStyles(ctx WorkerContext, source string) map[string]Styled {
	servicesHint := ctx.SubServicesCompact
	if servicesHint == "" {
		servicesHint = "פתרונות מלאים"
	}
	langs := strings.Join(firstN(ctx.Languages, 3), ", ")

	teaser := ctx.DisplayName + " – " + servicesHint
	if ctx.City != "" {
		teaser += " ב" + ctx.City
	}

	body := func(tone string) string {
		var sentences []string
		area := "בכל האזור"
		if ctx.City != "" {
			area = "ב" + ctx.City
		}
		sentences = append(sentences, ctx.DisplayName+" עוסק ב"+servicesHint+" "+area+".")
		if ctx.Years != "" {
			sentences = append(sentences, "עם "+ctx.Years+" תקבלו עבודה אחראית ומסודרת.")
		} else if ctx.ExperienceText != "" {
			sentences = append(sentences, ctx.ExperienceText)
		}
		if ctx.Rating != "" && ctx.ReviewsCount != "" {
			sentences = append(sentences, "מדורג "+ctx.Rating+" על סמך "+ctx.ReviewsCount+" ביקורות אמיתיות.")
		} else if ctx.Rating != "" {
			sentences = append(sentences, "מדורג "+ctx.Rating+" על ידי לקוחות האתר.")
		}
		if ctx.Availability != "" {
			sentences = append(sentences, ctx.Availability+" לשאלות ותיאומים.")
		}
		switch tone {
		case KeyServiceHuman:
			sentences = append(sentences, "שמים דגש על יחס אישי, תיאום ציפיות ותקשורת זמינה.")
		case KeyUrgentTrust:
			sentences = append(sentences, "מגיעים מהר לשטח, מתעדים הכל ומספקים פתרון אמין מהפנייה ועד הסגירה.")
		default:
			sentences = append(sentences, "העבודה מתבצעת לפי התקנים ועם אחריות מלאה על הביצוע.")
		}
		if langs != "" {
			sentences = append(sentences, "שפות שירות: "+langs+".")
		}
		return strings.Join(sentences, " ")
	}

	out := make(map[string]Styled, len(Keys))
	for _, key := range Keys {
		out[key] = Styled{
			Teaser: wordTrim(teaser, MaxTeaserWords),
			Body:   wordTrim(body(key), MaxBodyWords),
			Source: source,
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
