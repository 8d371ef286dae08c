package tone

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/balei-miktzoa/draftgen/pkg/llm"
)

// DefaultLLMTimeout bounds a single model call; the deterministic fallback
// takes over past it.
const DefaultLLMTimeout = 45 * time.Second

const systemPrompt = "אתה מסייע בעריכת טקסטים קצרים לבעלי מקצוע. " +
	"הקפד על ניסוח טבעי, בעברית, ובהתאם להנחיות הפורמט."

// promptPayload flattens the context for the model, dropping empty values to
// keep the signal-to-noise ratio up.
func promptPayload(ctx WorkerContext) map[string]any {
	payload := map[string]any{
		"display_name":    ctx.DisplayName,
		"person_name":     ctx.PersonName,
		"field_label":     ctx.FieldLabel,
		"city":            ctx.City,
		"years":           ctx.Years,
		"experience_text": ctx.ExperienceText,
		"rating":          ctx.Rating,
		"reviews_count":   ctx.ReviewsCount,
		"availability":    ctx.Availability,
		"sub_services":    ctx.SubServicesCompact,
		"source_bio":      ctx.SourceBio,
		"policy_flags": map[string]bool{
			"licensed":  ctx.Policy.Licensed,
			"insured":   ctx.Policy.Insured,
			"invoice":   ctx.Policy.InvoiceVAT,
			"emergency": ctx.Policy.Emergency,
		},
	}
	if len(ctx.Languages) > 0 {
		payload["languages"] = ctx.Languages
	}
	if len(ctx.Highlights) > 0 {
		payload["highlights"] = ctx.Highlights
	}
	for k, v := range payload {
		if s, ok := v.(string); ok && s == "" {
			delete(payload, k)
		}
	}
	return payload
}

func promptText(payload map[string]any) (string, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "tone: marshal prompt payload")
	}
	return fmt.Sprintf(
		"נא לפעול לפי ההנחיות הבאות:\n"+
			"1. החזר JSON תקין עם שלושה שדות ברמה העליונה: "+
			"'neutral_professional', 'service_human', 'urgent_trust'.\n"+
			"2. לכל שדה יש להחזיר אובייקט עם 'teaser' ו-'body'.\n"+
			"3. כל טקסט בעברית תקנית, בגוף שני רבים, ללא הבטחות שלא אושרו.\n"+
			"4. אין לציין תעודות/זמינות חירום אלא אם 'policy_flags' מתאים.\n"+
			"5. הגבל את ה-teaser לעד %d מילים ואת ה-body לעד %d מילים.\n"+
			"6. שמור על טון בהתאם לשם המפתח:\n"+
			"   - neutral_professional: ענייני ומדויק.\n"+
			"   - service_human: חם, אמפתי, מדגיש שירות אישי.\n"+
			"   - urgent_trust: מדגיש אמינות, זמינות ותגובה מהירה (אם יש סימוכין).\n"+
			"7. אל תוסיף קוד גיבוי או טקסט מחוץ ל-JSON.\n"+
			"\nנתוני העובד:\n%s",
		MaxTeaserWords, MaxBodyWords, string(jsonPayload),
	), nil
}

type llmStyle struct {
	Teaser string `json:"teaser"`
	Body   string `json:"body"`
}

// callLLM asks the model for all three tones in one round trip.
func callLLM(ctx context.Context, client llm.Client, wc WorkerContext, timeout time.Duration) (map[string]llmStyle, error) {
	payload := promptPayload(wc)
	if len(payload) == 0 {
		return nil, eris.New("tone: insufficient worker data for prompt")
	}
	prompt, err := promptText(payload)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := client.Chat(callCtx, llm.ChatRequest{
		System:    systemPrompt,
		Prompt:    prompt,
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, eris.Wrap(err, "tone: chat")
	}

	raw = strings.TrimSpace(raw)
	// Some models wrap the JSON in a code fence despite instructions.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed map[string]llmStyle
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, eris.Wrap(err, "tone: parse model response")
	}
	return parsed, nil
}

// normalizeLLMOutput validates the model output per tone, substituting the
// deterministic fallback for any missing or empty rendition.
func normalizeLLMOutput(raw map[string]llmStyle, wc WorkerContext) map[string]Styled {
	var fallback map[string]Styled

	out := make(map[string]Styled, len(Keys))
	for _, key := range Keys {
		style := raw[key]
		teaser := strings.TrimSpace(style.Teaser)
		body := strings.TrimSpace(style.Body)
		if teaser == "" || body == "" {
			zap.L().Warn("tone rendition missing, using fallback", zap.String("tone", key))
			if fallback == nil {
				fallback = FallbackStyles(wc, "fallback")
			}
			out[key] = fallback[key]
			continue
		}
		out[key] = Styled{
			Teaser: wordTrim(teaser, MaxTeaserWords),
			Body:   wordTrim(body, MaxBodyWords),
			Source: "llm",
		}
	}
	return out
}
