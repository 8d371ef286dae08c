package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagCoercion(t *testing.T) {
	var rec struct {
		A Flag `json:"a"`
		B Flag `json:"b"`
		C Flag `json:"c"`
		D Flag `json:"d"`
		E Flag `json:"e"`
		F Flag `json:"f"`
	}
	require.NoError(t, json.Unmarshal(
		[]byte(`{"a": true, "b": "1", "c": "yes", "d": 0, "e": "nope", "f": null}`),
		&rec,
	))
	assert.True(t, rec.A.Bool())
	assert.True(t, rec.B.Bool())
	assert.True(t, rec.C.Bool())
	assert.False(t, rec.D.Bool())
	assert.False(t, rec.E.Bool())
	assert.False(t, rec.F.Bool())
}

func TestFlexIntCoercion(t *testing.T) {
	var rec struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
		C FlexInt `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": " 12 ", "c": "abc"}`), &rec))
	assert.Equal(t, 7, rec.A.Int())
	assert.Equal(t, 12, rec.B.Int())
	assert.Equal(t, 0, rec.C.Int())
}

func TestResolvedID(t *testing.T) {
	assert.Equal(t, "a", WorkerRecord{WorkerID: "a", ID: "b"}.ResolvedID())
	assert.Equal(t, "b", WorkerRecord{ID: "b"}.ResolvedID())
	assert.Equal(t, "c", WorkerRecord{AltID: "c"}.ResolvedID())
	assert.Empty(t, WorkerRecord{}.ResolvedID())
}

func TestSourceBioPriority(t *testing.T) {
	w := WorkerRecord{Bio: "ביו", OriginalBio: "מקורי"}
	assert.Equal(t, "מקורי", w.SourceBio())

	assert.Equal(t, "תיאור", WorkerRecord{Description: "תיאור"}.SourceBio())
}

func TestCursorAliases(t *testing.T) {
	assert.Equal(t, 3, WorkerRecord{AIVariantCursor: FlexIntPtr(3)}.Cursor())
	assert.Equal(t, 2, WorkerRecord{VariantRefresh: 2}.Cursor())
	assert.Equal(t, 3, WorkerRecord{AIVariantCursor: FlexIntPtr(3), VariantRefresh: 2}.Cursor())
}

func TestCursorExplicitZeroWinsOverRefresh(t *testing.T) {
	var w WorkerRecord
	require.NoError(t, json.Unmarshal(
		[]byte(`{"ai_variant_cursor": 0, "variant_refresh": 4}`), &w))
	assert.Equal(t, 0, w.Cursor(), "a present saved cursor wins even at zero")

	var w2 WorkerRecord
	require.NoError(t, json.Unmarshal([]byte(`{"variant_refresh": 4}`), &w2))
	assert.Equal(t, 4, w2.Cursor(), "refresh applies only when the saved cursor is absent")
}

func TestSkipInUseDefault(t *testing.T) {
	assert.True(t, WorkerRecord{}.SkipInUse())
	f := false
	assert.False(t, WorkerRecord{SkipInUseVariants: &f}.SkipInUse())
}

func TestBuildPolicy(t *testing.T) {
	w := WorkerRecord{
		Certified:     true,
		WarrantyYears: 2,
		IssueInvoice:  true,
		License:       "12345",
	}
	p := BuildPolicy(w)
	assert.True(t, p.Licensed, "certified implies licensed")
	assert.True(t, p.InvoiceVAT, "issue_invoice implies invoice")
	assert.Equal(t, 2, p.WarrantyYears)
	assert.Equal(t, "12345", p.LicenseNumber)
	assert.False(t, p.Emergency)
}

func TestWorkerRecordDecodesLooseSubmission(t *testing.T) {
	raw := `{
		"workerId": "77",
		"name": "יוסי כהן",
		"field": "חשמלאי",
		"is_licensed": "1",
		"warranty_years": "3",
		"sub_services": ["התקנת תאורה"],
		"call_to_action": {"status": "open"}
	}`
	var w WorkerRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	assert.Equal(t, "77", w.ResolvedID())
	assert.True(t, w.IsLicensed.Bool())
	assert.Equal(t, 3, w.WarrantyYears.Int())
	require.NotNil(t, w.CTA)
	assert.Equal(t, "open", w.CTA.Status)
}
