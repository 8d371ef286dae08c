package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonField(t *testing.T) {
	assert.Equal(t, "חשמלאי", CanonField("חשמלאים"))
	assert.Equal(t, "אינסטלטור", CanonField("אינסטלציה"))
	assert.Equal(t, "טכנאי מזגנים", CanonField("מיזוג אוויר"))
	assert.Equal(t, "גיאולוג", CanonField("גיאולוג"), "unknown trades pass through")
	assert.Equal(t, "חשמלאי", CanonField("  חשמלאי  "))
}

func TestCatalogForField(t *testing.T) {
	c := NewCatalog()

	fk, vs := c.ForField("חשמלאי")
	assert.Equal(t, "חשמלאי", fk)
	assert.Len(t, vs, 8)

	fk, vs = c.ForField("גיאולוג")
	assert.Equal(t, GenericKey, fk, "unknown trade falls back to the generic pool")
	assert.Len(t, vs, 8)

	assert.Equal(t, 6, c.Count("אינסטלציה"), "aliases resolve before lookup")
}

func TestPickNextDeterministic(t *testing.T) {
	r := NewRegistry(nil, nil)

	first := r.PickNext("חשמלאי", "id:42", 0, true)
	second := r.PickNext("חשמלאי", "id:42", 0, true)
	require.NotEmpty(t, first.Variant.ID)
	assert.Equal(t, first.Variant.ID, second.Variant.ID, "same seed and cursor must pick the same variant")
	assert.False(t, first.Exhausted)
}

func TestPickNextCursorRotates(t *testing.T) {
	r := NewRegistry(nil, nil)

	a := r.PickNext("חשמלאי", "id:42", 0, true)
	b := r.PickNext("חשמלאי", "id:42", 1, true)
	assert.NotEqual(t, a.Variant.ID, b.Variant.ID, "cursor bump must rotate to the adjacent variant")
}

func TestPickNextUnknownTradeUsesGenericPool(t *testing.T) {
	r := NewRegistry(nil, nil)

	pick := r.PickNext("מאלף דרקונים", "id:42", 0, true)
	require.NotEmpty(t, pick.Variant.ID)
	assert.True(t, strings.HasPrefix(pick.Variant.ID, "gen_"), "unknown trade falls back to the generic pool")
}

func TestPickNextSkipsInUse(t *testing.T) {
	r := NewRegistry(nil, nil)

	first := r.PickNext("מנעולן", "id:7", 0, true)
	res := r.Assign("מנעולן", first.Variant.ID, "other-worker")
	require.True(t, res.OK)

	second := r.PickNext("מנעולן", "id:7", 0, true)
	assert.NotEqual(t, first.Variant.ID, second.Variant.ID)
	assert.Equal(t, 1, second.SkippedCount)
}

func TestPickNextExhausted(t *testing.T) {
	r := NewRegistry(nil, nil)

	_, vs := NewCatalog().ForField("מנעולן")
	for i, v := range vs {
		res := r.Assign("מנעולן", v.ID, "w"+string(rune('a'+i)))
		require.True(t, res.OK)
	}

	pick := r.PickNext("מנעולן", "id:9", 0, true)
	assert.True(t, pick.Exhausted)
	assert.NotEmpty(t, pick.Variant.ID, "exhausted pick still returns the seed variant")
	assert.Equal(t, len(vs), pick.SkippedCount)
	assert.NotEmpty(t, pick.InUseBy)
}

func TestPickNextIgnoresAllocationsWhenSkipDisabled(t *testing.T) {
	r := NewRegistry(nil, nil)

	first := r.PickNext("נגר", "id:3", 0, true)
	require.True(t, r.Assign("נגר", first.Variant.ID, "someone").OK)

	again := r.PickNext("נגר", "id:3", 0, false)
	assert.Equal(t, first.Variant.ID, again.Variant.ID)
	assert.Equal(t, "someone", again.InUseBy)
}

func TestAssignConflict(t *testing.T) {
	r := NewRegistry(nil, nil)

	require.True(t, r.Assign("חשמלאי", "elc_v1", "w1").OK)

	res := r.Assign("חשמלאי", "elc_v1", "w2")
	assert.False(t, res.OK)
	assert.Equal(t, "w1", res.InUseBy)
}

func TestReassignReleasesPriorVariant(t *testing.T) {
	r := NewRegistry(nil, nil)

	require.True(t, r.Assign("חשמלאי", "elc_v1", "w1").OK)
	require.True(t, r.Assign("חשמלאי", "elc_v2", "w1").OK, "a worker moving variants releases the old one")

	res := r.Assign("חשמלאי", "elc_v1", "w2")
	assert.True(t, res.OK, "the prior variant is free again")
}

func TestReleaseFreesVariant(t *testing.T) {
	r := NewRegistry(nil, nil)

	require.True(t, r.Assign("מדביר", "pst_v1", "w1").OK)
	r.Release("מדביר", "w1")

	res := r.Assign("מדביר", "pst_v1", "w2")
	assert.True(t, res.OK)
}

func TestListAnnotatesHolders(t *testing.T) {
	r := NewRegistry(nil, nil)
	require.True(t, r.Assign("נגר", "crp_v2", "w9").OK)

	listed := r.List("נגר")
	require.Len(t, listed, 3)
	holders := map[string]string{}
	for _, lv := range listed {
		holders[lv.Variant.ID] = lv.InUseBy
	}
	assert.Equal(t, "w9", holders["crp_v2"])
	assert.Empty(t, holders["crp_v1"])
}

func TestSeedIndexRange(t *testing.T) {
	for _, seed := range []string{"", "id:1", "pre:abcdef", "a very long seed value"} {
		for cursor := 0; cursor < 20; cursor++ {
			idx := seedIndex(seed, cursor, 8)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 8)
		}
	}
}

func TestSeedIndexCursorIsCircular(t *testing.T) {
	base := seedIndex("id:42", 0, 8)
	next := seedIndex("id:42", 1, 8)
	assert.Equal(t, (base+1)%8, next)
}
