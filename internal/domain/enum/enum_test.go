package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillStatus_JSON(t *testing.T) {
	var s BillStatus
	require.NoError(t, json.Unmarshal([]byte(`"on-hold"`), &s))
	assert.Equal(t, BillStatusOnHold, s)

	assert.Error(t, json.Unmarshal([]byte(`"paused"`), &s))

	out, err := json.Marshal(BillStatusPartiallyPaid)
	require.NoError(t, err)
	assert.JSONEq(t, `"partially-paid"`, string(out))
}

func TestBillStatus_Scan(t *testing.T) {
	var s BillStatus
	require.NoError(t, s.Scan([]byte("completed")))
	assert.Equal(t, BillStatusCompleted, s)
	assert.True(t, s.IsTerminal())

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, BillStatusActive, s)

	assert.Error(t, s.Scan("bogus"))
	assert.Error(t, s.Scan(42))
}

func TestGstMode(t *testing.T) {
	var m GstMode
	require.NoError(t, json.Unmarshal([]byte(`"inclusive"`), &m))
	assert.Equal(t, GstModeInclusive, m)

	require.NoError(t, json.Unmarshal([]byte(`0`), &m))
	assert.Equal(t, GstModeAdditive, m)

	_, err := ParseGstMode("compound")
	assert.Error(t, err)

	require.NoError(t, m.Scan(int64(1)))
	assert.Equal(t, "inclusive", m.String())

	t.Run("out of range values are rejected", func(t *testing.T) {
		m := GstModeInclusive
		for _, raw := range []string{`2`, `-1`, `7`} {
			assert.Errorf(t, json.Unmarshal([]byte(raw), &m), "json %s", raw)
		}
		assert.Error(t, m.Scan(int64(2)))
		assert.Error(t, m.Scan(int32(-1)))
		assert.Error(t, m.Scan(5))
		assert.Equal(t, GstModeInclusive, m)
	})
}

func TestSourceRole(t *testing.T) {
	var r SourceRole
	require.NoError(t, json.Unmarshal([]byte(`"viewer"`), &r))
	assert.Equal(t, SourceRoleViewer, r)
	assert.Error(t, json.Unmarshal([]byte(`"owner"`), &r))
}
