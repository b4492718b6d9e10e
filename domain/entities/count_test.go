package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	for _, v := range []any{3, int32(3), int64(3), float32(3), 3.0, json.Number("3")} {
		n, err := ParseCount(v)
		require.NoError(t, err, "%T", v)
		assert.Equal(t, 3, n, "%T", v)
	}

	n, err := ParseCount(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = ParseCount("3")
	assert.ErrorContains(t, err, "unexpected count type string")

	_, err = ParseCount(json.Number("x"))
	assert.Error(t, err)
}
