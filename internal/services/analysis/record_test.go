package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("monthly")
	require.NoError(t, err)
	assert.Equal(t, KindMonthly, kind)

	kind, err = ParseKind("category")
	require.NoError(t, err)
	assert.Equal(t, KindCategory, kind)

	for _, raw := range []string{"", "weekly", "Monthly", "MONTHLY"} {
		_, err := ParseKind(raw)
		assert.ErrorIs(t, err, ErrInvalidKind, "raw=%q", raw)
	}
}
