package bundler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	require.Equal(t, "word_12.csv", Replace(DefaultWordParts, map[string]interface{}{"label": 12}))
	require.Equal(t, "word_{{label}}.csv", Replace(DefaultWordParts, map[string]interface{}{"other": "x"}))
}
