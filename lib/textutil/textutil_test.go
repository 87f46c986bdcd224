package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a \n\n b\t\tc  "))
	require.Equal(t, "", CollapseWhitespace("   \n\t "))
	require.Equal(t, "unchanged", CollapseWhitespace("unchanged"))
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "short", Excerpt("short", 10))
	require.Equal(t, "exact", Excerpt("exact", 5))
	require.Equal(t, "abc…", Excerpt("abcdef", 3))
	require.Equal(t, "", Excerpt("anything", 0))

	// cuts on rune boundaries
	require.Equal(t, "héllo…", Excerpt("héllo wörld", 5))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "introvertextrovert", NormalizeName("Introvert Extrovert"))
	require.Equal(t, "speed", NormalizeName("  SPEED\n"))
}
