package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptNextSkipsCommentsAndBlankLines(t *testing.T) {
	s := NewScript([]string{
		"# a comment",
		"",
		"   ",
		"real command",
		"# trailing comment",
	}, 0)

	cmd, line, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "real command", cmd)
	assert.Equal(t, 4, line)

	_, _, ok = s.Next()
	assert.False(t, ok, "expected script to be exhausted")
}

func TestScriptNextNormalizesWhitespace(t *testing.T) {
	s := NewScript([]string{"a\tb    c"}, 0)
	cmd, _, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "a b c", cmd)
}

func TestScriptLineTracksStartOffset(t *testing.T) {
	s := NewScript([]string{"one", "two"}, 10)
	_, line, _ := s.Next()
	assert.Equal(t, 11, line)
	_, line, _ = s.Next()
	assert.Equal(t, 12, line)
}

func TestSplitSectionsWithSeparator(t *testing.T) {
	text := "a\nb\n----------\nc\nd\n"
	sect1, sect2, ok := SplitSections(text)
	require.True(t, ok, "expected a separator to be found")
	assert.Equal(t, []string{"a", "b"}, sect1)
	assert.Equal(t, []string{"c", "d"}, sect2)
}

func TestSplitSectionsNoSeparator(t *testing.T) {
	text := "a\nb\n"
	sect1, sect2, ok := SplitSections(text)
	assert.False(t, ok, "expected no separator")
	assert.Equal(t, []string{"a", "b"}, sect1)
	assert.Nil(t, sect2)
}

func TestIsSeparatorRequiresTenDashes(t *testing.T) {
	assert.False(t, isSeparator("---------"), "nine dashes must not count as a separator")
	assert.True(t, isSeparator("  ----------  "), "ten dashes with surrounding spaces must count as a separator")
}
