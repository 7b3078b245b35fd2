package trustlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	source := "Intro text.\n" +
		"* NotListed\n" +
		DefaultStartMarker + "\n" +
		"* Alice\n" +
		"*Bob\n" +
		"\n" +
		"  ** Carol Example  \n" +
		"# Dave\n" +
		"Eve\n" +
		DefaultEndMarker + "\n" +
		"* AfterEnd\n"

	set, err := Parse(source, DefaultMarkers())
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Carol Example", "Dave", "Eve"}, set.Names())
	assert.True(t, set.Contains("Alice"))
	assert.True(t, set.Contains("Carol Example"))
	assert.False(t, set.Contains("NotListed"))
	assert.False(t, set.Contains("AfterEnd"))
	assert.False(t, set.Contains("alice"))
}

func TestParseEmptyBlock(t *testing.T) {
	set, err := Parse("x "+DefaultStartMarker+"\n\n"+DefaultEndMarker, DefaultMarkers())
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestParseMissingMarkers(t *testing.T) {
	cases := map[string]string{
		"no-markers": "* Alice\n* Bob\n",
		"no-start":   "* Alice\n" + DefaultEndMarker,
		"no-end":     DefaultStartMarker + "\n* Alice\n",
		"end-first":  DefaultEndMarker + "\n* Alice\n" + DefaultStartMarker,
	}

	for name, source := range cases {
		_, err := Parse(source, DefaultMarkers())
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected ParseError, got %v", name, err)
		}
	}
}

func TestParseCustomMarkers(t *testing.T) {
	set, err := Parse("<start>\n* Alice\n<end>", Markers{Start: "<start>", End: "<end>"})
	require.NoError(t, err)
	assert.True(t, set.Contains("Alice"))
}

func TestZeroSet(t *testing.T) {
	var set Set
	assert.False(t, set.Contains("Alice"))
	assert.Equal(t, 0, set.Len())
}
