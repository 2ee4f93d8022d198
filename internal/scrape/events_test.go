package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeEmitsTagOpensInDocumentOrder(t *testing.T) {
	events, err := Tokenize(strings.NewReader(
		`<td class="day-box"><a class="day-number" data-day="3">3</a><img src="x"/></td><p>text</p>`))
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "td", events[0].Tag)
	assert.True(t, events[0].HasClass("day-box"))

	assert.Equal(t, "a", events[1].Tag)
	assert.Equal(t, "3", events[1].Attr("data-day"))

	// Self-closing tags still produce an open event.
	assert.Equal(t, "img", events[2].Tag)
	assert.Equal(t, "p", events[3].Tag)
}

func TestTokenizeSplitsClassList(t *testing.T) {
	events, err := Tokenize(strings.NewReader(`<td class="day-box weekend other">x</td>`))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, events[0].HasClass("day-box"))
	assert.True(t, events[0].HasClass("weekend"))
	assert.True(t, events[0].HasClass("other"))
	assert.False(t, events[0].HasClass("day"))
}

func TestTokenizeEmptyInput(t *testing.T) {
	events, err := Tokenize(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)
}
