package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `
<html>
	<body>
		<h1>Heading</h1>
		<div class="story">
			<p>First <b>para</b></p>
		</div>
		<p>Second</p>
		<h2>Sub</h2>
		<a class="next" href="/archive?page=2">Next</a>
	</body>
</html>
`

// TestFindContainer_Match verifies the first matching node is returned
func TestFindContainer_Match(t *testing.T) {
	doc, err := ParseString(sampleHTML)
	require.NoError(t, err)

	node, ok := doc.FindContainer("div.story")
	require.True(t, ok)
	assert.Equal(t, "First para", NormalizeSpace(node.Text()))
}

// TestFindContainer_NoMatch verifies a missing selector reports false
func TestFindContainer_NoMatch(t *testing.T) {
	doc, err := ParseString(sampleHTML)
	require.NoError(t, err)

	_, ok := doc.FindContainer("div.missing")
	assert.False(t, ok)

	_, ok = doc.FindContainer("")
	assert.False(t, ok, "empty selector should never match")
}

// TestFindAll_DocumentOrder verifies matches across tags keep document order
func TestFindAll_DocumentOrder(t *testing.T) {
	doc, err := ParseString(sampleHTML)
	require.NoError(t, err)

	nodes := doc.FindAll("p", "h1", "h2")
	require.Len(t, nodes, 4)

	var texts []string
	for _, n := range nodes {
		texts = append(texts, NormalizeSpace(n.Text()))
	}
	assert.Equal(t, []string{"Heading", "First para", "Second", "Sub"}, texts)
}

// TestFindAll_NoSelectors verifies an empty selector list finds nothing
func TestFindAll_NoSelectors(t *testing.T) {
	doc, err := ParseString(sampleHTML)
	require.NoError(t, err)

	assert.Empty(t, doc.FindAll())
}

// TestAttr verifies attribute lookup
func TestAttr(t *testing.T) {
	doc, err := ParseString(sampleHTML)
	require.NoError(t, err)

	next, ok := doc.FindContainer("a.next")
	require.True(t, ok)

	href, ok := next.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/archive?page=2", href)

	_, ok = next.Attr("title")
	assert.False(t, ok)
}

// TestNormalizeSpace verifies whitespace collapsing
func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a \n\t b   c "))
	assert.Equal(t, "", NormalizeSpace(" \n "))
}
