package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks(t *testing.T) {
	doc, err := ParseHTML([]byte(`<html><body>
		<a href="/a">A</a>
		<a href="https://other.test/b">B</a>
		<a href="/a">duplicate</a>
		<a href="  /spaced  ">C</a>
		<a>no href</a>
	</body></html>`))
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "https://other.test/b", "/spaced"}, Links(doc))
}

func TestLinksEmptyDocument(t *testing.T) {
	doc, err := ParseHTML([]byte(`<html><body><p>no anchors</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, Links(doc))
}

func TestDocumentTitle(t *testing.T) {
	doc, err := ParseHTML([]byte(`<html><head><title>  Spaced Title  </title></head><body></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Spaced Title", DocumentTitle(doc))
}

func TestVisibleText(t *testing.T) {
	doc, err := ParseHTML([]byte(`<html><body>
		<script>var hidden = 1;</script>
		<style>.x { color: red }</style>
		<p>visible   paragraph</p>
		<noscript>fallback</noscript>
	</body></html>`))
	require.NoError(t, err)

	text := VisibleText(doc)
	assert.Contains(t, text, "visible paragraph")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "color")
	assert.NotContains(t, text, "fallback")
}
