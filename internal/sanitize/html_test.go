package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Meetup", Text("<b>Meetup</b>"))
	assert.Equal(t, "alert(1)", Text("<script>alert(1)</script>"))
	assert.Equal(t, "plain", Text("plain"))
}

func TestHTML(t *testing.T) {
	assert.Equal(t, "<p>hello</p>", HTML("<p>hello</p>"))
	assert.NotContains(t, HTML(`<a href="javascript:alert(1)">x</a>`), "javascript:")
	assert.NotContains(t, HTML("<script>alert(1)</script><em>ok</em>"), "<script>")
}
