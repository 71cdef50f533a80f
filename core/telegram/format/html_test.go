package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"https://example.com/policy", "https://example.com/policy"},
		{"http://example.com", "http://example.com"},
		{"telegra.ph/privacy-01-01", "https://telegra.ph/privacy-01-01"},
		{"www.example.com", "https://www.example.com"},
		{"example.com/terms", "https://example.com/terms"},
		{"not a url", ""},
		{"plaintext", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), "input %q", tc.in)
	}
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", EscapeHTML("a <b> & c"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
}
