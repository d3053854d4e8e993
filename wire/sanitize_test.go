package wire

import (
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTripDisplaysOriginalText(t *testing.T) {
	// Decoding inverts the transport escape only; the renderer resolves
	// the remaining HTML entities. Modeled here with html.UnescapeString.
	inputs := []string{
		"hello world",
		"",
		"a & b < c > d",
		`quotes " and '`,
		"<script>alert(1)</script>",
		"<img src=x onerror=alert(1)>",
		"multi\nline\ttext",
		"안녕하세요 — καλημέρα",
		"emoji 🎉 outside the BMP",
		"percent % and %41 lookalikes",
		"100% + 2 = @*_./",
	}
	for _, in := range inputs {
		decoded := DecodeInbound(EncodeOutbound(in))
		assert.Equal(t, in, html.UnescapeString(decoded), "input %q", in)
	}
}

func TestTransportEscapeRoundTrip(t *testing.T) {
	for _, in := range []string{
		"plain",
		"sp ace+plus%25",
		"유니코드 텍스트",
		"𝔘𝔫𝔦𝔠𝔬𝔡𝔢 surrogate pairs 🚀",
	} {
		assert.Equal(t, in, unescapeTransport(escapeTransport(in)), "input %q", in)
	}
}

func TestEncodeOutboundNeutralizesMarkup(t *testing.T) {
	payload := EncodeOutbound("<img src=x onerror=alert(1)>")
	assert.NotContains(t, payload, "<")
	assert.NotContains(t, payload, ">")

	// What a page would actually insert: still entity-escaped text.
	decoded := DecodeInbound(payload)
	assert.NotContains(t, decoded, "<img")
	assert.True(t, strings.HasPrefix(decoded, "&lt;"), "markup stays entity-escaped: %q", decoded)
}

func TestDecodeInboundKeepsEntitiesEscaped(t *testing.T) {
	// Inbound decoding must not resolve entities; that is the renderer's job.
	assert.Equal(t, "&lt;b&gt;", DecodeInbound("%26lt%3Bb%26gt%3B"))
}

func TestUnescapeTransportToleratesMalformedEscapes(t *testing.T) {
	// Truncated or invalid escapes pass through instead of failing; the
	// loops treat content as opaque text.
	assert.Equal(t, "100%", unescapeTransport("100%"))
	assert.Equal(t, "%zz", unescapeTransport("%zz"))
	assert.Equal(t, "%u12", unescapeTransport("%u12"))
}
