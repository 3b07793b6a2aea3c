package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalQuestion(t *testing.T) {
	cases := map[string]string{
		"  Office Hours  ":       "office hours",
		"What's the PTO policy?": "what s the pto policy",
		"parking\t\tpass":        "parking pass",
		"Café hours!!":           "café hours",
		"VPN -- setup (2FA)":     "vpn setup 2fa",
		"?!":                     "",
	}
	for in, want := range cases {
		require.Equal(t, want, canonicalQuestion(in), in)
	}
}
