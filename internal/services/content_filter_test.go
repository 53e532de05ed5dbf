package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()

	cases := []struct {
		text string
		code string
	}{
		{"", ""},
		{"Claimed to be from my bank, asked for a PIN", ""},
		{"They called from 0212 555 1234 three times", ""},
		{"what a bitch", RejectInappropriateLanguage},
		{"see www.example.com for details", RejectURL},
		{"write to scam@example.com", RejectContactInfo},
		{"noooooo stop calling", RejectSpam},
		{"PLEASE STOP THESE ANNOYING CALLS", RejectExcessiveCaps},
	}
	for _, tc := range cases {
		code, ok := f.Check(tc.text)
		assert.Equal(t, tc.code, code, tc.text)
		assert.Equal(t, tc.code == "", ok, tc.text)
	}

	assert.NotEmpty(t, RejectionMessage(RejectURL))
	assert.NotEmpty(t, RejectionMessage("unknown"))
}
