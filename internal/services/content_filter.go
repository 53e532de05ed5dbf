package services

import (
	"regexp"
	"strings"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

const (
	RejectInappropriateLanguage = "inappropriate_language"
	RejectURL                   = "url_not_allowed"
	RejectContactInfo           = "contact_info_not_allowed"
	RejectSpam                  = "spam_detected"
	RejectExcessiveCaps         = "excessive_caps"
)

var rejectionMessages = map[string]string{
	RejectInappropriateLanguage: "The description contains inappropriate language.",
	RejectURL:                   "Links are not allowed in descriptions.",
	RejectContactInfo:           "E-mail addresses are not allowed in descriptions.",
	RejectSpam:                  "The description looks like spam.",
	RejectExcessiveCaps:         "Please avoid excessive capital letters.",
}

// ContentFilter screens free text users attach to spam reports. Phone numbers are
// allowed since reports routinely quote them.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps:   make([]*regexp.Regexp, 0, len(bannedWords)),
		urlPattern:          regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:        regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
		repeatedCharPattern: repeatedCharRegexp(),
		allCapsPattern:      regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range bannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns ("", true) for acceptable text or a rejection code.
func (f *ContentFilter) Check(text string) (string, bool) {
	if text == "" {
		return "", true
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return RejectInappropriateLanguage, false
		}
	}
	if f.urlPattern.MatchString(text) {
		return RejectURL, false
	}
	if f.emailPattern.MatchString(text) {
		return RejectContactInfo, false
	}
	if f.repeatedCharPattern.MatchString(text) {
		return RejectSpam, false
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 2 {
		return RejectExcessiveCaps, false
	}
	return "", true
}

func RejectionMessage(code string) string {
	if msg, ok := rejectionMessages[code]; ok {
		return msg
	}
	return "The description does not meet our content guidelines."
}

// RE2 has no backreferences, so every repeatable character gets its own branch.
func repeatedCharRegexp() *regexp.Regexp {
	chars := "abcdefghijklmnopqrstuvwxyz!?."
	branches := make([]string, 0, len(chars))
	for _, c := range chars {
		branches = append(branches, regexp.QuoteMeta(string(c))+"{5,}")
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(branches, "|") + `)`)
}
