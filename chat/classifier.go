package chat

import (
	"regexp"
	"strings"
)

// Exported chat records wrap non-text payloads in <msg> markup
var (
	imagePattern  = regexp.MustCompile(`(?s)<msg>\s*<img.*?>\s*</msg>`)
	emojiPattern  = regexp.MustCompile(`(?s)<msg>\s*<emoji.*?>.*?</msg>`)
	markupPattern = regexp.MustCompile(`(?s)<msg>.*?</msg>`)
)

// Classify tags content with one of the message types.
// Rules are tried in order and the first match wins.
func Classify(content string) MessageType {
	switch {
	case imagePattern.MatchString(content):
		return TypeImage
	case emojiPattern.MatchString(content):
		return TypeEmoji
	case strings.TrimSpace(content) == "":
		return TypeEmpty
	case markupPattern.MatchString(content):
		return TypeOther
	default:
		return TypeText
	}
}
