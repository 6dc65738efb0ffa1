package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile("([" + classOf(mdV2Specials) + "])")
)

// classOf escapes every rune so it is literal inside a character class.
func classOf(chars string) string {
	out := make([]byte, 0, len(chars)*2)
	for i := 0; i < len(chars); i++ {
		out = append(out, '\\', chars[i])
	}
	return string(out)
}

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// MDV2 escapes user supplied text for MarkdownV2 messages.
func MDV2(text string) string {
	return mdV2Re.ReplaceAllString(text, `\$1`)
}
