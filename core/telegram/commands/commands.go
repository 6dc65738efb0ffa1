package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Normalize returns the lookup key of a command name: lower case, without the
// leading slash and without an @botname suffix.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}

// Parse splits "/Name@bot args" into the normalised name and the raw argument
// tail. ok is false when text is not a command.
func Parse(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != '/' {
		return "", "", false
	}
	head, tail, _ := strings.Cut(text, " ")
	name = Normalize(head)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(tail), true
}
