package slack

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	slackapi "github.com/slack-go/slack"
)

// ErrInvalidToken indicates a slash command carried an unknown verification token.
var ErrInvalidToken = errors.New("invalid request token")

// SlashCommand is the form payload Slack sends for a slash command.
type SlashCommand struct {
	slackapi.SlashCommand
}

// UserRef returns the mention syntax for the invoking user.
func (c SlashCommand) UserRef() string {
	return fmt.Sprintf("<@%s|%s>", c.UserID, c.UserName)
}

// ParseCommand decodes a slash command from a form encoded request. The
// text is trimmed and a command name is required.
func ParseCommand(r *http.Request) (SlashCommand, error) {
	parsed, err := slackapi.SlashCommandParse(r)
	if err != nil {
		return SlashCommand{}, fmt.Errorf("parse slash command form: %w", err)
	}
	parsed.Text = strings.TrimSpace(parsed.Text)
	if parsed.Command == "" {
		return SlashCommand{}, fmt.Errorf("command is required")
	}
	return SlashCommand{SlashCommand: parsed}, nil
}

// Verifier checks slash command verification tokens.
type Verifier struct {
	tokens [][]byte
}

// NewVerifier accepts any of tokens. Blank tokens are ignored.
func NewVerifier(tokens []string) *Verifier {
	v := &Verifier{}
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		v.tokens = append(v.tokens, []byte(token))
	}
	return v
}

// Verify returns ErrInvalidToken unless token matches a configured token.
// Every configured token is compared so the time taken does not depend on
// which one matched.
func (v *Verifier) Verify(token string) error {
	if v == nil {
		return ErrInvalidToken
	}
	candidate := []byte(token)
	matched := 0
	for _, expected := range v.tokens {
		matched |= subtle.ConstantTimeCompare(candidate, expected)
	}
	if matched != 1 {
		return ErrInvalidToken
	}
	return nil
}
