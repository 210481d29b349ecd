// Package render turns rolls and pool records into Slack messages.
//
// All copy is registered with golang.org/x/text/message so every string the
// bot shows lives in one catalog.
package render

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/louisbranch/rollbot/internal/platform/errors"
	"github.com/louisbranch/rollbot/internal/services/rollbot/dice"
	"github.com/louisbranch/rollbot/internal/services/rollbot/slack"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Attachment colors.
const (
	ColorHits     = "#00CC00"
	ColorMisses   = "#BBBBBB"
	ColorComment  = "#AAAAAA"
	ColorBlack    = "#000000"
	ColorDanger   = "danger"
	ColorWarning  = "warning"
	ColorNearby   = "#ffff00"
	ColorBlinding = "#ff9900"
	ColorHazard   = "#ff0000"
)

// DefaultLanguage is the language of the registered copy.
var DefaultLanguage = language.English

// Renderer builds bot replies in one language.
type Renderer struct {
	printer *message.Printer
	// MaxDice is shown when a roll asks for too many dice.
	MaxDice int
}

// New returns a renderer for tag. Unknown tags fall back to the English copy.
func New(tag language.Tag) *Renderer {
	return &Renderer{printer: message.NewPrinter(tag), MaxDice: dice.DefaultMaxDice}
}

// Usage returns the ephemeral help reply. A non-empty invalid text is
// reported above the usage lines.
func (r *Renderer) Usage(invalid string) slack.Response {
	heading := r.printer.Sprintf("usage.heading")
	if invalid != "" {
		heading = r.printer.Sprintf("usage.invalid", invalid)
	}
	lines := []string{
		heading,
		r.printer.Sprintf("usage.standard"),
		r.printer.Sprintf("usage.pool"),
		r.printer.Sprintf("usage.pools"),
		r.printer.Sprintf("usage.food"),
		r.printer.Sprintf("usage.fate"),
	}
	return slack.Response{
		ResponseType: slack.ResponseEphemeral,
		Text:         strings.Join(lines, "\n"),
	}
}

// InvalidToken is the body returned for an unverified request.
func (r *Renderer) InvalidToken() string {
	return r.printer.Sprintf("request.invalid_token")
}

// UnknownCommand replies to a slash command the bot does not serve.
func (r *Renderer) UnknownCommand(command string) slack.Response {
	return slack.Response{
		ResponseType: slack.ResponseInChannel,
		Text:         r.printer.Sprintf("request.unknown_command", command),
	}
}

// APIFailure reports a failed chat.postMessage to the invoking user.
func (r *Renderer) APIFailure(reason string) slack.Response {
	return slack.Response{
		ResponseType: slack.ResponseEphemeral,
		Text:         r.printer.Sprintf("request.api_failure", reason),
	}
}

// Error reports err to the invoking user using the copy for its code.
func (r *Renderer) Error(err error, game string) slack.Response {
	return slack.Response{
		ResponseType: slack.ResponseEphemeral,
		Text:         r.ErrorText(err, game),
	}
}

// ErrorText returns the user facing copy for err.
func (r *Renderer) ErrorText(err error, game string) string {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodePoolRecordNotFound:
		return r.printer.Sprintf("error."+string(code), game)
	case apperrors.CodeDiceInvalidCount:
		return r.printer.Sprintf("error."+string(code), r.MaxDice)
	case apperrors.CodePoolBackendUnavailable,
		apperrors.CodePoolInvalidAmount,
		apperrors.CodePoolDegenerateAllocator,
		apperrors.CodePoolParticipantRequired,
		apperrors.CodePoolVersionConflict:
		return r.printer.Sprintf("error." + string(code))
	default:
		return r.printer.Sprintf("error." + string(apperrors.CodeUnknown))
	}
}

// PoolAttachment lists every pool as "[name: n] " in name order with the
// allocator marked.
func (r *Renderer) PoolAttachment(pools map[string]int, allocator string) slack.Attachment {
	names := make([]string, 0, len(pools))
	for name := range pools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		label := name
		if name == allocator {
			label = r.printer.Sprintf("pools.allocator", name)
		}
		b.WriteString(r.printer.Sprintf("pools.entry", label, pools[name]))
	}
	return slack.MarkdownAttachment(ColorBlack, b.String())
}

// Pools is the message posted for "/roll pools".
func (r *Renderer) Pools(pools map[string]int, allocator string) slack.Message {
	return slack.Message{
		Text:        r.printer.Sprintf("pools.heading"),
		Attachments: []slack.Attachment{r.PoolAttachment(pools, allocator)},
	}
}

// StandardRoll is the message posted for a success-counting roll. The pool
// attachment is appended when pools is not nil.
func (r *Renderer) StandardRoll(userRef string, result dice.StandardResult, comment string, pools *slack.Attachment) slack.Message {
	var attachments []slack.Attachment
	if comment != "" {
		attachments = append(attachments, slack.MarkdownAttachment(ColorComment, r.printer.Sprintf("roll.comment", comment)))
	}
	attachments = append(attachments,
		slack.MarkdownAttachment(ColorHits, r.printer.Sprintf("roll.hits", result.Hits, faces(result, 6, 5))),
		slack.MarkdownAttachment(ColorMisses, r.printer.Sprintf("roll.misses", result.Nulls+result.Misses, faces(result, 4, 3, 2, 1))),
	)
	switch {
	case result.CriticalGlitch:
		attachments = append(attachments, slack.MarkdownAttachment(ColorDanger, r.printer.Sprintf("roll.critical_glitch")))
	case result.Glitch:
		attachments = append(attachments, slack.MarkdownAttachment(ColorWarning, r.printer.Sprintf("roll.glitch")))
	}
	if result.Fate != nil {
		attachments = append(attachments, slack.MarkdownAttachment(ColorBlack, r.printer.Sprintf("roll.fate_reading", result.Fate.Total, fateFaces(result.Fate.Faces))))
	}
	if pools != nil {
		attachments = append(attachments, *pools)
	}

	return slack.Message{
		Text:        r.printer.Sprintf("roll.standard", userRef, result.Dice, result.PoolDice, result.Total(), result.Sum),
		Attachments: attachments,
	}
}

// FateRoll is the message posted for "/roll fate".
func (r *Renderer) FateRoll(userRef string, result dice.FateResult) slack.Message {
	skill := ""
	if result.HasSkill {
		skill = r.printer.Sprintf("fate.skill", result.Skill)
	}
	return slack.Message{
		Text: r.printer.Sprintf("fate.roll", userRef, skill, result.Total(), fateFaces(result.Faces)),
	}
}

// FoodFight is the message posted for "/roll food".
func (r *Renderer) FoodFight(result dice.FoodResult) slack.Message {
	var msg slack.Message
	if result.Forced {
		msg.Attachments = append(msg.Attachments, slack.MarkdownAttachment(ColorBlack, r.printer.Sprintf("food.forced")))
	}

	switch result.Effect {
	case dice.FoodEffectSplash:
		msg.Text = capitalize(r.printer.Sprintf("food.splash", result.Color, result.Consistency, result.Kind))
		msg.Attachments = append(msg.Attachments,
			slack.MarkdownAttachment(ColorNearby, r.printer.Sprintf("food.splash.effect")),
		)
	case dice.FoodEffectBlinding:
		msg.Text = r.printer.Sprintf("food.blinding", result.Color, result.Consistency, result.Kind)
		msg.Attachments = append(msg.Attachments,
			slack.MarkdownAttachment(ColorNearby, r.printer.Sprintf("food.nearby.effect")),
			slack.MarkdownAttachment(ColorBlinding, r.printer.Sprintf("food.blinding.effect")),
		)
	case dice.FoodEffectPyrotechnics:
		msg.Text = r.printer.Sprintf("food.pyrotechnics", result.Color, result.Consistency, result.Kind, result.Pyrotechnic)
		msg.Attachments = append(msg.Attachments,
			slack.MarkdownAttachment(ColorNearby, r.printer.Sprintf("food.nearby.effect")),
			slack.MarkdownAttachment(ColorHazard, r.printer.Sprintf("food.pyrotechnics.effect")),
		)
	default:
		msg.Text = r.printer.Sprintf("food.nothing")
	}
	return msg
}

// faces lists the dice showing each value, pool dice emphasized.
func faces(result dice.StandardResult, values ...int) string {
	var b strings.Builder
	for _, value := range values {
		for _, die := range result.Face(value) {
			if die.Pool {
				fmt.Fprintf(&b, " _*%d*_", die.Value)
				continue
			}
			fmt.Fprintf(&b, " %d", die.Value)
		}
	}
	return b.String()
}

func fateFaces(values []int) string {
	var b strings.Builder
	for _, value := range values {
		switch {
		case value < 0:
			b.WriteByte('-')
		case value > 0:
			b.WriteByte('+')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}

func capitalize(text string) string {
	first, size := utf8.DecodeRuneInString(text)
	if first == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(first)) + text[size:]
}
