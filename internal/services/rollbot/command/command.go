// Package command parses the text of a /roll slash command.
package command

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognized indicates text that is not a /roll command.
var ErrUnrecognized = errors.New("unrecognized roll command")

// Kind identifies a parsed command.
type Kind int

const (
	KindUnspecified Kind = iota
	KindHelp
	KindPools
	KindFood
	KindFate
	KindStandard
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindPools:
		return "pools"
	case KindFood:
		return "food"
	case KindFate:
		return "fate"
	case KindStandard:
		return "standard"
	default:
		return "unspecified"
	}
}

// Command is a parsed /roll command.
type Command struct {
	Kind Kind
	// Forced is the requested food fight effect, zero when absent.
	Forced int
	// Skill is the Fate skill bonus; HasSkill is set when one was given.
	Skill    int
	HasSkill bool
	// Dice and PoolDice are the standard roll counts. UsesPool is set when
	// the text carried a "+ n" group, even when n is zero.
	Dice     int
	PoolDice int
	UsesPool bool
	Comment  string
}

var (
	foodPattern     = regexp.MustCompile(`^food(?:\s+(\d+))?`)
	fatePattern     = regexp.MustCompile(`^fate\s*\+?(\d+)?`)
	standardPattern = regexp.MustCompile(`^(\d+)(?:\s*\+\s*(\d+))?(.*)`)
)

// Parse reads command text. Matching is anchored at the start of the text,
// so trailing words after food and fate are ignored and anything after a
// standard roll becomes its comment.
func Parse(text string) (Command, error) {
	switch text {
	case "help":
		return Command{Kind: KindHelp}, nil
	case "pools":
		return Command{Kind: KindPools}, nil
	}

	if match := foodPattern.FindStringSubmatch(text); match != nil {
		cmd := Command{Kind: KindFood}
		if match[1] != "" {
			if forced, err := strconv.Atoi(match[1]); err == nil && forced >= 1 && forced <= 6 {
				cmd.Forced = forced
			}
		}
		return cmd, nil
	}

	if match := fatePattern.FindStringSubmatch(text); match != nil {
		cmd := Command{Kind: KindFate}
		if match[1] != "" {
			skill, err := strconv.Atoi(match[1])
			if err != nil {
				return Command{}, ErrUnrecognized
			}
			cmd.Skill = skill
			cmd.HasSkill = true
		}
		return cmd, nil
	}

	if match := standardPattern.FindStringSubmatch(text); match != nil {
		dice, err := strconv.Atoi(match[1])
		if err != nil {
			return Command{}, ErrUnrecognized
		}
		cmd := Command{Kind: KindStandard, Dice: dice}
		if match[2] != "" {
			pool, err := strconv.Atoi(match[2])
			if err != nil {
				return Command{}, ErrUnrecognized
			}
			cmd.PoolDice = pool
			cmd.UsesPool = true
		}
		cmd.Comment = strings.TrimSpace(match[3])
		return cmd, nil
	}

	return Command{}, ErrUnrecognized
}
