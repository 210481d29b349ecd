package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/rollbot/internal/platform/requestctx"
	"github.com/louisbranch/rollbot/internal/platform/timeouts"
	"github.com/louisbranch/rollbot/internal/random"
	"github.com/louisbranch/rollbot/internal/services/rollbot/command"
	"github.com/louisbranch/rollbot/internal/services/rollbot/dice"
	"github.com/louisbranch/rollbot/internal/services/rollbot/render"
	"github.com/louisbranch/rollbot/internal/services/rollbot/slack"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SlashCommand is the slash command the bot answers.
const SlashCommand = "/roll"

// PoolService is the pool surface the handler needs.
type PoolService interface {
	Withdraw(ctx context.Context, participant string, amount int) (storage.PoolRecord, error)
	Snapshot(ctx context.Context) (storage.PoolRecord, error)
	Game() string
	Allocator() string
}

// HandlerConfig wires the slash command handler.
type HandlerConfig struct {
	Verifier *slack.Verifier
	Poster   slack.Poster
	Pools    PoolService
	Renderer *render.Renderer
	MaxDice  int
	// Seed returns the seed of each roll. Nil uses random.NewSeed.
	Seed func() (int64, error)
	// PostTimeout caps each chat.postMessage call. Zero uses timeouts.SlackPost.
	PostTimeout time.Duration
}

type commandHandler struct {
	verifier    *slack.Verifier
	poster      slack.Poster
	pools       PoolService
	renderer    *render.Renderer
	maxDice     int
	seed        func() (int64, error)
	postTimeout time.Duration
}

// NewHandler creates the bot routes.
func NewHandler(cfg HandlerConfig) http.Handler {
	h := &commandHandler{
		verifier:    cfg.Verifier,
		poster:      cfg.Poster,
		pools:       cfg.Pools,
		renderer:    cfg.Renderer,
		maxDice:     cfg.MaxDice,
		seed:        cfg.Seed,
		postTimeout: cfg.PostTimeout,
	}
	if h.renderer == nil {
		h.renderer = render.New(render.DefaultLanguage)
	}
	if h.maxDice <= 0 {
		h.maxDice = dice.DefaultMaxDice
	}
	h.renderer.MaxDice = h.maxDice
	if h.seed == nil {
		h.seed = random.NewSeed
	}
	if h.postTimeout <= 0 {
		h.postTimeout = timeouts.SlackPost
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/slack/commands", h.handleCommand)
	return mux
}

func (h *commandHandler) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	ctx := requestctx.WithRequestID(r.Context(), requestID)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("rollbot.request_id", requestID))

	cmd, err := slack.ParseCommand(r)
	if err != nil {
		log.Printf("rollbot: request=%s bad slash command: %v", requestID, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.verifier.Verify(cmd.Token); err != nil {
		log.Printf("rollbot: request=%s token rejected for user=%q channel=%q", requestID, cmd.UserName, cmd.ChannelID)
		http.Error(w, h.renderer.InvalidToken(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("rollbot.command", cmd.Command),
		attribute.String("rollbot.user", cmd.UserName),
	)

	if cmd.Command != SlashCommand {
		writeResponse(w, h.renderer.UnknownCommand(cmd.Command))
		return
	}

	parsed, err := command.Parse(cmd.Text)
	if err != nil {
		log.Printf("rollbot: request=%s user=%q unrecognized text=%q", requestID, cmd.UserName, cmd.Text)
		writeResponse(w, h.renderer.Usage(cmd.Text))
		return
	}
	log.Printf("rollbot: request=%s user=%q channel=%q kind=%s text=%q", requestID, cmd.UserName, cmd.ChannelID, parsed.Kind, cmd.Text)

	var msg slack.Message
	switch parsed.Kind {
	case command.KindHelp:
		writeResponse(w, h.renderer.Usage(""))
		return
	case command.KindPools:
		record, err := h.pools.Snapshot(ctx)
		if err != nil {
			h.writeError(w, requestID, err)
			return
		}
		msg = h.renderer.Pools(record.Pools, h.pools.Allocator())
	case command.KindFood:
		seed, err := h.seed()
		if err != nil {
			h.writeError(w, requestID, err)
			return
		}
		msg = h.renderer.FoodFight(dice.RollFoodFight(dice.FoodRequest{Forced: parsed.Forced, Seed: seed}))
	case command.KindFate:
		seed, err := h.seed()
		if err != nil {
			h.writeError(w, requestID, err)
			return
		}
		result := dice.RollFate(dice.FateRequest{Skill: parsed.Skill, HasSkill: parsed.HasSkill, Seed: seed})
		msg = h.renderer.FateRoll(cmd.UserRef(), result)
	case command.KindStandard:
		var ok bool
		msg, ok = h.standardRoll(ctx, w, requestID, cmd, parsed)
		if !ok {
			return
		}
	default:
		writeResponse(w, h.renderer.Usage(cmd.Text))
		return
	}

	msg.Channel = cmd.ChannelID
	msg.ReplyBroadcast = true
	if reply, ok := h.post(ctx, requestID, msg); !ok {
		writeResponse(w, reply)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// standardRoll rolls first so a bad dice count never charges the pool.
func (h *commandHandler) standardRoll(ctx context.Context, w http.ResponseWriter, requestID string, cmd slack.SlashCommand, parsed command.Command) (slack.Message, bool) {
	seed, err := h.seed()
	if err != nil {
		h.writeError(w, requestID, err)
		return slack.Message{}, false
	}
	result, err := dice.RollStandard(dice.StandardRequest{
		Dice:     parsed.Dice,
		PoolDice: parsed.PoolDice,
		MaxDice:  h.maxDice,
		Seed:     seed,
	})
	if err != nil {
		h.writeError(w, requestID, err)
		return slack.Message{}, false
	}

	var pools *slack.Attachment
	if parsed.UsesPool {
		record, err := h.pools.Withdraw(ctx, cmd.UserName, parsed.PoolDice)
		if err != nil {
			h.writeError(w, requestID, err)
			return slack.Message{}, false
		}
		attachment := h.renderer.PoolAttachment(record.Pools, h.pools.Allocator())
		pools = &attachment
	}
	return h.renderer.StandardRoll(cmd.UserRef(), result, parsed.Comment, pools), true
}

func (h *commandHandler) post(ctx context.Context, requestID string, msg slack.Message) (slack.Response, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.postTimeout)
	defer cancel()

	err := h.poster.PostMessage(ctx, msg)
	if err == nil {
		return slack.Response{}, true
	}
	log.Printf("rollbot: request=%s post message to channel=%q: %v", requestID, msg.Channel, err)
	reason := err.Error()
	var apiErr *slack.APIError
	if errors.As(err, &apiErr) {
		reason = apiErr.Code
	}
	return h.renderer.APIFailure(reason), false
}

func (h *commandHandler) writeError(w http.ResponseWriter, requestID string, err error) {
	log.Printf("rollbot: request=%s game=%q: %v", requestID, h.pools.Game(), err)
	writeResponse(w, h.renderer.Error(err, h.pools.Game()))
}

func writeResponse(w http.ResponseWriter, resp slack.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("rollbot: write response: %v", err)
	}
}
