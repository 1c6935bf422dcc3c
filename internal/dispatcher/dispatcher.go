package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pharmatch/chatbot/internal/logging"
	"github.com/pharmatch/chatbot/internal/messenger"
	"github.com/pharmatch/chatbot/internal/metrics"
	"github.com/pharmatch/chatbot/internal/models"
	"github.com/pharmatch/chatbot/internal/repository"
)

// UserResolver looks up the linked account for an external source ID.
type UserResolver interface {
	GetBySourceID(ctx context.Context, sourceID string) (*models.LinkedUser, error)
}

// Handlers are the per-command actions plus the fixed replies the
// dispatcher emits on its own.
type Handlers interface {
	CheckIn(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error)
	CheckOut(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error)
	Status(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error)
	Menu(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error)
	Onboarding() []messenger.Message
	Help() []messenger.Message
	GenericError() []messenger.Message
}

const postbackPrefix = "action="

// Dispatcher routes webhook events to action handlers. Events within one
// batch are independent conversations, so they are processed concurrently
// and joined before the webhook request is acknowledged. Each event runs
// inside its own failure boundary: a panic or error in one handler is
// logged and answered with a generic-error reply, and never reaches a
// sibling event or the webhook response.
type Dispatcher struct {
	resolver UserResolver
	sender   messenger.Sender
	handlers Handlers
	logger   *logging.Logger
	commands map[string]models.Command
}

func New(resolver UserResolver, sender messenger.Sender, handlers Handlers, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		sender:   sender,
		handlers: handlers,
		logger:   logger,
		commands: buildCommandTable(),
	}
}

// buildCommandTable maps every literal and alias token to its canonical
// command. Tokens are stored case-folded; lookup normalizes the same way.
func buildCommandTable() map[string]models.Command {
	table := make(map[string]models.Command)
	aliases := map[models.Command][]string{
		models.CommandCheckIn:  {"checkin", "check-in", "出勤", "しゅっきん"},
		models.CommandCheckOut: {"checkout", "check-out", "退勤", "たいきん"},
		models.CommandStatus:   {"status", "確認", "勤怠", "勤怠確認"},
		models.CommandMenu:     {"menu", "メニュー", "help", "ヘルプ"},
	}
	for cmd, tokens := range aliases {
		for _, token := range tokens {
			table[strings.ToLower(token)] = cmd
		}
	}
	return table
}

// Dispatch processes one webhook batch. It returns after every event has
// been handled; callers acknowledge the webhook only after the join.
func (d *Dispatcher) Dispatch(ctx context.Context, events []models.Event) {
	var wg sync.WaitGroup
	for _, event := range events {
		wg.Add(1)
		go func(ev models.Event) {
			defer wg.Done()
			d.dispatchOne(ctx, ev)
		}(event)
	}
	wg.Wait()
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "panic while handling event",
				logging.EventKind(event.Type),
				logging.SourceID(event.Source.UserID),
				logging.Error(fmt.Errorf("panic: %v", r)),
			)
			metrics.EventsTotal.WithLabelValues(event.Type, "panic").Inc()
			d.reply(ctx, event.ReplyToken, d.handlers.GenericError())
		}
	}()

	switch event.Type {
	case models.EventKindMessage, models.EventKindPostback:
	default:
		metrics.EventsTotal.WithLabelValues(event.Type, "ignored").Inc()
		return
	}

	user, err := d.resolver.GetBySourceID(ctx, event.Source.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			// Expected for senders who have not linked their account.
			metrics.EventsTotal.WithLabelValues(event.Type, "onboarding").Inc()
			d.reply(ctx, event.ReplyToken, d.handlers.Onboarding())
			return
		}
		d.logger.ErrorContext(ctx, "failed to resolve linked user",
			logging.EventKind(event.Type),
			logging.SourceID(event.Source.UserID),
			logging.Error(err),
		)
		metrics.EventsTotal.WithLabelValues(event.Type, "error").Inc()
		d.reply(ctx, event.ReplyToken, d.handlers.GenericError())
		return
	}

	var cmd models.Command
	switch event.Type {
	case models.EventKindMessage:
		if event.Message == nil {
			metrics.EventsTotal.WithLabelValues(event.Type, "ignored").Inc()
			return
		}
		cmd = d.matchText(event.Message.Text)
		if cmd == models.CommandUnknown {
			metrics.EventsTotal.WithLabelValues(event.Type, "help").Inc()
			d.reply(ctx, event.ReplyToken, d.handlers.Help())
			return
		}
	case models.EventKindPostback:
		if event.Postback == nil {
			metrics.EventsTotal.WithLabelValues(event.Type, "ignored").Inc()
			return
		}
		cmd = matchPostback(event.Postback.Data)
		if cmd == models.CommandUnknown {
			// Unmatched postback keys are silently ignored.
			metrics.EventsTotal.WithLabelValues(event.Type, "ignored").Inc()
			return
		}
	}

	messages, err := d.route(ctx, cmd, user)
	if err != nil {
		d.logger.ErrorContext(ctx, "command handler failed",
			logging.EventKind(event.Type),
			logging.SourceID(event.Source.UserID),
			logging.Command(string(cmd)),
			logging.Error(err),
		)
		metrics.EventsTotal.WithLabelValues(event.Type, "error").Inc()
		d.reply(ctx, event.ReplyToken, d.handlers.GenericError())
		return
	}

	metrics.EventsTotal.WithLabelValues(event.Type, "ok").Inc()
	d.reply(ctx, event.ReplyToken, messages)
}

func (d *Dispatcher) route(ctx context.Context, cmd models.Command, user *models.LinkedUser) ([]messenger.Message, error) {
	switch cmd {
	case models.CommandCheckIn:
		return d.handlers.CheckIn(ctx, user)
	case models.CommandCheckOut:
		return d.handlers.CheckOut(ctx, user)
	case models.CommandStatus:
		return d.handlers.Status(ctx, user)
	case models.CommandMenu:
		return d.handlers.Menu(ctx, user)
	default:
		return nil, fmt.Errorf("no handler for command %q", cmd)
	}
}

// matchText resolves free message text to a canonical command. Matching
// is case-insensitive and alias-aware; unmatched text maps to
// CommandUnknown, which gets the help reply.
func (d *Dispatcher) matchText(text string) models.Command {
	normalized := strings.ToLower(strings.TrimSpace(text))
	return d.commands[normalized]
}

// matchPostback resolves a structured "action=<name>" key by exact match
// against the canonical command set.
func matchPostback(data string) models.Command {
	if !strings.HasPrefix(data, postbackPrefix) {
		return models.CommandUnknown
	}
	switch models.Command(data[len(postbackPrefix):]) {
	case models.CommandCheckIn:
		return models.CommandCheckIn
	case models.CommandCheckOut:
		return models.CommandCheckOut
	case models.CommandStatus:
		return models.CommandStatus
	case models.CommandMenu:
		return models.CommandMenu
	default:
		return models.CommandUnknown
	}
}

func (d *Dispatcher) reply(ctx context.Context, replyToken string, messages []messenger.Message) {
	if replyToken == "" || len(messages) == 0 {
		return
	}
	if err := d.sender.Reply(ctx, replyToken, messages...); err != nil {
		d.logger.ErrorContext(ctx, "failed to send reply", logging.Error(err))
	}
}
