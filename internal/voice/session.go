// Package voice runs the interactive command loop: listen, interpret,
// execute, speak the reply.
package voice

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"khata/internal/intent"
	"khata/internal/log"
	"khata/internal/services"
)

// Listener yields one transcribed utterance per call. io.EOF means the
// source is exhausted and the session should end.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker renders one reply to the user.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type Session struct {
	listener    Listener
	speaker     Speaker
	commands    *services.CommandService
	logger      *log.Logger
	maxAttempts int
	now         func() time.Time
}

func NewSession(listener Listener, speaker Speaker, commands *services.CommandService, logger *log.Logger, maxAttempts int) *Session {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Session{
		listener:    listener,
		speaker:     speaker,
		commands:    commands,
		logger:      logger.WithComponent(log.ComponentVoice),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Run drives the loop until exit is requested, the listener runs dry, or
// the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.speak(ctx, "Listening. Say 'help' for examples.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := s.listener.Listen(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		in := intent.ParseAt(text, s.now())
		s.logger.InfoContext(ctx, "Utterance parsed",
			log.FieldAction, string(in.Action),
			log.FieldTranscript, text)

		result, err := s.commands.Execute(ctx, in)
		if err != nil {
			s.logger.ErrorContext(ctx, "Command failed", log.FieldError, err)
			s.speak(ctx, "Something went wrong, please try again.")
			continue
		}

		if result.Missing != "" {
			result, err = s.fillMissing(ctx, in, result)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		s.speak(ctx, result.Reply)
		if result.Exit {
			return nil
		}
	}
}

// fillMissing re-prompts for the slot the service asked for, merging each
// follow-up into the original command. Gives up after maxAttempts.
func (s *Session) fillMissing(ctx context.Context, in intent.Intent, result services.Result) (services.Result, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		s.speak(ctx, result.Reply)

		text, err := s.listener.Listen(ctx)
		if err != nil {
			return result, err
		}

		in = mergeSlot(in, result.Missing, text, s.now())
		next, err := s.commands.Execute(ctx, in)
		if err != nil {
			return result, err
		}
		result = next
		if result.Missing == "" {
			return result, nil
		}
	}
	result.Reply = "Let's start that one over."
	result.Missing = ""
	return result, nil
}

// mergeSlot folds a follow-up utterance into the pending intent. Bare
// answers are common here ("250", "food"), so the follow-up gets looser
// treatment than a full command.
func mergeSlot(in intent.Intent, missing, followup string, now time.Time) intent.Intent {
	parsed := intent.ParseAt(followup, now)
	switch missing {
	case "amount":
		if parsed.Amount != nil {
			in.Amount = parsed.Amount
		} else if v, err := strconv.ParseFloat(strings.TrimSpace(followup), 64); err == nil {
			in.Amount = &v
		}
	case "category":
		if parsed.Category != "" && parsed.Category != intent.CategoryFallback {
			in.Category = parsed.Category
		} else if word := firstWord(followup); word != "" {
			in.Category = word
		}
	}
	return in
}

func firstWord(text string) string {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		trimmed := strings.Trim(field, ".,!?")
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (s *Session) speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := s.speaker.Speak(ctx, text); err != nil {
		s.logger.WarnContext(ctx, "Speak failed", log.FieldError, err)
	}
}
