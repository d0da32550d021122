package voice

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"khata/internal/budget"
	"khata/internal/log"
	"khata/internal/services"
	"khata/internal/storage"
	"khata/internal/summary"
)

var testNow = time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

type scriptedListener struct {
	utterances []string
}

func (l *scriptedListener) Listen(context.Context) (string, error) {
	if len(l.utterances) == 0 {
		return "", io.EOF
	}
	next := l.utterances[0]
	l.utterances = l.utterances[1:]
	return next, nil
}

type recordingSpeaker struct {
	spoken []string
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) error {
	s.spoken = append(s.spoken, text)
	return nil
}

func newTestSession(t *testing.T, utterances ...string) (*Session, *recordingSpeaker, *storage.MemoryRepository) {
	t.Helper()
	store := storage.NewMemoryRepository()
	budgets := budget.NewFileStore(filepath.Join(t.TempDir(), "budgets.json"))
	summaries := summary.NewService(store, time.Minute)
	logger := log.New(log.DefaultConfig())
	commands := services.NewCommandService(store, budgets, summaries, nil, logger)
	commands.WithClock(func() time.Time { return testNow })

	speaker := &recordingSpeaker{}
	session := NewSession(&scriptedListener{utterances: utterances}, speaker, commands, logger, 3)
	session.WithClock(func() time.Time { return testNow })
	return session, speaker, store
}

func spokenText(s *recordingSpeaker) string {
	return strings.Join(s.spoken, "\n")
}

func TestSessionRecordsExpense(t *testing.T) {
	session, speaker, store := newTestSession(t, "spent 250 on groceries")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(spokenText(speaker), "₹250") {
		t.Errorf("spoken = %q, want confirmation", spokenText(speaker))
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 1 || recent[0].Category != "food" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestSessionEndsOnExit(t *testing.T) {
	session, speaker, _ := newTestSession(t, "exit", "spent 100 on food")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(spokenText(speaker), "Goodbye!") {
		t.Errorf("spoken = %q, want goodbye", spokenText(speaker))
	}
	// The utterance after exit is never processed.
	if strings.Contains(spokenText(speaker), "₹100") {
		t.Error("session kept running after exit")
	}
}

func TestSessionEndsOnListenerEOF(t *testing.T) {
	session, _, _ := newTestSession(t)
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run on empty listener: %v", err)
	}
}

func TestSessionFillsMissingAmount(t *testing.T) {
	session, speaker, store := newTestSession(t, "add an expense for groceries", "250 rupees")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(spokenText(speaker), "How much did you spend?") {
		t.Errorf("spoken = %q, want the re-prompt", spokenText(speaker))
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 1 || recent[0].Amount.Cents != 25000 {
		t.Fatalf("recent = %+v, want the filled-in ₹250", recent)
	}
	if recent[0].Category != "food" {
		t.Errorf("category = %q, want food from the original utterance", recent[0].Category)
	}
}

func TestSessionFillsBareNumber(t *testing.T) {
	session, _, store := newTestSession(t, "add an expense for groceries", "90")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 1 || recent[0].Amount.Cents != 9000 {
		t.Fatalf("recent = %+v, want ₹90 from the bare answer", recent)
	}
}

func TestSessionGivesUpAfterMaxAttempts(t *testing.T) {
	session, speaker, store := newTestSession(t,
		"add an expense for groceries", "um", "hmm", "no idea")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(spokenText(speaker), "Let's start that one over.") {
		t.Errorf("spoken = %q, want the give-up line", spokenText(speaker))
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 0 {
		t.Error("nothing should be recorded when slots stay unfilled")
	}
}

func TestSessionFillsBudgetCategory(t *testing.T) {
	session, speaker, _ := newTestSession(t, "set budget to 4000", "vacation")

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(spokenText(speaker), "Budget for vacation set to ₹4000") {
		t.Errorf("spoken = %q, want the budget confirmation", spokenText(speaker))
	}
}
