package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseRecordedMessage(t *testing.T) {
	msg := NewExpenseRecordedMessage(42, "food")
	if msg.ID != 42 || msg.Category != "food" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestExpenseRecordedMessageJSON(t *testing.T) {
	msg := &ExpenseRecordedMessage{
		ID:        7,
		Category:  "transport",
		Timestamp: time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := ExpenseRecordedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.ID != msg.ID || parsed.Category != msg.Category || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("roundtrip = %+v, want %+v", parsed, msg)
	}
}

func TestExpenseRecordedMessageInvalidJSON(t *testing.T) {
	if _, err := ExpenseRecordedMessageFromJSON([]byte(`{"id": "seven"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
