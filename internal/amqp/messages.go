package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage announces that an expense was saved locally.
// It carries only the ID; the worker fetches the full row from the
// database before exporting or evaluating budgets.
type ExpenseRecordedMessage struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(id int64, category string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:        id,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
