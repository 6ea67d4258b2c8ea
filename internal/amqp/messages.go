package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names the kind of change a BudgetChangedMessage reports.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionActivated Action = "activated"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionActivated:
		return true
	}
	return false
}

// BudgetChangedMessage carries only the budget id; consumers reload the
// budget from the store.
type BudgetChangedMessage struct {
	BudgetID  uuid.UUID `json:"budgetId"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetChangedMessage(budgetID uuid.UUID, action Action) *BudgetChangedMessage {
	return &BudgetChangedMessage{
		BudgetID:  budgetID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *BudgetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetChangedMessageFromJSON(data []byte) (*BudgetChangedMessage, error) {
	var msg BudgetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	return &msg, nil
}
