package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"extracto/internal/core"
	"extracto/internal/statement"
)

// StatementRequestMessage asks a worker to render the statement for a period.
// With Monthly set the period is split on calendar months, one document each.
type StatementRequestMessage struct {
	JobID       string    `json:"job_id"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	Layout      string    `json:"layout,omitempty"`
	Monthly     bool      `json:"monthly,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewStatementRequestMessage creates a request with a fresh job id.
func NewStatementRequestMessage(p core.Period, layout string, monthly bool) *StatementRequestMessage {
	return &StatementRequestMessage{
		JobID:       uuid.NewString(),
		PeriodStart: p.Start.ISO(),
		PeriodEnd:   p.End.ISO(),
		Layout:      layout,
		Monthly:     monthly,
		Timestamp:   time.Now(),
	}
}

// Period parses and validates the requested period.
func (m *StatementRequestMessage) Period() (core.Period, error) {
	start, err := core.ParseDate(m.PeriodStart)
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: %w", core.ErrInvalidPeriod, err)
	}
	end, err := core.ParseDate(m.PeriodEnd)
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: %w", core.ErrInvalidPeriod, err)
	}
	return core.NewPeriod(start, end)
}

// ToJSON converts the message to JSON bytes
func (m *StatementRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementRequestMessageFromJSON decodes a message and checks that it names
// a job, a valid period and a known layout.
func StatementRequestMessageFromJSON(data []byte) (*StatementRequestMessage, error) {
	var msg StatementRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return nil, fmt.Errorf("missing job_id")
	}
	if _, err := msg.Period(); err != nil {
		return nil, err
	}
	if _, err := statement.LayoutByName(msg.Layout); err != nil {
		return nil, err
	}
	return &msg, nil
}
