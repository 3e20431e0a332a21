package amqp

import (
	"encoding/json"
	"time"
)

// Report kinds carried on the queue.
const (
	ReportKindMonthly = "monthly"
	ReportKindDebts   = "debts"
)

// ReportRequestMessage asks the report worker to render and email one
// report. It carries only identifiers; the worker reads the ledger itself
// so the email always reflects current store contents.
type ReportRequestMessage struct {
	UserID       int64     `json:"user_id"`
	Kind         string    `json:"kind"`
	Month        int       `json:"month,omitempty"`
	Year         int       `json:"year,omitempty"`
	Counterparty string    `json:"counterparty,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewMonthlyReportRequest builds a request for the monthly recap.
func NewMonthlyReportRequest(userID int64, month, year int) *ReportRequestMessage {
	return &ReportRequestMessage{
		UserID:    userID,
		Kind:      ReportKindMonthly,
		Month:     month,
		Year:      year,
		Timestamp: time.Now(),
	}
}

// NewDebtReportRequest builds a request for the counterparty recap.
func NewDebtReportRequest(userID int64, counterparty string) *ReportRequestMessage {
	return &ReportRequestMessage{
		UserID:       userID,
		Kind:         ReportKindDebts,
		Counterparty: counterparty,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestFromJSON creates a message from JSON bytes.
func ReportRequestFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
