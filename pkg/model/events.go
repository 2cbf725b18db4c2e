package model

import "time"

type QuoteStatusEvent struct {
	TenantID     string    `json:"tenant_id"`
	IntegratorID string    `json:"integrator_id"`
	QuoteID      string    `json:"quote_id"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

type FeeAccruedEvent struct {
	IntegratorID string    `json:"integrator_id"`
	QuoteID      string    `json:"quote_id"`
	Amount       string    `json:"amount"`
	Token        string    `json:"token"`
	Bps          int       `json:"bps"`
	Recipient    string    `json:"recipient"`
	Timestamp    time.Time `json:"timestamp"`
}
