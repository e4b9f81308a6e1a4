package monitor

import "time"

type Status struct {
	PostgreSQL      bool      `json:"postgresql"`
	Redis           bool      `json:"redis"`
	Attachments     bool      `json:"attachments"`
	AttachmentCount int       `json:"attachment_count"`
	LastCheck       time.Time `json:"last_check"`
}
