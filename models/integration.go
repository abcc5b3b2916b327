package models

import "time"

// Integration is one configured external channel (e.g. a Telegram bot plus a
// target chat). Settings hold channel-specific targets, Credentials the secrets.
type Integration struct {
	ID          string
	Type        string
	Name        string
	IsActive    bool
	Settings    map[string]string
	Credentials map[string]string
	CreatedAt   time.Time
}
