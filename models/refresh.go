package models

import "time"

// RefreshResult reports one run of the market price refresh.
type RefreshResult struct {
	JobID      string    `json:"job_id"`
	Date       Date      `json:"date"`
	Quotes     int       `json:"quotes"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Missing    int       `json:"missing"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
