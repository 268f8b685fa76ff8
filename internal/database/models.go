package database

import "time"

// Query outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxHistory caps how many records a history listing may return.
const MaxHistory = 50

// QueryRecord is one immutable row per lookup attempt. Records are only
// ever inserted; nothing updates or deletes them.
type QueryRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CaseType       string    `json:"case_type" gorm:"not null"`
	CaseNumber     string    `json:"case_number" gorm:"not null"`
	FilingYear     string    `json:"filing_year" gorm:"not null"`
	QueryTimestamp time.Time `json:"query_timestamp" gorm:"autoCreateTime"`
	RawResponse    string    `json:"raw_response" gorm:"type:text"`
	ParsedData     string    `json:"parsed_data" gorm:"type:text"`
	Status         string    `json:"status"`
}

func (QueryRecord) TableName() string {
	return "queries"
}

// QuerySummary is the read model for the history listing; it omits the
// raw and parsed payloads.
type QuerySummary struct {
	CaseType       string    `json:"case_type"`
	CaseNumber     string    `json:"case_number"`
	FilingYear     string    `json:"filing_year"`
	QueryTimestamp time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}
