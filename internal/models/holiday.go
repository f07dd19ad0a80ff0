package models

import "time"

// HolidayScope qualifies how widely a public holiday applies.
type HolidayScope string

const (
	ScopeNational HolidayScope = "NATIONAL"
	ScopeRegional HolidayScope = "REGIONAL"
	ScopeLocal    HolidayScope = "LOCAL"
)

// Valid returns true when the scope is a supported value.
func (s HolidayScope) Valid() bool {
	switch s {
	case ScopeNational, ScopeRegional, ScopeLocal:
		return true
	default:
		return false
	}
}

// Holiday is one cached public-holiday row.
type Holiday struct {
	Date            time.Time    `db:"date" json:"date"`
	Name            string       `db:"name" json:"name"`
	CountryCode     string       `db:"country_code" json:"country_code"`
	SubdivisionCode string       `db:"subdivision_code" json:"subdivision_code"`
	Scope           HolidayScope `db:"scope" json:"scope"`
	Source          string       `db:"source" json:"source"`
	FetchedAt       time.Time    `db:"fetched_at" json:"fetched_at"`
}

// Holiday sync mark statuses.
const (
	SyncStatusOK    = "OK"
	SyncStatusError = "ERROR"
)

// HolidaySync records the outcome of the last sync attempt for a
// country/subdivision/year triple.
type HolidaySync struct {
	CountryCode     string    `db:"country_code" json:"country_code"`
	SubdivisionCode string    `db:"subdivision_code" json:"subdivision_code"`
	Year            int       `db:"year" json:"year"`
	SyncedAt        time.Time `db:"synced_at" json:"synced_at"`
	Status          string    `db:"status" json:"status"`
	ErrorMessage    *string   `db:"error_message" json:"error_message,omitempty"`
}
