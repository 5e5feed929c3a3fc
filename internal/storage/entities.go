package storage

import "time"

// Setting is one key/value record; values are JSON documents owned by the caller.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type Result struct {
	ID         string
	TestID     string
	Label      string
	Category   string
	Eye        string
	Value      string
	Unit       string
	Notes      string
	DistanceCM *float64
	RecordedAt time.Time
	CreatedAt  time.Time
}

type ResultListFilter struct {
	Category string
	Eye      string
	Text     string
	Limit    int
	Offset   int
}

// Checkin is one mood entry. Day is the local calendar date as YYYY-MM-DD.
type Checkin struct {
	Day       string
	Mood      int
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
