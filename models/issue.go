package models

import (
	"time"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole        IssueCategory = "pothole"
	StreetlightOut IssueCategory = "streetlight_out"
	TrashOverflow  IssueCategory = "trash_overflow"
	Graffiti       IssueCategory = "graffiti"
)

// Categories lists the accepted categories in display order.
var Categories = []IssueCategory{Pothole, StreetlightOut, TrashOverflow, Graffiti}

var categoryLabels = map[IssueCategory]string{
	Pothole:        "Pothole",
	StreetlightOut: "Streetlight Out",
	TrashOverflow:  "Trash Overflow",
	Graffiti:       "Graffiti",
}

func (c IssueCategory) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name, or the raw value for unknown categories.
func (c IssueCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IssueStatus enum
type IssueStatus string

const (
	Submitted    IssueStatus = "Submitted"
	Acknowledged IssueStatus = "Acknowledged"
	InProgress   IssueStatus = "In Progress"
	Resolved     IssueStatus = "Resolved"
)

var Statuses = []IssueStatus{Submitted, Acknowledged, InProgress, Resolved}

func (s IssueStatus) IsValid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "Low"
	Medium IssuePriority = "Medium"
	High   IssuePriority = "High"
)

var Priorities = []IssuePriority{Low, Medium, High}

func (p IssuePriority) IsValid() bool {
	return p.Rank() > 0
}

// Rank orders priorities for sorting; 0 means unknown.
func (p IssuePriority) Rank() int {
	switch p {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}
	return 0
}

const (
	DefaultPriority = Medium
	DefaultReason   = "Awaiting review"
)

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `bson:"lat" firestore:"lat" json:"lat"`
	Lng float64 `bson:"lng" firestore:"lng" json:"lng"`
}

// IssueReport represents a civic issue submitted by a citizen
type IssueReport struct {
	ID          string        `bson:"-" firestore:"-" json:"id"`
	Description string        `bson:"description" firestore:"description" json:"description"`
	Category    IssueCategory `bson:"category" firestore:"category" json:"category"`
	Location    Location      `bson:"location" firestore:"location" json:"location"`
	Address     string        `bson:"address" firestore:"address" json:"address"`
	PhotoURL    *string       `bson:"photoUrl" firestore:"photoUrl" json:"photoUrl"`
	Status      IssueStatus   `bson:"status" firestore:"status" json:"status"`
	Priority    IssuePriority `bson:"priority" firestore:"priority" json:"priority"`
	Reason      string        `bson:"reason" firestore:"reason" json:"reason"`
	CreatedAt   time.Time     `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}
