package model

import (
	"fmt"
	"time"
)

// Class is a recurring weekly class definition. Sessions are materialized
// from it for concrete dates.
type Class struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ProfessorID string      `json:"professor_id"`
	CourtID     string      `json:"court_id"`
	Level       PlayerLevel `json:"level"`
	DayOfWeek   int         `json:"day_of_week"` // 0-6, Sunday first
	StartTime   string      `json:"start_time"`  // HH:MM
	EndTime     string      `json:"end_time"`    // HH:MM
	MaxStudents int         `json:"max_students"`
	IsActive    bool        `json:"is_active"`
}

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// ClassSession is one materialized occurrence of a Class on a concrete date.
type ClassSession struct {
	ID      string        `json:"id"`
	ClassID string        `json:"class_id"`
	Date    time.Time     `json:"date"`
	Status  SessionStatus `json:"status"`
	Notes   string        `json:"notes,omitempty"`

	// Joined for convenience, not stored on the row.
	Class *Class `json:"class,omitempty"`
}

// SessionStartAt combines a session date with a HH:MM class start time.
func SessionStartAt(date time.Time, startTime string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start time %q: %w", startTime, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// StartAt returns the session's start instant using the joined class
// definition.
func (s *ClassSession) StartAt(loc *time.Location) (time.Time, error) {
	if s.Class == nil {
		return time.Time{}, fmt.Errorf("session %s has no class loaded", s.ID)
	}
	return SessionStartAt(s.Date, s.Class.StartTime, loc)
}
