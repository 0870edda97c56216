package domain

import (
	"fmt"
	"strings"
	"time"
)

// Reminder asks a plugin to nudge one member about one overdue loan.
type Reminder struct {
	LoanID      string
	BookTitle   string
	MemberName  string
	MemberEmail string
	DueAt       time.Time
	DaysOverdue int
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.LoanID) == "" {
		return fmt.Errorf("reminder loan id is required")
	}
	if r.DueAt.IsZero() {
		return fmt.Errorf("reminder %s: due date is required", r.LoanID)
	}
	if r.DaysOverdue < 1 {
		return fmt.Errorf("reminder %s: loan is not overdue", r.LoanID)
	}
	return nil
}

// Failure is a reminder the plugin could not deliver.
type Failure struct {
	LoanID string
	Reason string
}

// Delivery summarizes one SendReminders call.
type Delivery struct {
	Delivered int
	Failures  []Failure
}
