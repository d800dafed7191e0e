package core

import (
	"fmt"
	"time"
)

// The shop bills in two cycles per month:
//
//	days 06..19        → due on the 20th of the same month
//	days 01..05        → due on the 5th of the same month
//	days 20..month end → due on the 5th of the next month
//
// Day 20 opens the second cycle. That placement is deliberate and must not be
// moved into the first cycle.
const (
	firstCycleStart = 6
	firstCycleEnd   = 19
	firstCycleDue   = 20
	secondCycleDue  = 5
)

const (
	labelFirstCycle  = "Ciclo Vigente: 06 a 19 (Vence dia 20)"
	labelSecondCycle = "Ciclo Vigente: 21 a 05 (Vence dia 05)"
)

// ComputeDueDate maps the calendar date of t to the due date of its billing
// cycle. The result is midnight in t's location.
func ComputeDueDate(t time.Time) time.Time {
	year, month, day := t.Date()

	if inFirstCycle(day) {
		return time.Date(year, month, firstCycleDue, 0, 0, 0, 0, t.Location())
	}
	if day >= firstCycleDue {
		// time.Date normalizes December+1 into January of the next year.
		return time.Date(year, month+1, secondCycleDue, 0, 0, 0, 0, t.Location())
	}
	return time.Date(year, month, secondCycleDue, 0, 0, 0, 0, t.Location())
}

// CycleLabel names the billing window that is open on today.
func CycleLabel(today time.Time) string {
	if inFirstCycle(today.Day()) {
		return labelFirstCycle
	}
	return labelSecondCycle
}

// FormatDate renders a date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// IsOverdue reports whether now is past the due date of the cycle the last
// purchase fell into. A client that never bought is never overdue.
func IsOverdue(lastPurchase *time.Time, now time.Time) bool {
	if lastPurchase == nil {
		return false
	}
	due := ComputeDueDate(lastPurchase.In(now.Location()))
	return now.After(due)
}

func inFirstCycle(day int) bool {
	return day >= firstCycleStart && day <= firstCycleEnd
}
