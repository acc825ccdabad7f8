// Package models holds the bookkeeping entities and the snapshot layout they
// are persisted in.
package models

import "time"

// DateLayout is the calendar-date form used on the wire and in comparisons.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// InRange reports whether t lies within [start, end], compared as calendar dates.
func InRange(t, start, end time.Time) bool {
	d := Day(t)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

// Snapshot is the whole bookkeeping state: the five collections, loaded
// wholesale at start and written wholesale after every mutation.
type Snapshot struct {
	Products []Product `json:"products"`
	Clients  []Client  `json:"clients"`
	Invoices []Invoice `json:"invoices"`
	Payments []Payment `json:"payments"`
	Expenses []Expense `json:"expenses"`
}

// Clone returns a deep copy; invoice items are copied too.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Products: append([]Product(nil), s.Products...),
		Clients:  append([]Client(nil), s.Clients...),
		Invoices: make([]Invoice, len(s.Invoices)),
		Payments: append([]Payment(nil), s.Payments...),
		Expenses: append([]Expense(nil), s.Expenses...),
	}
	for i, inv := range s.Invoices {
		out.Invoices[i] = inv.Clone()
	}
	return out
}
