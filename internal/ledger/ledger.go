// Package ledger derives closing balances for the monthly stock registers.
//
// A Ledger is an ordered list of entries; slice order is insertion order.
// Every operation returns a new Ledger and leaves its input untouched, so a
// snapshot handed to a renderer is never modified underneath it.
//
// Entries are independent records: editing or deleting an entry never
// re-chains the opening balances of later entries for the same item.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Register identifies which stock register an entry belongs to.
type Register string

const (
	// RegisterPodi tracks finished products: inbound is production, outbound is sales.
	RegisterPodi Register = "podi"
	// RegisterRaw tracks raw materials: inbound is purchase, outbound is usage.
	RegisterRaw Register = "raw"
)

// Registers lists every known register.
var Registers = []Register{RegisterPodi, RegisterRaw}

// ParseRegister validates a register name.
func ParseRegister(s string) (Register, error) {
	switch r := Register(strings.ToLower(strings.TrimSpace(s))); r {
	case RegisterPodi, RegisterRaw:
		return r, nil
	default:
		return "", fmt.Errorf("unknown register %q", s)
	}
}

// Title is the heading printed on the register.
func (r Register) Title() string {
	if r == RegisterRaw {
		return "Raw Material Register"
	}
	return "Podi Stock Register"
}

// InboundLabel is the display name of the inbound column.
func (r Register) InboundLabel() string {
	if r == RegisterRaw {
		return "Purchase"
	}
	return "Production"
}

// OutboundLabel is the display name of the outbound column.
func (r Register) OutboundLabel() string {
	if r == RegisterRaw {
		return "Usage"
	}
	return "Sales"
}

// Entry is one dated stock movement for an item.
type Entry struct {
	ID       int64     `json:"id"`
	Register Register  `json:"register"`
	ItemName string    `json:"item_name"`
	Date     time.Time `json:"date"`
	Opening  float64   `json:"opening"`
	Inbound  float64   `json:"inbound"`
	Outbound float64   `json:"outbound"`
	Wastage  float64   `json:"wastage"`
	Closing  float64   `json:"closing"`
}

// Fields holds the user-editable part of an entry.
type Fields struct {
	Date     time.Time
	Opening  float64
	Inbound  float64
	Outbound float64
	Wastage  float64
}

// Ledger is an insertion-ordered list of entries.
type Ledger []Entry

// ComputeClosing returns opening + inbound - outbound - wastage. Negative results are kept.
func ComputeClosing(opening, inbound, outbound, wastage float64) float64 {
	return opening + inbound - outbound - wastage
}

// NextID returns the largest entry id plus one.
func NextID(l Ledger) int64 {
	var highest int64
	for _, e := range l {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest + 1
}

// LastClosingBalance returns the closing balance of the most recent entry for
// itemName, or 0 if the item has no entries. Entries sharing the latest date
// are resolved in favour of the one inserted last.
func LastClosingBalance(l Ledger, itemName string) float64 {
	history := ForItem(l, itemName)
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Closing
}

// AddEntry appends a new entry with a fresh id and a derived closing balance.
func AddEntry(l Ledger, register Register, itemName string, f Fields) (Ledger, Entry) {
	return AddEntryWithID(l, NextID(l), register, itemName, f)
}

// AddEntryWithID is AddEntry with a caller-chosen id, for callers that keep
// their own id sequence. The id must not be in use.
func AddEntryWithID(l Ledger, id int64, register Register, itemName string, f Fields) (Ledger, Entry) {
	e := Entry{
		ID:       id,
		Register: register,
		ItemName: itemName,
	}
	e = apply(e, f)

	next := make(Ledger, len(l), len(l)+1)
	copy(next, l)
	return append(next, e), e
}

// PutEntry stores e as is, replacing the entry with the same id or appending it.
func PutEntry(l Ledger, e Entry) Ledger {
	idx := l.index(e.ID)
	if idx < 0 {
		next := make(Ledger, len(l), len(l)+1)
		copy(next, l)
		return append(next, e)
	}
	next := make(Ledger, len(l))
	copy(next, l)
	next[idx] = e
	return next
}

// EditEntry replaces the mutable fields of the entry with id and recomputes its closing balance.
// The bool is false when no entry has that id.
func EditEntry(l Ledger, id int64, f Fields) (Ledger, Entry, bool) {
	idx := l.index(id)
	if idx < 0 {
		return l, Entry{}, false
	}
	next := make(Ledger, len(l))
	copy(next, l)
	next[idx] = apply(next[idx], f)
	return next, next[idx], true
}

// DeleteEntry removes the entry with id. The bool is false when no entry has that id.
func DeleteEntry(l Ledger, id int64) (Ledger, bool) {
	idx := l.index(id)
	if idx < 0 {
		return l, false
	}
	next := make(Ledger, 0, len(l)-1)
	next = append(next, l[:idx]...)
	return append(next, l[idx+1:]...), true
}

// Find returns the entry with id.
func Find(l Ledger, id int64) (Entry, bool) {
	idx := l.index(id)
	if idx < 0 {
		return Entry{}, false
	}
	return l[idx], true
}

func (l Ledger) index(id int64) int {
	for i, e := range l {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func apply(e Entry, f Fields) Entry {
	e.Date = Day(f.Date)
	e.Opening = f.Opening
	e.Inbound = f.Inbound
	e.Outbound = f.Outbound
	e.Wastage = f.Wastage
	e.Closing = ComputeClosing(f.Opening, f.Inbound, f.Outbound, f.Wastage)
	return e
}

// ForItem returns the entries of itemName in chronological order, ties kept in insertion order.
func ForItem(l Ledger, itemName string) []Entry {
	out := make([]Entry, 0)
	for _, e := range l {
		if e.ItemName == itemName {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Items returns the distinct item names in the ledger, sorted.
func Items(l Ledger) []string {
	seen := make(map[string]struct{}, len(l))
	names := make([]string, 0)
	for _, e := range l {
		if _, ok := seen[e.ItemName]; ok {
			continue
		}
		seen[e.ItemName] = struct{}{}
		names = append(names, e.ItemName)
	}
	sort.Strings(names)
	return names
}

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// FormatDay renders a date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseMonth parses a YYYY-MM month reference into the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM: %w", err)
	}
	return t, nil
}

// FormatMonth renders the month of t as YYYY-MM.
func FormatMonth(t time.Time) string {
	return t.Format(monthLayout)
}
