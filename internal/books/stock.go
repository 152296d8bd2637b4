package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

// RegisterMonth is one register filtered to a calendar month, with column totals.
type RegisterMonth struct {
	Register ledger.Register `json:"register"`
	Month    string          `json:"month"`
	Entries  []ledger.Entry  `json:"entries"`
	Summary  ledger.Summary  `json:"summary"`
}

func loadRegister[V any](ctx context.Context, s *Service, register ledger.Register, res *Result[V]) (ledger.Ledger, error) {
	c, err := s.register(register)
	if err != nil {
		return nil, err
	}
	return load(ctx, s, string(register)+" register", c, func(ctx context.Context) (ledger.Ledger, error) {
		return s.store.ListEntries(ctx, register)
	}, res)
}

// Entries returns the whole register in insertion order.
func (s *Service) Entries(ctx context.Context, register ledger.Register) (Result[ledger.Ledger], error) {
	var res Result[ledger.Ledger]
	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	res.Value = l
	return res, nil
}

// SuggestOpening proposes the opening balance of a new entry for item: the
// closing balance of its most recent entry, or 0.
func (s *Service) SuggestOpening(ctx context.Context, register ledger.Register, item string) (Result[float64], error) {
	var res Result[float64]
	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	res.Value = ledger.LastClosingBalance(l, strings.TrimSpace(item))
	return res, nil
}

// AddEntry records a stock movement. A zero date means today.
func (s *Service) AddEntry(ctx context.Context, register ledger.Register, item string, f ledger.Fields) (Result[ledger.Entry], error) {
	return s.addEntry(ctx, register, item, f, false)
}

// CarryForwardEntry records a stock movement whose opening balance is the
// closing balance of the item's latest entry. The lookup and the insert happen
// under the same lock, so two concurrent calls chain instead of both starting
// from the same balance.
func (s *Service) CarryForwardEntry(ctx context.Context, register ledger.Register, item string, f ledger.Fields) (Result[ledger.Entry], error) {
	return s.addEntry(ctx, register, item, f, true)
}

func (s *Service) addEntry(ctx context.Context, register ledger.Register, item string, f ledger.Fields, carry bool) (Result[ledger.Entry], error) {
	var res Result[ledger.Entry]
	item = strings.TrimSpace(item)
	if item == "" {
		return res, apperror.NewValidation("item name is required")
	}
	f = s.withDate(f)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	if carry {
		f.Opening = ledger.LastClosingBalance(l, item)
	}
	id := ledger.NextID(l)
	if last := s.lastEntryID[register]; id <= last {
		id = last + 1
	}
	next, e := ledger.AddEntryWithID(l, id, register, item, f)
	s.lastEntryID[register] = e.ID
	c := s.registers[register]
	c.Set(next, s.now())

	warnNegative(e, &res)
	op := entryOp(e)
	persistHeld(ctx, s, c, entryKey(e.ID), op, &res, putEntry(e), func(ctx context.Context) error {
		return s.store.InsertEntry(ctx, e)
	})
	mirrorWrite(ctx, s, op, &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertEntry(ctx, e)
	})

	res.Value = e
	return res, nil
}

// EditEntry replaces the figures of an entry. Later entries of the same item
// keep their opening balances.
func (s *Service) EditEntry(ctx context.Context, register ledger.Register, id int64, f ledger.Fields) (Result[ledger.Entry], error) {
	var res Result[ledger.Entry]
	f = s.withDate(f)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	next, e, ok := ledger.EditEntry(l, id, f)
	if !ok {
		return res, apperror.NewNotFound("stock entry", id)
	}
	c := s.registers[register]
	c.Set(next, s.now())

	warnNegative(e, &res)
	op := entryOp(e)
	persistHeld(ctx, s, c, entryKey(e.ID), op, &res, putEntry(e), func(ctx context.Context) error {
		return s.store.UpdateEntry(ctx, e)
	})
	mirrorWrite(ctx, s, op, &res, func(ctx context.Context, m Mirror) error {
		return m.UpsertEntry(ctx, e)
	})

	res.Value = e
	return res, nil
}

// DeleteEntry removes an entry and returns it. Balances of other entries are not recomputed.
func (s *Service) DeleteEntry(ctx context.Context, register ledger.Register, id int64) (Result[ledger.Entry], error) {
	var res Result[ledger.Entry]

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	e, ok := ledger.Find(l, id)
	if !ok {
		return res, apperror.NewNotFound("stock entry", id)
	}
	next, _ := ledger.DeleteEntry(l, id)
	c := s.registers[register]
	c.Set(next, s.now())

	op := entryOp(e)
	drop := func(l ledger.Ledger) ledger.Ledger {
		next, _ := ledger.DeleteEntry(l, id)
		return next
	}
	persistHeld(ctx, s, c, entryKey(id), op, &res, drop, func(ctx context.Context) error {
		return s.store.DeleteEntry(ctx, register, id)
	})
	mirrorWrite(ctx, s, op, &res, func(ctx context.Context, m Mirror) error {
		return m.DeleteEntry(ctx, register, id)
	})

	res.Value = e
	return res, nil
}

// ItemBalance is the latest closing balance of one item in a register.
type ItemBalance struct {
	Item    string  `json:"item"`
	Closing float64 `json:"closing"`
}

// Items lists the distinct items of a register, sorted by name, with their latest closing balances.
func (s *Service) Items(ctx context.Context, register ledger.Register) (Result[[]ItemBalance], error) {
	var res Result[[]ItemBalance]
	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	names := ledger.Items(l)
	res.Value = make([]ItemBalance, 0, len(names))
	for _, name := range names {
		res.Value = append(res.Value, ItemBalance{Item: name, Closing: ledger.LastClosingBalance(l, name)})
	}
	return res, nil
}

// MonthlyRegister filters a register to the month of monthRef and totals it.
func (s *Service) MonthlyRegister(ctx context.Context, register ledger.Register, monthRef time.Time) (Result[RegisterMonth], error) {
	var res Result[RegisterMonth]
	l, err := loadRegister(ctx, s, register, &res)
	if err != nil {
		return res, err
	}
	entries := ledger.FilterByMonth(l, monthRef)
	res.Value = RegisterMonth{
		Register: register,
		Month:    ledger.FormatMonth(monthRef),
		Entries:  entries,
		Summary:  ledger.MonthlySummary(entries),
	}
	return res, nil
}

func (s *Service) withDate(f ledger.Fields) ledger.Fields {
	if f.Date.IsZero() {
		f.Date = s.now()
	}
	return f
}

func warnNegative(e ledger.Entry, res *Result[ledger.Entry]) {
	if e.Closing < 0 {
		res.warn(fmt.Sprintf("closing balance of %s is negative (%.2f)", e.ItemName, e.Closing))
	}
}

func entryOp(e ledger.Entry) string {
	return fmt.Sprintf("%s entry %d (%s)", e.Register, e.ID, e.ItemName)
}

func entryKey(id int64) string {
	return fmt.Sprintf("entry:%d", id)
}

func putEntry(e ledger.Entry) func(ledger.Ledger) ledger.Ledger {
	return func(l ledger.Ledger) ledger.Ledger {
		return ledger.PutEntry(l, e)
	}
}
