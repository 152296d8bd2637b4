package ledger

import (
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	if err != nil {
		t.Fatalf("parse day %q: %v", s, err)
	}
	return d
}

func TestComputeClosing_AllowsNegative(t *testing.T) {
	if got := ComputeClosing(10, 5, 20, 0); got != -5 {
		t.Fatalf("closing = %v, want -5", got)
	}
	if got := ComputeClosing(10, 5, 3, 2); got != 10 {
		t.Fatalf("closing with wastage = %v, want 10", got)
	}
}

func TestLastClosingBalance_NoEntries(t *testing.T) {
	if got := LastClosingBalance(nil, "Putnalu Podi"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestLastClosingBalance_PicksMostRecentDate(t *testing.T) {
	var l Ledger
	// Inserted out of order on purpose.
	l, _ = AddEntry(l, RegisterPodi, "Kandi Podi", Fields{Date: day(t, "2024-01-20"), Opening: 0, Inbound: 30})
	l, _ = AddEntry(l, RegisterPodi, "Kandi Podi", Fields{Date: day(t, "2024-01-05"), Opening: 0, Inbound: 12})
	l, _ = AddEntry(l, RegisterPodi, "Other Podi", Fields{Date: day(t, "2024-02-01"), Inbound: 99})

	if got := LastClosingBalance(l, "Kandi Podi"); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
}

func TestLastClosingBalance_SameDateLaterInsertionWins(t *testing.T) {
	var l Ledger
	l, _ = AddEntry(l, RegisterRaw, "Urad Dal", Fields{Date: day(t, "2024-03-02"), Inbound: 10})
	l, _ = AddEntry(l, RegisterRaw, "Urad Dal", Fields{Date: day(t, "2024-03-02"), Inbound: 25})

	if got := LastClosingBalance(l, "Urad Dal"); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}

func TestPutnaluPodiScenario(t *testing.T) {
	var l Ledger
	l, a := AddEntry(l, RegisterPodi, "Putnalu Podi", Fields{Date: day(t, "2024-02-01"), Opening: 0, Inbound: 50, Outbound: 10})
	if a.Closing != 40 {
		t.Fatalf("entry A closing = %v, want 40", a.Closing)
	}

	opening := LastClosingBalance(l, "Putnalu Podi")
	if opening != 40 {
		t.Fatalf("suggested opening = %v, want 40", opening)
	}

	l, b := AddEntry(l, RegisterPodi, "Putnalu Podi", Fields{Date: day(t, "2024-02-10"), Opening: opening, Inbound: 20, Outbound: 15})
	if b.Closing != 45 {
		t.Fatalf("entry B closing = %v, want 45", b.Closing)
	}
	if b.ID != a.ID+1 {
		t.Fatalf("expected sequential ids, got %d then %d", a.ID, b.ID)
	}
	if len(l) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(l))
	}
}

func TestEditEntry_DoesNotCascade(t *testing.T) {
	var l Ledger
	l, a := AddEntry(l, RegisterPodi, "Putnalu Podi", Fields{Date: day(t, "2024-02-01"), Inbound: 50, Outbound: 10})
	l, b := AddEntry(l, RegisterPodi, "Putnalu Podi", Fields{Date: day(t, "2024-02-10"), Opening: 40, Inbound: 20, Outbound: 15})

	edited, updated, ok := EditEntry(l, a.ID, Fields{Date: a.Date, Opening: a.Opening, Inbound: 80, Outbound: a.Outbound})
	if !ok {
		t.Fatalf("expected edit to find entry %d", a.ID)
	}
	if updated.Closing != 70 {
		t.Fatalf("edited closing = %v, want 70", updated.Closing)
	}

	after, _ := Find(edited, b.ID)
	if after.Opening != 40 || after.Closing != 45 {
		t.Fatalf("later entry must not be re-chained: %+v", after)
	}
	before, _ := Find(l, a.ID)
	if before.Closing != 40 {
		t.Fatalf("input ledger was mutated: %+v", before)
	}
}

func TestEditEntry_UnknownID(t *testing.T) {
	l, _ := AddEntry(nil, RegisterRaw, "Salt", Fields{Date: day(t, "2024-02-01"), Inbound: 5})
	if _, _, ok := EditEntry(l, 99, Fields{}); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestDeleteEntry_NoRecompute(t *testing.T) {
	var l Ledger
	l, a := AddEntry(l, RegisterPodi, "Kandi Podi", Fields{Date: day(t, "2024-02-01"), Inbound: 10})
	l, b := AddEntry(l, RegisterPodi, "Kandi Podi", Fields{Date: day(t, "2024-02-02"), Opening: 10, Outbound: 4})

	next, ok := DeleteEntry(l, a.ID)
	if !ok || len(next) != 1 {
		t.Fatalf("delete failed: ok=%v len=%d", ok, len(next))
	}
	if next[0].ID != b.ID || next[0].Opening != 10 || next[0].Closing != 6 {
		t.Fatalf("remaining entry changed: %+v", next[0])
	}
	if len(l) != 2 {
		t.Fatalf("input ledger was mutated")
	}
	if _, ok := DeleteEntry(next, a.ID); ok {
		t.Fatalf("second delete must miss")
	}
}

func TestAddEntry_NormalisesDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	_, e := AddEntry(nil, RegisterPodi, "Kandi Podi", Fields{Date: time.Date(2024, 2, 1, 21, 30, 0, 0, ist)})

	if !e.Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day: %v", e.Date)
	}
}

func TestForItemAndItems(t *testing.T) {
	var l Ledger
	l, _ = AddEntry(l, RegisterRaw, "Red Chilies", Fields{Date: day(t, "2024-02-09")})
	l, _ = AddEntry(l, RegisterRaw, "Coriander Seeds", Fields{Date: day(t, "2024-02-01")})
	l, _ = AddEntry(l, RegisterRaw, "Red Chilies", Fields{Date: day(t, "2024-02-03")})

	chilies := ForItem(l, "Red Chilies")
	if len(chilies) != 2 || FormatDay(chilies[0].Date) != "2024-02-03" {
		t.Fatalf("unexpected chronological view: %+v", chilies)
	}

	items := Items(l)
	if len(items) != 2 || items[0] != "Coriander Seeds" || items[1] != "Red Chilies" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseRegister(t *testing.T) {
	if r, err := ParseRegister("RAW"); err != nil || r != RegisterRaw {
		t.Fatalf("ParseRegister(RAW) = %q, %v", r, err)
	}
	if _, err := ParseRegister("finished"); err == nil {
		t.Fatalf("expected error for unknown register")
	}
}

func TestPutEntry_ReplacesOrAppends(t *testing.T) {
	l, first := AddEntry(nil, RegisterPodi, "Putnalu Podi", Fields{Date: day(t, "2024-02-01"), Opening: 10, Inbound: 50, Outbound: 20})

	edited := first
	edited.Closing = 99
	replaced := PutEntry(l, edited)
	if len(replaced) != 1 || replaced[0].Closing != 99 || l[0].Closing != 40 {
		t.Fatalf("replace: got %+v, original %+v", replaced, l)
	}

	other := Entry{ID: 5, Register: RegisterPodi, ItemName: "Karam Podi", Date: day(t, "2024-02-02"), Closing: 3}
	appended := PutEntry(replaced, other)
	if len(appended) != 2 || appended[1].ID != 5 || len(replaced) != 1 {
		t.Fatalf("append: got %+v", appended)
	}
}

func TestAddEntryWithID_UsesGivenID(t *testing.T) {
	l, _ := AddEntry(nil, RegisterRaw, "Toor Dal", Fields{Date: day(t, "2024-02-01"), Inbound: 20})
	next, e := AddEntryWithID(l, 7, RegisterRaw, "Toor Dal", Fields{Date: day(t, "2024-02-02"), Opening: 20, Outbound: 5})
	if e.ID != 7 || e.Closing != 15 || len(next) != 2 || NextID(next) != 8 {
		t.Fatalf("unexpected entry %+v, ledger %+v", e, next)
	}
}
