// Package export renders stock registers and the price list for download,
// printing and archival.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

// RegisterSheet is a register month ready to be rendered.
type RegisterSheet struct {
	Register ledger.Register
	Month    string
	Entries  []ledger.Entry
	Summary  ledger.Summary
}

// WriteRegisterCSV writes one row per entry followed by a TOTAL row.
// Quantities are rounded to one decimal place.
func WriteRegisterCSV(w io.Writer, sheet RegisterSheet) error {
	cw := csv.NewWriter(w)
	header := []string{"Date", "Item", "Opening", sheet.Register.InboundLabel(), sheet.Register.OutboundLabel(), "Wastage", "Closing"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write register header: %w", err)
	}

	for _, e := range sheet.Entries {
		row := []string{
			ledger.FormatDay(e.Date),
			e.ItemName,
			qty(e.Opening),
			qty(e.Inbound),
			qty(e.Outbound),
			qty(e.Wastage),
			qty(e.Closing),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write register row %d: %w", e.ID, err)
		}
	}

	s := sheet.Summary
	total := []string{"TOTAL", "", qty(s.TotalOpening), qty(s.TotalInbound), qty(s.TotalOutbound), qty(s.TotalWastage), qty(s.TotalClosing)}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("write register totals: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WritePriceListCSV writes one costed row per recipe. The margin column is
// empty for recipes without a selling price.
func WritePriceListCSV(w io.Writer, rows []costing.Breakdown) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Recipe", "Ingredient Cost", "Overheads", "Final Cost", "Selling Price", "Margin %"}); err != nil {
		return fmt.Errorf("write price list header: %w", err)
	}
	for _, b := range rows {
		margin := ""
		if b.HasMargin {
			margin = money(b.MarginPercent)
		}
		row := []string{b.RecipeName, money(b.TotalIngredientCost), money(b.Overheads), money(b.FinalCost), money(b.SellingPrice), margin}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write price list row %q: %w", b.RecipeName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func qty(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
