package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Simplici0/spicebooks/internal/ledger"
)

//go:embed templates/*.html
var templateFS embed.FS

var printTemplate = template.Must(template.New("register_print.html").Funcs(template.FuncMap{
	"qty": qty,
	"day": ledger.FormatDay,
}).ParseFS(templateFS, "templates/register_print.html"))

type printView struct {
	Title         string
	Month         string
	InboundLabel  string
	OutboundLabel string
	Entries       []ledger.Entry
	Summary       ledger.Summary
	GeneratedAt   string
}

// RenderRegisterPrint renders the printable HTML page of a register month.
func RenderRegisterPrint(w io.Writer, sheet RegisterSheet, generatedAt time.Time) error {
	view := printView{
		Title:         sheet.Register.Title(),
		Month:         sheet.Month,
		InboundLabel:  sheet.Register.InboundLabel(),
		OutboundLabel: sheet.Register.OutboundLabel(),
		Entries:       sheet.Entries,
		Summary:       sheet.Summary,
		GeneratedAt:   generatedAt.Format("02 Jan 2006 15:04"),
	}
	if err := printTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render register print: %w", err)
	}
	return nil
}
