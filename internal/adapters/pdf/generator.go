// Package pdf renders the transaction cover sheet. The template's static
// labels are drawn first, then every placement instruction at its literal
// coordinates. Instructions use PDF user space (origin bottom-left); fpdf
// measures from the top-left, so y is flipped here and nowhere else.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/txn-intake/internal/placement"
)

type Renderer struct {
	// Footer is printed at the bottom of every page when non-empty.
	Footer string
}

func NewRenderer() *Renderer {
	return &Renderer{Footer: "Transaction Cover Sheet"}
}

// Render writes a PDF of table.Pages Letter pages to w.
func (r *Renderer) Render(table placement.Table, ins []placement.DrawInstruction, w io.Writer) error {
	for _, in := range ins {
		if in.Page < 1 || in.Page > table.Pages {
			return fmt.Errorf("instruction %q on page %d: template %s has %d pages", in.Text, in.Page, table.Name, table.Pages)
		}
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for page := 1; page <= table.Pages; page++ {
		pdf.AddPage()
		drawLabels(pdf, tr, table.Labels, page)
		drawInstructions(pdf, tr, ins, page)
		r.drawFooter(pdf, tr)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawLabels(pdf *fpdf.Fpdf, tr func(string) string, labels []placement.Label, page int) {
	pdf.SetTextColor(90, 90, 90)
	for _, l := range labels {
		if l.Page != page {
			continue
		}
		setFont(pdf, l.FontSize, l.Bold)
		pdf.Text(l.X, top(l.Y), tr(l.Text))
		// Section headings get a rule underneath.
		if l.Bold && l.FontSize >= 11 {
			pdf.SetDrawColor(180, 180, 180)
			pdf.SetLineWidth(0.5)
			pdf.Line(l.X, top(l.Y)+4, placement.PageWidth-l.X, top(l.Y)+4)
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

func drawInstructions(pdf *fpdf.Fpdf, tr func(string) string, ins []placement.DrawInstruction, page int) {
	for _, in := range ins {
		if in.Page != page {
			continue
		}
		setFont(pdf, in.FontSize, in.Bold)
		pdf.Text(in.X, top(in.Y), tr(in.Text))
	}
}

func (r *Renderer) drawFooter(pdf *fpdf.Fpdf, tr func(string) string) {
	if r.Footer == "" {
		return
	}
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.Text(54, placement.PageHeight-24, tr(r.Footer))
	pdf.Text(placement.PageWidth-100, placement.PageHeight-24, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()))
	pdf.SetTextColor(0, 0, 0)
}

func setFont(pdf *fpdf.Fpdf, size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, size)
}

// top converts a bottom-left y to fpdf's top-left origin.
func top(y float64) float64 { return placement.PageHeight - y }
