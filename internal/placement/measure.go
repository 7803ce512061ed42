package placement

import (
	"sync"

	"github.com/go-pdf/fpdf"
)

// FontMeasurer measures text with the core Helvetica metrics the renderer
// draws with. Text is translated to cp1252 first, as the renderer does, so
// non-ASCII runes measure as the single glyphs that end up on the page. It
// is safe for concurrent use.
type FontMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewFontMeasurer() *FontMeasurer {
	pdf := fpdf.New("P", "pt", "Letter", "")
	return &FontMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *FontMeasurer) TextWidth(text string, fontSize float64, bold bool) float64 {
	style := ""
	if bold {
		style = "B"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont("Helvetica", style, fontSize)
	return m.pdf.GetStringWidth(m.tr(text))
}

var defaultMeasurer = sync.OnceValue(func() Measurer { return NewFontMeasurer() })
