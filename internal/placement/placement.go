// Package placement projects the intake form onto literal coordinates of a
// fixed-layout cover sheet. Coordinates are PDF user space: points, origin
// at the bottom-left of a US Letter page (612 x 792).
package placement

import (
	"fmt"
	"strings"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/formpath"
	"github.com/csg33k/txn-intake/internal/numeric"
)

const (
	PageWidth  = 612.0
	PageHeight = 792.0

	// LineHeight is the baseline advance per wrapped line, as a multiple
	// of the font size.
	LineHeight = 1.2
)

// Format is the display formatting applied to a resolved value.
type Format string

const (
	FormatPlain    Format = ""
	FormatCurrency Format = "currency" // $1,234.56
	FormatPercent  Format = "percent"  // 3.00%
	FormatUpper    Format = "upper"
	FormatYesNo    Format = "yesNo"
	// FormatCheck draws an "X" for true and nothing otherwise.
	FormatCheck Format = "check"
)

func (f Format) known() bool {
	switch f {
	case FormatPlain, FormatCurrency, FormatPercent, FormatUpper, FormatYesNo, FormatCheck:
		return true
	}
	return false
}

// Placement routes one source key to a spot on the template.
type Placement struct {
	SourceKey string  `json:"sourceKey"`
	Page      int     `json:"page"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	FontSize  float64 `json:"fontSize"`
	Bold      bool    `json:"bold,omitempty"`
	MaxWidth  float64 `json:"maxWidth,omitempty"` // 0 disables wrapping
	Format    Format  `json:"format,omitempty"`
}

// Label is static template text. Projection ignores labels; the renderer
// draws them underneath the instructions.
type Label struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Bold     bool    `json:"bold,omitempty"`
}

// Table is one cover-sheet template variant.
type Table struct {
	Name       string           `json:"name"`
	Role       domain.AgentRole `json:"role"`
	Pages      int              `json:"pages"`
	Labels     []Label          `json:"labels"`
	Placements []Placement      `json:"placements"`
}

// DrawInstruction is one line of text at a literal position.
type DrawInstruction struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Bold     bool    `json:"bold,omitempty"`
	MaxWidth float64 `json:"maxWidth,omitempty"`
}

// Measurer reports the rendered width of text in points.
type Measurer interface {
	TextWidth(text string, fontSize float64, bold bool) float64
}

// Validate checks every placement and label against the template bounds
// and the form shape.
func (t Table) Validate() error {
	if t.Pages < 1 {
		return &domain.ConfigurationError{Table: t.Name, Reason: "template has no pages"}
	}
	for _, p := range t.Placements {
		if !formpath.KnownInState(p.SourceKey) {
			return &domain.ConfigurationError{Table: t.Name, Key: p.SourceKey, Reason: "unknown source key"}
		}
		if p.Page < 1 || p.Page > t.Pages {
			return &domain.ConfigurationError{Table: t.Name, Key: p.SourceKey,
				Reason: fmt.Sprintf("page %d outside template of %d pages", p.Page, t.Pages)}
		}
		if p.FontSize <= 0 {
			return &domain.ConfigurationError{Table: t.Name, Key: p.SourceKey, Reason: "font size must be positive"}
		}
		if p.MaxWidth < 0 {
			return &domain.ConfigurationError{Table: t.Name, Key: p.SourceKey, Reason: "negative max width"}
		}
		if !p.Format.known() {
			return &domain.ConfigurationError{Table: t.Name, Key: p.SourceKey,
				Reason: fmt.Sprintf("unknown format %q", p.Format)}
		}
	}
	for _, l := range t.Labels {
		if l.Page < 1 || l.Page > t.Pages {
			return &domain.ConfigurationError{Table: t.Name, Key: l.Text,
				Reason: fmt.Sprintf("label on page %d outside template of %d pages", l.Page, t.Pages)}
		}
	}
	return nil
}

// Project emits draw instructions for every placement whose source value is
// present, in table order. Scoped buyer./seller. keys read the first client
// of that type; when there is none the placement is skipped. Multi-line
// text and text wider than a placement's MaxWidth are laid out by Wrap, one
// instruction per line. A nil measurer uses Helvetica metrics.
func Project(state *domain.TransactionFormState, table Table, m Measurer) ([]DrawInstruction, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		state = &domain.TransactionFormState{}
	}
	if m == nil {
		m = defaultMeasurer()
	}

	var out []DrawInstruction
	for _, p := range table.Placements {
		raw, ok := formpath.ResolveInState(state, p.SourceKey)
		if !ok {
			continue
		}
		text, ok := display(raw, p.Format)
		if !ok {
			continue
		}
		lines := []string{text}
		if strings.ContainsAny(text, "\r\n") || p.MaxWidth > 0 && m.TextWidth(text, p.FontSize, p.Bold) > p.MaxWidth {
			lines = Wrap(text, p.FontSize, p.Bold, p.MaxWidth, m)
		}
		for i, line := range lines {
			if line == "" {
				continue
			}
			out = append(out, DrawInstruction{
				Page:     p.Page,
				X:        p.X,
				Y:        p.Y - float64(i)*p.FontSize*LineHeight,
				Text:     line,
				FontSize: p.FontSize,
				Bold:     p.Bold,
				MaxWidth: p.MaxWidth,
			})
		}
	}
	return out, nil
}

// ProjectForRole selects the table for the form's agent role and projects
// the form onto it.
func ProjectForRole(state *domain.TransactionFormState, m Measurer) (Table, []DrawInstruction, error) {
	table, err := TableFor(state.AgentData.Role)
	if err != nil {
		return Table{}, nil, err
	}
	ins, err := Project(state, table, m)
	return table, ins, err
}

// Wrap breaks text into lines no wider than maxWidth. Line breaks in text
// start a new paragraph; within a paragraph whitespace collapses and each
// word joins the current line while it still fits. A word that is wider
// than maxWidth on its own occupies a line by itself. Blank lines between
// paragraphs are kept as empty strings. maxWidth <= 0 only splits
// paragraphs.
func Wrap(text string, fontSize float64, bold bool, maxWidth float64, m Measurer) []string {
	var lines []string
	blank := 0
	for _, para := range strings.Split(newlines.Replace(text), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			if len(lines) > 0 {
				blank++
			}
			continue
		}
		for ; blank > 0; blank-- {
			lines = append(lines, "")
		}
		lines = append(lines, fill(words, fontSize, bold, maxWidth, m)...)
	}
	return lines
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func fill(words []string, fontSize float64, bold bool, maxWidth float64, m Measurer) []string {
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if m.TextWidth(candidate, fontSize, bold) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

func display(v any, f Format) (string, bool) {
	var s string
	switch x := v.(type) {
	case bool:
		if f == FormatCheck {
			return "X", x
		}
		if x {
			return "YES", true
		}
		return "NO", true
	case []string:
		s = strings.Join(x, ", ")
	case string:
		s = x
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	switch f {
	case FormatCurrency:
		if d, ok := numeric.Parse(s); ok {
			s = numeric.Currency(d)
		}
	case FormatPercent:
		if d, ok := numeric.Parse(s); ok {
			s = numeric.Fixed2(d) + "%"
		}
	case FormatUpper, FormatYesNo:
		s = strings.ToUpper(s)
	case FormatCheck:
		s = "X"
	}
	return s, true
}
