package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"rivals-tracker/internal/domain"
)

type PieChart struct {
	Title    string
	Slices   []domain.Slice
	Selected string // dims every other slice when set
}

const (
	legendTop    = 30
	legendLeft   = 230
	legendStep   = 22
	chartWidth   = 520
	minHeight    = 240
	emptyMessage = "No History"
)

var pieTemplate = template.Must(template.New("pie").Funcs(template.FuncMap{
	"esc":    escape,
	"legend": legendText,
	"y":      func(i int) int { return legendTop + 20 + i*legendStep },
	"dim":    func(selected, label string) bool { return selected != "" && selected != label },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<text x="10" y="20" font-weight="bold">{{esc .Title}}</text>
{{- if not .Slices}}
<text x="10" y="44" fill="#9CA3AF">{{esc .Empty}}</text>
{{- else}}
<g transform="translate(0,20)">
{{- range .Slices}}
<path d="{{.Path}}" fill="{{esc .Color}}" stroke="white" stroke-width="2"{{if dim $.Selected .Label}} opacity="0.4"{{end}}/>
{{- end}}
</g>
{{- range $i, $s := .Slices}}
<rect x="{{$.LegendX}}" y="{{y $i}}" width="12" height="12" fill="{{esc $s.Color}}"/>
<text x="{{$.LegendTextX}}" y="{{y $i}}" dy="10"{{if dim $.Selected $s.Label}} opacity="0.6"{{end}}>{{esc (legend $s)}}</text>
{{- end}}
<text x="{{.LegendX}}" y="{{.TotalY}}" dy="10" fill="#9CA3AF">{{esc .Total}}</text>
{{- end}}
</svg>
`))

type pieView struct {
	PieChart
	Width, Height        int
	LegendX, LegendTextX int
	TotalY               int
	Total                string
	Empty                string
}

// Render writes the chart as a standalone SVG document.
func (c PieChart) Render(w io.Writer) error {
	height := legendTop + 20 + (len(c.Slices)+1)*legendStep
	if height < minHeight {
		height = minHeight
	}
	view := pieView{
		PieChart:    c,
		Width:       chartWidth,
		Height:      height,
		LegendX:     legendLeft,
		LegendTextX: legendLeft + 18,
		TotalY:      legendTop + 20 + len(c.Slices)*legendStep + 6,
		Total:       "Total: " + matchCount(Total(c.Slices)),
		Empty:       emptyMessage,
	}
	if err := pieTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render %q: %w", c.Title, err)
	}
	return nil
}

func (c PieChart) String() string {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Legend returns the legend lines followed by the total, or the empty-state text.
func (c PieChart) Legend() []string {
	if len(c.Slices) == 0 {
		return []string{emptyMessage}
	}
	lines := make([]string, 0, len(c.Slices)+1)
	for _, s := range c.Slices {
		lines = append(lines, legendText(s))
	}
	return append(lines, "Total: "+matchCount(Total(c.Slices)))
}

func legendText(s domain.Slice) string {
	return fmt.Sprintf("%s %s (%.1f%%)", s.Label, matchCount(s.Count), s.Percent)
}

func matchCount(n float64) string {
	text := strconv.FormatFloat(n, 'f', -1, 64)
	if n == 1 {
		return text + " match"
	}
	return text + " matches"
}

func escape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}
