// Package report renders plain-text summaries of a worksheet, one per
// section plus a combined document. Absent values print as NotFilled.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	booster "github.com/goliatone/go-booster"
)

// NotFilled stands in for empty text and absent numbers.
const NotFilled = "(not filled)"

// NotAvailable stands in for derived figures that cannot be computed.
const NotAvailable = "n/a"

var funcs = template.FuncMap{
	"text":    text,
	"money":   money,
	"number":  number,
	"percent": percent,
	"upper":   strings.ToUpper,
	"score":   score,
	"inc":     func(i int) int { return i + 1 },
	"phrase": func(block booster.OfferBlock) string {
		phrase, ok := booster.OfferPhrase(block)
		if !ok {
			return "(fill audience, pain, mechanism and promise)"
		}
		return phrase
	},
}

var templates = template.Must(template.New("report").Funcs(funcs).Parse(layouts))

// Options tunes the rendered output.
type Options struct {
	// Currency is appended to money values, for example "USD".
	Currency string
	// Title replaces the document heading.
	Title string
}

type view struct {
	booster.BoosterState
	Options    Options
	Progress   booster.Progress
	Products   []booster.ProductRow
	Champion   *booster.ProductRow
	Thin       bool
	Financials booster.Financials
	Levers     []leverView
	MainLever  *booster.GrowthLever
	Weakest    []booster.Zone
	Average    float64
	Scored     bool
	Insights   []booster.Insight
}

type leverView struct {
	Index int
	booster.GrowthLever
	Label string
}

func newView(s booster.BoosterState, opts Options) view {
	v := view{
		BoosterState: s,
		Options:      opts,
		Progress:     booster.ComputeProgress(s),
		Thin:         booster.ThinProductMargins(s.Product.Products),
		Financials:   booster.ComputeFinancials(s.Economy),
		Weakest:      booster.WeakestZones(s.Strategy, booster.RadarZoneCount),
	}
	if v.Options.Title == "" {
		v.Options.Title = "PRE-ULTIMA BOOSTER"
	}
	for _, row := range booster.ProductRows(s.Product.Products) {
		if booster.FilledText(row.Item.Name) {
			v.Products = append(v.Products, row)
		}
	}
	if champion, ok := booster.Champion(s.Product.Products); ok {
		v.Champion = &champion
	}
	for i, lever := range s.Economy.MainLevers {
		if lever.Area == booster.AreaNone {
			continue
		}
		v.Levers = append(v.Levers, leverView{Index: i, GrowthLever: lever, Label: lever.Area.Label()})
	}
	if average, ok := booster.ScoreAverage(s.Strategy); ok {
		v.Average, v.Scored = average, true
	}
	if lever, ok := booster.MainLever(s.Economy); ok {
		v.MainLever = &lever
	}
	return v
}

// Product renders the product section.
func Product(s booster.BoosterState, opts Options) (string, error) {
	return render("product", newView(s, opts))
}

// Economy renders the economy section.
func Economy(s booster.BoosterState, opts Options) (string, error) {
	return render("economy", newView(s, opts))
}

// Strategy renders the strategy section.
func Strategy(s booster.BoosterState, opts Options) (string, error) {
	return render("strategy", newView(s, opts))
}

// Section renders one section by name.
func Section(section booster.Section, s booster.BoosterState, opts Options) (string, error) {
	switch section {
	case booster.SectionProduct:
		return Product(s, opts)
	case booster.SectionEconomy:
		return Economy(s, opts)
	case booster.SectionStrategy:
		return Strategy(s, opts)
	}
	return "", fmt.Errorf("report: unknown section %q", section)
}

// Full renders progress, every section and the given insights.
func Full(s booster.BoosterState, insights []booster.Insight, opts Options) (string, error) {
	v := newView(s, opts)
	v.Insights = insights
	return render("full", v)
}

// Status renders the one-screen progress summary.
func Status(s booster.BoosterState, opts Options) (string, error) {
	return render("status", newView(s, opts))
}

func render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("report: render %s: %w", name, err)
	}
	return strings.TrimSpace(collapseBlankLines(buf.String())) + "\n", nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func text(value string) string {
	if !booster.FilledText(value) {
		return NotFilled
	}
	return strings.TrimSpace(value)
}

func money(value *float64, currency string) string {
	if value == nil {
		return NotFilled
	}
	formatted := humanize.CommafWithDigits(*value, 2)
	if currency == "" {
		return formatted
	}
	return formatted + " " + currency
}

func number(value *float64) string {
	if value == nil {
		return NotAvailable
	}
	return humanize.CommafWithDigits(*value, 2)
}

func percent(value *float64) string {
	if value == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", *value)
}

func score(value *int) string {
	if value == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d / %d", *value, booster.MaxScore)
}
