// Package fixture renders synthetic dashboard pages in the markup shape the
// extractor expects. It backs cmd/genfixture and the package tests.
package fixture

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

// Region is one state or union territory block.
type Region struct {
	Name   string
	Counts domain.Counts
}

// Page holds the values a rendered dashboard displays.
type Page struct {
	Totals              [4]uint64
	VaccinationTotal    uint64
	Increases           [4]uint64
	VaccinationIncrease uint64
	Regions             []Region
}

// FromSnapshot builds the page that would extract to snap.
func FromSnapshot(snap *domain.Snapshot) Page {
	totals, increases := snap.National()
	return fromRows(totals, increases, snap.Regions())
}

// FromRows builds a page from rows in table order, as returned by
// export.ReadCSV. The first two rows must be the nationwide totals and
// increases.
func FromRows(rows []domain.Row) (Page, error) {
	if len(rows) < 2 {
		return Page{}, fmt.Errorf("need at least 2 rows, got %d", len(rows))
	}
	if rows[0].Kind != domain.RowTotals || rows[1].Kind != domain.RowIncreases {
		return Page{}, fmt.Errorf("first rows must be %q and %q, got %q and %q",
			domain.NationalKey, domain.IncreasesKey, rows[0].Key, rows[1].Key)
	}
	for _, r := range rows[2:] {
		if r.Kind != domain.RowRegion {
			return Page{}, fmt.Errorf("unexpected %s row %q among regions", r.Kind, r.Key)
		}
	}
	return fromRows(rows[0], rows[1], rows[2:]), nil
}

func fromRows(totals, increases domain.Row, regions []domain.Row) Page {
	var p Page
	for i, f := range domain.NationalFields {
		p.Totals[i] = totals.Get(f)
		p.Increases[i] = increases.Get(f)
	}
	p.VaccinationTotal = totals.Get(domain.Vaccinations)
	p.VaccinationIncrease = increases.Get(domain.Vaccinations)

	for _, r := range regions {
		p.Regions = append(p.Regions, Region{Name: r.Key, Counts: r.Counts})
	}
	return p
}

// Render writes the page markup to w.
func Render(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}

// HTML renders the page to a string.
func HTML(p Page) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatCount renders n with Indian digit grouping: the last three digits,
// then groups of two, e.g. 44687820 → "4,46,87,820".
func FormatCount(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i, c := range []byte(head) {
		if i > 0 && (len(head)-i)%2 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out) + "," + tail
}

var pageTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"count": FormatCount,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>COVID-19 Dashboard</title></head>
<body>
<div id="dashboard">
  <div class="information_row">
{{- range $i, $v := .Totals}}
    <div class="iblock">
      <span class="icount">{{count $v}}</span>
      <div class="increase_block">{{count (index $.Increases $i)}}</div>
    </div>
{{- end}}
  </div>
</div>
<div class="vaccination-block">
  <div class="total-vcount"><strong>{{count .VaccinationTotal}}</strong> Total Vaccination</div>
  <div class="yday-vcount"><strong>{{count .VaccinationIncrease}}</strong> Yesterday</div>
</div>
<div class="state-list">
{{- range .Regions}}
  <div class="views-row">
    <span class="st_name">{{.Name}}</span>
    <div class="st_all_counts">
{{- range .Counts}}
      <small>{{count .}}</small>
{{- end}}
    </div>
  </div>
{{- end}}
</div>
</body>
</html>
`))
