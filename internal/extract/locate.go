package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

// CSS selectors for the dashboard page layout.
const (
	dashboardSelector = "div#dashboard"

	// Scoped to the dashboard, four nodes each in NationalFields order.
	totalSelector    = "span.icount"
	increaseSelector = "div.increase_block"

	// Document-wide; the vaccination widget lives outside the dashboard.
	vaccinationTotalSelector    = "div.total-vcount strong"
	vaccinationIncreaseSelector = "div.yday-vcount strong"

	regionSelector       = "div.views-row"
	regionNameSelector   = "span.st_name"
	regionCountsSelector = "div.st_all_counts"
	regionCountSelector  = "small"
)

// Locate finds every counter node on the page and labels its text with the
// schema field it holds. It fails with domain.ErrStructuralMismatch as soon
// as a required node is absent or a list is shorter than its fixed arity.
func Locate(doc *goquery.Document) (domain.Located, error) {
	var loc domain.Located

	dashboard := doc.Find(dashboardSelector)
	if n := dashboard.Length(); n != 1 {
		return loc, mismatch("expected exactly one %q, found %d", dashboardSelector, n)
	}

	vaccTotal, err := first(doc.Selection, vaccinationTotalSelector)
	if err != nil {
		return loc, err
	}
	vaccIncrease, err := first(doc.Selection, vaccinationIncreaseSelector)
	if err != nil {
		return loc, err
	}

	loc.Totals, err = nationalRecord(dashboard, totalSelector, vaccTotal)
	if err != nil {
		return loc, err
	}
	loc.Increases, err = nationalRecord(dashboard, increaseSelector, vaccIncrease)
	if err != nil {
		return loc, err
	}

	loc.Regions, err = regionRecords(doc.Selection)
	if err != nil {
		return loc, err
	}
	return loc, nil
}

// nationalRecord zips the first four matches of sel with NationalFields and
// appends the vaccination node as the fifth column. Extra matches are ignored.
func nationalRecord(scope *goquery.Selection, sel string, vaccination *goquery.Selection) (domain.RawRecord, error) {
	var rec domain.RawRecord

	nodes := scope.Find(sel)
	if n := nodes.Length(); n < len(domain.NationalFields) {
		return rec, mismatch("expected %d %q nodes, found %d", len(domain.NationalFields), sel, n)
	}

	for i, f := range domain.NationalFields {
		rec.Add(f, nodes.Eq(i).Text())
	}
	rec.Add(domain.Vaccinations, vaccination.Text())
	return rec, nil
}

func regionRecords(scope *goquery.Selection) ([]domain.RawRecord, error) {
	blocks := scope.Find(regionSelector)
	if blocks.Length() == 0 {
		return nil, mismatch("no %q region blocks found", regionSelector)
	}

	records := make([]domain.RawRecord, 0, blocks.Length())
	var err error
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		var rec domain.RawRecord
		rec, err = regionRecord(i, block)
		if err != nil {
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func regionRecord(i int, block *goquery.Selection) (domain.RawRecord, error) {
	var rec domain.RawRecord

	names := block.Find(regionNameSelector)
	if n := names.Length(); n != 1 {
		return rec, mismatch("region block %d: expected one %q, found %d", i, regionNameSelector, n)
	}
	rec.Name = names.Text()

	container, err := first(block, regionCountsSelector)
	if err != nil {
		return rec, fmt.Errorf("region block %d (%q): %w", i, rec.Name, err)
	}
	counts := container.Find(regionCountSelector)
	if n := counts.Length(); n != domain.FieldCount {
		return rec, mismatch("region block %d (%q): expected %d %q nodes, found %d",
			i, rec.Name, domain.FieldCount, regionCountSelector, n)
	}

	for j, f := range domain.Fields {
		rec.Add(f, counts.Eq(j).Text())
	}
	return rec, nil
}

// first returns the first match of sel within scope.
func first(scope *goquery.Selection, sel string) (*goquery.Selection, error) {
	match := scope.Find(sel).First()
	if match.Length() == 0 {
		return nil, mismatch("no %q node found", sel)
	}
	return match, nil
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrStructuralMismatch}, args...)...)
}
