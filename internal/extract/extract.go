// Package extract locates the counter nodes of the MyGov COVID-19 dashboard
// and assembles them into a domain.Snapshot.
//
// The pipeline: raw markup → parse → locate regions → normalize → assemble.
// Extraction is a pure function of the markup; it performs no I/O and keeps
// no state between calls.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

// Extract parses markup and returns the snapshot it describes.
func Extract(markup string) (*domain.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	loc, err := Locate(doc)
	if err != nil {
		return nil, err
	}
	return domain.Assemble(loc)
}
