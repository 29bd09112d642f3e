// Package importer loads listings from a CSV export into the listing store.
//
// The first row names the columns. Columns are matched to listing fields by name, ignoring
// case, and unknown columns are skipped. Cells that fail to parse (numbers, booleans,
// dates) leave the field at its zero value; they never abort the import.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/pkg/parse"
	"github.com/rs/zerolog/log"
)

// ListSeparator separates the elements of the amenities and tags columns
const ListSeparator = "|"

// DefaultBatchSize is the number of listings sent per insert
const DefaultBatchSize = 500

// Inserter is the part of the listing store the importer writes to
type Inserter interface {
	InsertProperties(ctx context.Context, properties []models.Property) (int, error)
}

type setter func(p *models.Property, cell string)

// columns maps lower-cased header names to the field they fill
var columns = map[string]setter{
	"id": func(p *models.Property, v string) {
		p.ExternalID = v
	},
	"title": func(p *models.Property, v string) {
		p.Title = v
	},
	"type": func(p *models.Property, v string) {
		p.Type = v
	},
	"price": func(p *models.Property, v string) {
		p.Price, _ = parse.Float(v)
	},
	"state": func(p *models.Property, v string) {
		p.State = v
	},
	"city": func(p *models.Property, v string) {
		p.City = v
	},
	"location": func(p *models.Property, v string) {
		p.Location = v
	},
	"areasqft": func(p *models.Property, v string) {
		p.AreaSqFt, _ = parse.Float(v)
	},
	"bedrooms": func(p *models.Property, v string) {
		p.Bedrooms, _ = parse.Int(v)
	},
	"bathrooms": func(p *models.Property, v string) {
		p.Bathrooms, _ = parse.Int(v)
	},
	"amenities": func(p *models.Property, v string) {
		p.Amenities = parse.List(v, ListSeparator)
	},
	"furnished": func(p *models.Property, v string) {
		p.Furnished = v
	},
	"availablefrom": func(p *models.Property, v string) {
		p.AvailableFrom, _ = parse.Date(v)
	},
	"listedby": func(p *models.Property, v string) {
		p.ListedBy = v
	},
	"tags": func(p *models.Property, v string) {
		p.Tags = parse.List(v, ListSeparator)
	},
	"colortheme": func(p *models.Property, v string) {
		p.ColorTheme = v
	},
	"rating": func(p *models.Property, v string) {
		p.Rating, _ = parse.Float(v)
	},
	"isverified": func(p *models.Property, v string) {
		p.IsVerified, _ = parse.Bool(v)
	},
	"listingtype": func(p *models.Property, v string) {
		p.ListingType = v
	},
}

// ReadProperties decodes every data row of a CSV document
func ReadProperties(r io.Reader) ([]models.Property, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: missing header row")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	setters := make([]setter, len(header))
	known := 0
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if s, ok := columns[name]; ok {
			setters[i] = s
			known++
		} else {
			log.Debug().Str("column", name).Msg("ignoring unknown CSV column")
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("CSV header has no listing columns")
	}

	properties := []models.Property{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		var p models.Property
		for i, cell := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&p, strings.TrimSpace(cell))
			}
		}
		properties = append(properties, p)
	}
	return properties, nil
}

// Import reads listings from r and inserts them in batches, returning how many were
// written. Listings are imported without an owner.
func Import(ctx context.Context, store Inserter, r io.Reader, batchSize int) (int, error) {
	properties, err := ReadProperties(r)
	if err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	inserted := 0
	for start := 0; start < len(properties); start += batchSize {
		end := min(start+batchSize, len(properties))
		n, err := store.InsertProperties(ctx, properties[start:end])
		inserted += n
		if err != nil {
			return inserted, fmt.Errorf("failed to insert rows %d-%d: %w", start+1, end, err)
		}
		log.Info().Int("inserted", inserted).Int("total", len(properties)).Msg("import progress")
	}
	return inserted, nil
}
