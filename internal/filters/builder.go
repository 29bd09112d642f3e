// Package filters turns the flat query string of a listing search into a predicate over
// the properties collection.
//
// Each supplied parameter contributes exactly one Clause and clauses are combined with AND.
// Parameters that are absent or empty contribute nothing, unknown parameters are ignored,
// and no combination is rejected. A numeric parameter that does not parse makes the whole
// filter unsatisfiable: the search then returns no listings instead of failing.
package filters

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/pkg/parse"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op is the comparison a clause applies to its field
type Op string

const (
	OpEq       Op = "$eq"
	OpContains Op = "$regex" // case-insensitive substring
	OpGte      Op = "$gte"
	OpLte      Op = "$lte"
)

type kind int

const (
	kindString kind = iota
	kindText
	kindInt
	kindMin
	kindMax
)

type param struct {
	name  string
	field string
	kind  kind
}

// searchParams is the full list of accepted query parameters, in clause order
var searchParams = []param{
	{"title", "title", kindText},
	{"location", "location", kindText},
	{"city", "city", kindText},
	{"type", "type", kindString},
	{"createdBy", "createdBy", kindString},
	{"bedrooms", "bedrooms", kindInt},
	{"bathrooms", "bathrooms", kindInt},
	{"priceMin", "price", kindMin},
	{"priceMax", "price", kindMax},
	{"areaMin", "areaSqFt", kindMin},
	{"areaMax", "areaSqFt", kindMax},
}

// Clause is a single predicate produced by one query parameter
type Clause struct {
	Param string
	Field string
	Op    Op
	Value interface{}
}

// Filter is the conjunction of its clauses
type Filter struct {
	Clauses []Clause
	invalid []string
}

// FromQuery builds a Filter from query parameters. Only the first value of a repeated
// parameter is used.
func FromQuery(q url.Values) Filter {
	var f Filter
	for _, p := range searchParams {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}

		switch p.kind {
		case kindString:
			f.Clauses = append(f.Clauses, Clause{Param: p.name, Field: p.field, Op: OpEq, Value: raw})
		case kindText:
			f.Clauses = append(f.Clauses, Clause{Param: p.name, Field: p.field, Op: OpContains, Value: raw})
		case kindInt:
			n, ok := parse.Int(raw)
			if !ok {
				f.invalid = append(f.invalid, p.name)
				continue
			}
			f.Clauses = append(f.Clauses, Clause{Param: p.name, Field: p.field, Op: OpEq, Value: n})
		case kindMin, kindMax:
			v, ok := parse.Float(raw)
			if !ok {
				f.invalid = append(f.invalid, p.name)
				continue
			}
			op := OpGte
			if p.kind == kindMax {
				op = OpLte
			}
			f.Clauses = append(f.Clauses, Clause{Param: p.name, Field: p.field, Op: op, Value: v})
		}
	}
	return f
}

// Unsatisfiable reports whether a numeric parameter failed to parse
func (f Filter) Unsatisfiable() bool {
	return len(f.invalid) > 0
}

// Invalid lists the parameters that failed to parse
func (f Filter) Invalid() []string {
	return f.invalid
}

// BSON renders the filter as a MongoDB query document. Range clauses on the same field
// share one sub-document, so priceMin and priceMax become {price: {$gte, $lte}}.
func (f Filter) BSON() bson.M {
	doc := bson.M{}
	for _, c := range f.Clauses {
		switch c.Op {
		case OpEq:
			doc[c.Field] = c.Value
		case OpContains:
			doc[c.Field] = primitive.Regex{Pattern: regexp.QuoteMeta(c.Value.(string)), Options: "i"}
		case OpGte, OpLte:
			r, ok := doc[c.Field].(bson.M)
			if !ok {
				r = bson.M{}
				doc[c.Field] = r
			}
			r[string(c.Op)] = c.Value
		}
	}
	return doc
}

// Match evaluates the filter against a listing in memory, with the same semantics the
// BSON document has on the server.
func (f Filter) Match(p *models.Property) bool {
	if f.Unsatisfiable() {
		return false
	}
	for _, c := range f.Clauses {
		if !c.match(p) {
			return false
		}
	}
	return true
}

func (c Clause) match(p *models.Property) bool {
	switch c.Op {
	case OpContains:
		text := stringField(p, c.Field)
		return strings.Contains(strings.ToLower(text), strings.ToLower(c.Value.(string)))
	case OpEq:
		switch v := c.Value.(type) {
		case string:
			return stringField(p, c.Field) == v
		case int:
			n, _ := numberField(p, c.Field)
			return n == float64(v)
		}
		return false
	case OpGte:
		n, _ := numberField(p, c.Field)
		return n >= c.Value.(float64)
	case OpLte:
		n, _ := numberField(p, c.Field)
		return n <= c.Value.(float64)
	}
	return false
}

func stringField(p *models.Property, field string) string {
	switch field {
	case "title":
		return p.Title
	case "location":
		return p.Location
	case "city":
		return p.City
	case "type":
		return p.Type
	case "createdBy":
		return p.CreatedBy
	}
	return ""
}

func numberField(p *models.Property, field string) (float64, bool) {
	switch field {
	case "price":
		return p.Price, true
	case "areaSqFt":
		return p.AreaSqFt, true
	case "bedrooms":
		return float64(p.Bedrooms), true
	case "bathrooms":
		return float64(p.Bathrooms), true
	}
	return 0, false
}
