package filters

import (
	"net/url"
	"testing"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromQuery_NoParamsMatchesAll(t *testing.T) {
	f := FromQuery(url.Values{})

	assert.Empty(t, f.Clauses)
	assert.False(t, f.Unsatisfiable())
	assert.Equal(t, bson.M{}, f.BSON())
	assert.True(t, f.Match(&models.Property{Title: "anything"}))
}

func TestFromQuery_OneClausePerParameter(t *testing.T) {
	all := url.Values{
		"title":     {"Lake"},
		"location":  {"north"},
		"city":      {"pune"},
		"type":      {"Villa"},
		"createdBy": {"u1"},
		"bedrooms":  {"3"},
		"bathrooms": {"2"},
		"priceMin":  {"100"},
		"priceMax":  {"200"},
		"areaMin":   {"500"},
		"areaMax":   {"900"},
	}

	// every subset of a few representative parameters
	names := []string{"title", "type", "bedrooms", "priceMin", "areaMax"}
	for mask := 0; mask < 1<<len(names); mask++ {
		q := url.Values{}
		for i, n := range names {
			if mask&(1<<i) != 0 {
				q[n] = all[n]
			}
		}
		f := FromQuery(q)
		require.Len(t, f.Clauses, len(q), "query %v", q)
		for _, c := range f.Clauses {
			assert.Contains(t, q, c.Param)
		}
	}

	assert.Len(t, FromQuery(all).Clauses, len(all))
}

func TestFromQuery_UnknownAndEmptyIgnored(t *testing.T) {
	f := FromQuery(url.Values{"sort": {"price"}, "title": {""}, "city": {"  "}})
	assert.Empty(t, f.Clauses)
	assert.False(t, f.Unsatisfiable())
}

func TestBSON_PriceRange(t *testing.T) {
	f := FromQuery(url.Values{"priceMin": {"100"}, "priceMax": {"200"}})

	assert.Equal(t, bson.M{"price": bson.M{"$gte": 100.0, "$lte": 200.0}}, f.BSON())

	assert.True(t, f.Match(&models.Property{Price: 100}))
	assert.True(t, f.Match(&models.Property{Price: 150}))
	assert.True(t, f.Match(&models.Property{Price: 200}))
	assert.False(t, f.Match(&models.Property{Price: 99.99}))
	assert.False(t, f.Match(&models.Property{Price: 200.01}))
	// no other field is constrained
	assert.True(t, f.Match(&models.Property{Price: 150, Title: "x", City: "y", Bedrooms: 9}))
}

func TestBSON_SingleBoundOnly(t *testing.T) {
	f := FromQuery(url.Values{"areaMin": {"750.5"}})
	assert.Equal(t, bson.M{"areaSqFt": bson.M{"$gte": 750.5}}, f.BSON())
}

func TestBSON_TitleCaseInsensitive(t *testing.T) {
	f := FromQuery(url.Values{"title": {"Lake"}})

	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: "Lake", Options: "i"}}, f.BSON())
	assert.True(t, f.Match(&models.Property{Title: "Quiet LAKE house"}))
	assert.True(t, f.Match(&models.Property{Title: "lakeside"}))
	assert.False(t, f.Match(&models.Property{Title: "Mountain cabin"}))
}

func TestBSON_TextIsMatchedLiterally(t *testing.T) {
	f := FromQuery(url.Values{"title": {"2BHK (new)"}})

	assert.Equal(t, primitive.Regex{Pattern: `2BHK \(new\)`, Options: "i"}, f.BSON()["title"])
	assert.True(t, f.Match(&models.Property{Title: "Spacious 2bhk (NEW) flat"}))
	assert.False(t, f.Match(&models.Property{Title: "2BHK new"}))
}

func TestBSON_ExactMatches(t *testing.T) {
	f := FromQuery(url.Values{"type": {"Villa"}, "createdBy": {"abc"}, "bedrooms": {"3"}})

	assert.Equal(t, bson.M{"type": "Villa", "createdBy": "abc", "bedrooms": 3}, f.BSON())
	assert.True(t, f.Match(&models.Property{Type: "Villa", CreatedBy: "abc", Bedrooms: 3}))
	assert.False(t, f.Match(&models.Property{Type: "villa", CreatedBy: "abc", Bedrooms: 3}))
	assert.False(t, f.Match(&models.Property{Type: "Villa", CreatedBy: "abc", Bedrooms: 2}))
}

func TestFromQuery_MalformedNumberIsUnsatisfiable(t *testing.T) {
	for _, q := range []url.Values{
		{"bedrooms": {"three"}},
		{"priceMin": {"cheap"}},
		{"areaMax": {"NaN"}},
		{"bathrooms": {"1.5"}, "title": {"Lake"}},
	} {
		f := FromQuery(q)
		assert.True(t, f.Unsatisfiable(), "query %v", q)
		assert.NotEmpty(t, f.Invalid())
		assert.False(t, f.Match(&models.Property{Title: "Lake", Bedrooms: 3, Bathrooms: 1}))
	}
}

func TestFromQuery_UsesFirstValue(t *testing.T) {
	f := FromQuery(url.Values{"city": {"Pune", "Delhi"}})
	require.Len(t, f.Clauses, 1)
	assert.Equal(t, "Pune", f.Clauses[0].Value)
}
