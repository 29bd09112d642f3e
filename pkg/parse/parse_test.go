package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	v, ok := Int(" 3 ")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	for _, in := range []string{"", "abc", "2.5", "3x"} {
		_, ok := Int(in)
		assert.False(t, ok, in)
	}
}

func TestFloat(t *testing.T) {
	v, ok := Float("1500.75")
	assert.True(t, ok)
	assert.Equal(t, 1500.75, v)

	for _, in := range []string{"", "cheap", "NaN", "Inf"} {
		_, ok := Float(in)
		assert.False(t, ok, in)
	}
}

func TestBool(t *testing.T) {
	v, ok := Bool("TRUE")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = Bool("no")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = Bool("maybe")
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	d, ok := Date("2025-06-01")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *d)

	d, ok = Date("2025-06-01T10:00:00+02:00")
	assert.True(t, ok)
	assert.Equal(t, 8, d.Hour())

	d, ok = Date("next tuesday")
	assert.False(t, ok)
	assert.Nil(t, d)
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"gym", "pool", "gym"}, List("gym| pool ||gym", "|"))
	assert.Nil(t, List("  ", "|"))
}
