package query

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	q := Parse("", "", "", "", "")
	assert.Equal(t, ListQuery{Page: 1, Limit: 20, Search: "", Types: []string{}, Sort: SortID}, q)
	assert.Equal(t, 0, q.Offset())
}

func TestParsePageAndLimit(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		wantPage    int
		wantLimit   int
	}{
		{"plain", "3", "10", 3, 10},
		{"non numeric page", "abc", "10", 1, 10},
		{"negative page", "-4", "10", 1, 10},
		{"zero page", "0", "10", 1, 10},
		{"fractional page", "2.9", "10", 2, 10},
		{"leading digits", "7xyz", "5abc", 7, 5},
		{"limit too large", "1", "500", 1, 50},
		{"limit zero", "1", "0", 1, 1},
		{"limit negative", "1", "-3", 1, 1},
		{"limit garbage", "1", "many", 1, 20},
		{"whitespace", " 2 ", " 15 ", 2, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.page, tt.limit, "", "", "")
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantLimit, q.Limit)
		})
	}
}

func TestParseTypes(t *testing.T) {
	q := Parse("", "", "", "Fire,,flying, fire ,", "")
	assert.Equal(t, []string{"fire", "flying"}, q.Types)
}

func TestParseSearchIsTrimmed(t *testing.T) {
	q := Parse("", "", "  char  ", "", "")
	assert.Equal(t, "char", q.Search)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortID, ParseSort(""))
	assert.Equal(t, SortName, ParseSort("NAME"))
	assert.Equal(t, SortType, ParseSort(" type "))
	assert.Equal(t, SortID, ParseSort("weight"))
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("page", "2")
	v.Set("limit", "12")
	v.Set("search", "saur")
	v.Set("types", "grass,poison")
	v.Set("sort", "name")

	q := FromValues(v)
	assert.Equal(t, ListQuery{Page: 2, Limit: 12, Search: "saur", Types: []string{"grass", "poison"}, Sort: SortName}, q)
	assert.Equal(t, 12, q.Offset())
}

func TestNewTreatsZeroLimitAsAbsent(t *testing.T) {
	q := New(0, 0, "", nil, "")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Empty(t, q.Types)

	q = New(4, 80, "x", []string{"Water"}, "type")
	assert.Equal(t, ListQuery{Page: 4, Limit: 50, Search: "x", Types: []string{"water"}, Sort: SortType}, q)
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-1", "1.5", "12abc"} {
		_, err := ParseID(raw)
		assert.True(t, errors.Is(err, ErrInvalidID), "raw=%q", raw)
	}

	id, err := ParseID(" 25 ")
	assert.NoError(t, err)
	assert.Equal(t, 25, id)
}

func TestOffsetSaturatesForHugePages(t *testing.T) {
	assert.Equal(t, 40, ListQuery{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, ListQuery{Page: math.MaxInt, Limit: MaxLimit}.Offset())
	assert.Equal(t, math.MaxInt, ListQuery{Page: math.MaxInt/2 + 2, Limit: 2}.Offset())
	assert.Equal(t, math.MaxInt-1, ListQuery{Page: math.MaxInt/2 + 1, Limit: 2}.Offset())
}
