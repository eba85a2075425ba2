package query

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_TotalPages(t *testing.T) {
	res := Paginate(items(25), Page{Number: 1, Size: 10})
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, res.Items)

	last := Paginate(items(25), Page{Number: 3, Size: 10})
	assert.Equal(t, []int{21, 22, 23, 24, 25}, last.Items)
}

func TestPaginate_BeyondLastPage_IsEmpty(t *testing.T) {
	res := Paginate(items(25), Page{Number: 4, Size: 10})
	require.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 4, res.Page)
}

func TestPaginate_Defaults(t *testing.T) {
	res := Paginate(items(30), Page{})
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, DefaultPageSize, res.PageSize)
	assert.Len(t, res.Items, DefaultPageSize)

	capped := Page{Number: 1, Size: 10_000}.Normalize()
	assert.Equal(t, MaxPageSize, capped.Size)
}

// Con size recortado, page_size y total_pages del resultado usan el size aplicado.
func TestPaginate_ReportsCappedSize(t *testing.T) {
	res := Paginate(items(450), Page{Number: 1, Size: 1000})
	assert.Equal(t, MaxPageSize, res.PageSize)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, MaxPageSize)
}

func TestPaginate_Empty(t *testing.T) {
	res := Paginate([]int{}, Page{Number: 1, Size: 10})
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.TotalPages)
	assert.NotNil(t, res.Items)
}

func TestPaginate_All(t *testing.T) {
	res := Paginate(items(250), All())
	assert.Len(t, res.Items, 250)
	assert.Equal(t, 1, res.TotalPages)
}

func TestWriteDelimited(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDelimited(&buf, FormatCSV, []string{"a", "b"}, [][]string{{"1", "x,y"}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())

	buf.Reset()
	err = WriteDelimited(&buf, FormatTSV, []string{"a", "b"}, [][]string{{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" TSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatTSV, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestMatchString(t *testing.T) {
	assert.True(t, MatchString(MatchExact, "FR1234567890", " fr1234567890"))
	assert.False(t, MatchString(MatchExact, "FR1234567890", "1234"))
	assert.True(t, MatchString(MatchContains, "FR1234567890", "1234"))
	assert.True(t, MatchString(MatchContains, "FR1234567890", ""))
	assert.Equal(t, MatchContains, ParseMatchMode("CONTAINS"))
	assert.Equal(t, MatchExact, ParseMatchMode("whatever"))
}

func TestInRange_Inclusive(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, InRange(from, &from, &to))
	assert.True(t, InRange(to, &from, &to))
	assert.False(t, InRange(to.Add(time.Second), &from, &to))
	assert.False(t, InRange(from.Add(-time.Second), &from, nil))
	assert.True(t, InRange(from, nil, nil))
}
