package dashboard

import (
	"errors"
	"net/url"
	"testing"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("no such sheet")

type memWorkbook struct {
	names  []string
	tables map[string]*table.Table
}

func (m memWorkbook) SheetNames() []string { return m.names }

func (m memWorkbook) Table(name string) (*table.Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, errMissing
	}
	return t, nil
}

func fixture() memWorkbook {
	p := table.ParseValue
	projects := table.New([]string{"Name", "Region", "Budget"}, [][]table.Value{
		{p("A"), p("North"), p("100")},
		{p("B"), p("South"), p("200")},
		{p("C"), p("North"), p("150")},
	})
	sites := table.New([]string{"Sitio", "Latitud", "Longitud"}, [][]table.Value{
		{p("Escuela"), p("14.6"), p("-90.5")},
		{p("Clínica"), table.Missing(), table.Missing()},
	})
	return memWorkbook{
		names:  []string{"Projects", "Sitios"},
		tables: map[string]*table.Table{"Projects": projects, "Sitios": sites},
	}
}

func TestRenderDefaultsToFirstSheet(t *testing.T) {
	v, err := Render(fixture(), State{})
	require.NoError(t, err)
	assert.Equal(t, "Projects", v.State.Sheet)
	assert.Equal(t, []string{"Projects", "Sitios"}, v.Sheets)
	assert.Equal(t, table.Summary{RowCount: 3, ColumnCount: 3}, v.Summary)
	assert.Equal(t, "Projects_filtrado.csv", v.ExportName)
	assert.False(t, v.Geo)

	// Name and Region are filterable (3 and 2 distinct), Budget too (3 numbers).
	require.Len(t, v.Filters, 3)
	assert.Equal(t, "Region", v.Filters[1].Column)
	assert.Equal(t, []Choice{{"North", false}, {"South", false}}, v.Filters[1].Choices)

	assert.Equal(t, "Name", v.State.Categorical)
	assert.Equal(t, "Budget", v.State.Numeric)
	require.NotNil(t, v.Box)
	assert.Equal(t, 3, v.Box.Count)
}

func TestRenderAppliesFilters(t *testing.T) {
	s := State{Sheet: "Projects"}.WithFilter("Region", "North").WithCategorical("Region")
	v, err := Render(fixture(), s)
	require.NoError(t, err)

	assert.Equal(t, table.Summary{RowCount: 2, ColumnCount: 3, NullCount: 0}, v.Summary)
	assert.Equal(t, [][]string{{"A", "North", "100"}, {"C", "North", "150"}}, v.Rows)
	assert.True(t, v.Filters[1].Active)
	assert.Equal(t, []Choice{{"North", true}, {"South", false}}, v.Filters[1].Choices, "choices come from the unfiltered sheet")
	require.Len(t, v.Frequencies, 1)
	assert.Equal(t, 2, v.Frequencies[0].Count)

	art, err := v.Export()
	require.NoError(t, err)
	assert.Equal(t, "Projects_filtrado.csv", art.Filename)
	assert.Equal(t, "Name,Region,Budget\nA,North,100\nC,North,150\n", string(art.Data))
}

func TestRenderDropsUnofferedFilters(t *testing.T) {
	s := State{Sheet: "Projects"}.WithFilter("Nope", "x").WithFilter("Region", "North")
	v, err := Render(fixture(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Region"}, v.State.Filters.Active())
	assert.Equal(t, 2, v.Summary.RowCount)
}

func TestRenderEmptyResult(t *testing.T) {
	s := State{Sheet: "Projects"}.WithFilter("Region", "West")
	v, err := Render(fixture(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Summary.RowCount)
	assert.Empty(t, v.Frequencies)
	assert.Nil(t, v.Box)
	assert.Equal(t, "Budget", v.State.Numeric, "chart stays selected and renders empty")

	art, err := v.Export()
	require.NoError(t, err)
	assert.Equal(t, "Name,Region,Budget\n", string(art.Data))
}

func TestRenderGeo(t *testing.T) {
	v, err := Render(fixture(), State{Sheet: "Sitios"})
	require.NoError(t, err)
	assert.True(t, v.Geo)
	require.Len(t, v.Points, 1)
	assert.Equal(t, "Escuela", v.Points[0].Label)
	assert.Equal(t, []string{"Sitio"}, v.Categorical)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(memWorkbook{}, State{})
	assert.ErrorIs(t, err, ErrNoSheets)

	_, err = Render(fixture(), State{Sheet: "Otra"})
	assert.ErrorIs(t, err, errMissing)
}

func TestStateRoundTrip(t *testing.T) {
	s := State{Sheet: "Projects", Categorical: "Region", Numeric: "Budget"}.
		WithFilter("Region", "North", "South", "North")
	assert.Equal(t, []string{"North", "South"}, s.Filters["Region"])

	back := ParseState(s.Values())
	assert.Equal(t, s, back)

	q, err := url.ParseQuery("sheet=Projects&f.Region=North&f.Region=&f.=x&cat=Name")
	require.NoError(t, err)
	got := ParseState(q)
	assert.Equal(t, State{Sheet: "Projects", Filters: table.FilterSpec{"Region": {"North"}}, Categorical: "Name"}, got)
}

func TestStateIsImmutable(t *testing.T) {
	base := State{Sheet: "Projects"}.WithFilter("Region", "North")
	next := base.WithFilter("Region", "South")
	assert.Equal(t, []string{"North"}, base.Filters["Region"])
	assert.Equal(t, []string{"South"}, next.Filters["Region"])

	cleared := next.WithFilter("Region")
	assert.Nil(t, cleared.Filters)
	assert.Len(t, next.Filters, 1)

	switched := base.WithNumeric("Budget").WithSheet("Sitios")
	assert.Equal(t, State{Sheet: "Sitios"}, switched)
	assert.Equal(t, base, base.WithSheet("Projects"))
	assert.Nil(t, base.WithoutFilters().Filters)
}
