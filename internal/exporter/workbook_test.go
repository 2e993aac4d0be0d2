package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"workpulse/pkg/contracts/domain"
)

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbook_Sheets(t *testing.T) {
	result := analysed(t, fixtureRoster)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbook(testLogger()).Write(&buf, result.Data, result.Summary))

	f := openWorkbook(t, &buf)
	assert.Equal(t, []string{"All Employees", "Full-Time", "Part-Time", "Productive", "Not Productive", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("All Employees")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, EnrichedHeaders, rows[0])
	assert.Equal(t, "EMP0001", rows[1][0])

	ft, err := f.GetRows("Full-Time")
	require.NoError(t, err)
	assert.Len(t, ft, 3)

	pt, err := f.GetRows("Part-Time")
	require.NoError(t, err)
	require.Len(t, pt, 2)
	assert.Equal(t, "EMP0002", pt[1][0])
}

func TestWorkbook_SkipsEmptySegments(t *testing.T) {
	result := analysed(t, fixtureRoster[:1])

	var buf bytes.Buffer
	require.NoError(t, NewWorkbook(nil).Write(&buf, result.Data, result.Summary))

	f := openWorkbook(t, &buf)
	assert.Equal(t, []string{"All Employees", "Full-Time", "Productive", "Summary"}, f.GetSheetList())
}

func TestWorkbook_Empty(t *testing.T) {
	result := analysed(t, []domain.EmployeeRecord{})

	var buf bytes.Buffer
	require.NoError(t, NewWorkbook(nil).Write(&buf, result.Data, result.Summary))

	f := openWorkbook(t, &buf)
	assert.Equal(t, []string{"All Employees", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"Total Employees", "0"}, rows[1])
	assert.Equal(t, []string{"Average Productivity %"}, rows[4], "null average leaves the cell blank")
}

func TestWorkbook_SummaryDepartments(t *testing.T) {
	result := analysed(t, fixtureRoster)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbook(nil).Write(&buf, result.Data, result.Summary))

	f := openWorkbook(t, &buf)
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)

	var depts []string
	inDepts := false
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Department" {
			inDepts = true
			continue
		}
		if inDepts && len(row) > 0 {
			depts = append(depts, row[0])
		}
	}
	assert.Equal(t, []string{"Customer Service Operations", "Engineering", "Sales"}, depts)
}

func TestWriteRoster(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, "Employee Data", fixtureRoster))

	f := openWorkbook(t, &buf)
	assert.Equal(t, []string{"Employee Data"}, f.GetSheetList())

	rows, err := f.GetRows("Employee Data")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, RosterHeaders, rows[0])
	assert.Equal(t, []string{"EMP0002", "Employee 2", "Sales", "Part-Time", "50", "2"}, rows[2])
}
