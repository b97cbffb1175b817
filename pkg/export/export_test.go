package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Enrollment requests",
		Columns: []string{"Student", "Slots"},
		Rows: [][]string{
			{"stu-1", "Monday 9:00 AM - 10:00 AM"},
			{"stu-2", "Tuesday 6:00 PM - 7:00 PM, with \"quotes\""},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, "pdf", f.Extension())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRendererRender(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Student,Slots\nstu-1,Monday 9:00 AM - 10:00 AM\nstu-2,\"Tuesday 6:00 PM - 7:00 PM, with \"\"quotes\"\"\"\n", string(out))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-one"})
	_, err := RendererFor(FormatCSV).Render(table)
	assert.Error(t, err)

	_, err = RendererFor(FormatPDF).Render(Table{})
	assert.Error(t, err)
}

func TestPDFRendererRender(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"stu-x", "a very long slot description that will need to be truncated to fit inside the column"})
	}
	out, err := RendererFor(FormatPDF).Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
