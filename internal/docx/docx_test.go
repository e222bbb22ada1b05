package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureBody = `<w:p><w:r><w:rPr><w:b/><w:sz w:val="20"/></w:rPr><w:t>Bill to: {{CUSTOMER_</w:t></w:r><w:r><w:t>NAME}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Static heading</w:t></w:r></w:p>` +
	`<w:tbl>` +
	`<w:tr><w:tc><w:p><w:r><w:t>{{FEE_LINE_2}}</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>row two</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>{{FEE_LINE_3}}</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>row three</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Total {{TOTAL_AMOUNT}}</w:t></w:r></w:p></w:tc></w:tr>` +
	`</w:tbl>` +
	`<w:p><w:r><w:t>{{ADDITIONAL_FEE_LINE}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>City: {{PROPERTY_CITY}}</w:t></w:r></w:p>`

func fixtureRules(fee3, additional string) Rules {
	return Rules{
		Values: map[string]string{
			"{{CUSTOMER_NAME}}":       "Jane Doe",
			"{{FEE_LINE_2}}":          "March 2025 Late Fee (03/01/2025 - 03/31/2025) = $50.00",
			"{{FEE_LINE_3}}":          fee3,
			"{{ADDITIONAL_FEE_LINE}}": additional,
			"{{TOTAL_AMOUNT}}":        "$1,550.00",
			"{{PROPERTY_CITY}}":       "",
		},
		Removable: []string{"{{FEE_LINE_2}}", "{{FEE_LINE_3}}", "{{ADDITIONAL_FEE_LINE}}"},
		Spaced:    []string{"{{FEE_LINE_2}}", "{{FEE_LINE_3}}", "{{ADDITIONAL_FEE_LINE}}"},
		Style:     DefaultStyle(),
	}
}

func roundTrip(t *testing.T, doc *Document) *Document {
	t.Helper()
	data, err := doc.Bytes()
	require.NoError(t, err)
	reopened, err := Open(data)
	require.NoError(t, err)
	return reopened
}

func TestPlaceholdersAcrossRuns(t *testing.T) {
	doc, err := New(fixtureBody)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{{ADDITIONAL_FEE_LINE}}",
		"{{CUSTOMER_NAME}}",
		"{{FEE_LINE_2}}",
		"{{FEE_LINE_3}}",
		"{{PROPERTY_CITY}}",
		"{{TOTAL_AMOUNT}}",
	}, roundTrip(t, doc).Placeholders())
}

func TestFillRemovesEmptyFeeRowAndKeepsOthers(t *testing.T) {
	doc, err := New(fixtureBody)
	require.NoError(t, err)

	report := doc.Fill(fixtureRules("", "Air Purifier = $300.00\n\nManagement Fee (12 Oak St) = $125.00"))
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 5, report.Substituted)

	filled := roundTrip(t, doc)
	text := filled.Text()

	assert.Equal(t, 2, filled.TableRowCount())
	assert.NotContains(t, text, "row three")
	assert.NotContains(t, text, "{{")
	assert.Contains(t, text, "Bill to: Jane Doe")
	assert.Contains(t, text, "March 2025 Late Fee (03/01/2025 - 03/31/2025) = $50.00")
	assert.Contains(t, text, "Air Purifier = $300.00\n\nManagement Fee (12 Oak St) = $125.00")
	assert.Contains(t, text, "Total $1,550.00")
	assert.Contains(t, text, "City: ")
	assert.Contains(t, text, "Static heading")
}

func TestFillRemovesEmptyBodyParagraph(t *testing.T) {
	doc, err := New(fixtureBody)
	require.NoError(t, err)

	doc.Fill(fixtureRules("x", ""))

	assert.Len(t, doc.Paragraphs(), 8)
	assert.NotContains(t, doc.Text(), "ADDITIONAL_FEE_LINE")
	assert.Equal(t, 3, doc.TableRowCount())
}

func TestFillStampsFontAndSpacing(t *testing.T) {
	doc, err := New(fixtureBody)
	require.NoError(t, err)

	doc.Fill(fixtureRules("", "Parking = $25.00"))

	data, err := doc.Bytes()
	require.NoError(t, err)
	reopened, err := Open(data)
	require.NoError(t, err)
	xml, err := reopened.main.WriteToString()
	require.NoError(t, err)

	assert.Contains(t, xml, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri" w:eastAsia="Calibri"/>`)
	assert.Contains(t, xml, `<w:sz w:val="28"/>`)
	assert.NotContains(t, xml, `<w:sz w:val="20"/>`)
	assert.Contains(t, xml, `<w:spacing w:after="240" w:line="240" w:lineRule="auto"/>`)
	assert.Contains(t, xml, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri" w:eastAsia="Calibri"/><w:b/><w:sz w:val="28"/><w:szCs w:val="28"/>`)
	assert.Equal(t, 2, strings.Count(xml, `w:lineRule="auto"`))
}

func TestFillIgnoresParagraphsWithoutTokens(t *testing.T) {
	doc, err := New(`<w:p><w:r><w:rPr><w:sz w:val="18"/></w:rPr><w:t>Nothing here</w:t></w:r></w:p>`)
	require.NoError(t, err)

	report := doc.Fill(fixtureRules("", ""))
	assert.Equal(t, Report{}, report)

	xml, err := doc.main.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, xml, `<w:sz w:val="18"/>`)
}

func TestFillDropsTableWhenAllRowsRemoved(t *testing.T) {
	doc, err := New(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>{{FEE_LINE_3}}</w:t></w:r></w:p></w:tc></w:tr></w:tbl><w:p><w:r><w:t>after</w:t></w:r></w:p>`)
	require.NoError(t, err)

	doc.Fill(fixtureRules("", "y"))

	assert.Equal(t, 0, doc.TableRowCount())
	assert.Equal(t, []string{"after"}, doc.Paragraphs())
}

func TestFillKeepsEmbeddedContent(t *testing.T) {
	doc, err := New(`<w:p>` +
		`<w:r><w:t>Outer {{PERIOD}}</w:t></w:r>` +
		`<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>{{CUSTOMER_NAME}}</w:t></w:r></w:p></w:txbxContent></w:pict></w:r>` +
		`<w:r><w:drawing/></w:r>` +
		`</w:p>`)
	require.NoError(t, err)

	report := doc.Fill(Rules{
		Values: map[string]string{
			"{{PERIOD}}":        "March 2025",
			"{{CUSTOMER_NAME}}": "Jane Doe",
		},
		Style: DefaultStyle(),
	})

	assert.Equal(t, Report{Substituted: 2}, report)
	reopened := roundTrip(t, doc)
	assert.Equal(t, []string{"Outer March 2025", "Jane Doe"}, reopened.Paragraphs())

	xml, err := reopened.main.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, xml, `<w:drawing/>`)
	assert.Less(t, strings.Index(xml, "Outer March 2025"), strings.Index(xml, "<w:pict>"))
}

func TestFillSkipsParagraphsInsideRemovedRows(t *testing.T) {
	doc, err := New(`<w:tbl><w:tr>` +
		`<w:tc><w:p><w:r><w:t>{{FEE_LINE_3}}</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>{{TOTAL_AMOUNT}}</w:t></w:r></w:p></w:tc>` +
		`</w:tr></w:tbl>`)
	require.NoError(t, err)

	report := doc.Fill(fixtureRules("", "x"))

	assert.Equal(t, Report{Deleted: 1}, report)
	assert.Empty(t, doc.Paragraphs())
}

func TestOpenRejectsNonDocx(t *testing.T) {
	_, err := Open([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrNotWordDocument)
}
