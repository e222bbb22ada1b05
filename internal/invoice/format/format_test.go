package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		address string
		want    string
	}{
		{"monthly", "March 2025", "123 Main St", "Invoice_March_2025_Main_St.docx"},
		{"quarterly", "4th quarter 2025", "9 Elm Ave Unit 2/B", "Invoice_4th_quarter_2025_Elm_Ave_Unit_2-B.docx"},
		{"iso label", "2025-06-15", "Lakeview", "Invoice_2025-06-15_Lakeview.docx"},
		{"no street number", "2025", "  Farmhouse  ", "Invoice_2025_Farmhouse.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.period, tt.address))
		})
	}
}

func TestFilenameDiffersAcrossPeriods(t *testing.T) {
	assert.NotEqual(t, Filename("March 2025", "1 Oak St"), Filename("April 2025", "1 Oak St"))
}

func TestEmailDraft(t *testing.T) {
	assert.Equal(t, "Invoice – March 2025 – 123 Main St", EmailSubject("March 2025", "123 Main St"))
	assert.Equal(t,
		"Hi Jane,\n\nAttached is your invoice for March 2025 (Management Fee) for the property at 123 Main St.\n\nAmount due: $605.00\n\nThank you,\nProperty Manager",
		EmailBody("Jane", "March 2025", "Management Fee", "123 Main St", "$605.00", "Property Manager"),
	)
}

func TestPDFFilename(t *testing.T) {
	assert.Equal(t, "Invoice_March_2025_Main_St.pdf", PDFFilename("Invoice_March_2025_Main_St.docx"))
}
