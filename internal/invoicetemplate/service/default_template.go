package service

import (
	"strings"

	"github.com/smallbiznis/propbill/internal/docx"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
)

func paragraphXML(text string, bold bool) string {
	rPr := ""
	if bold {
		rPr = `<w:rPr><w:b/></w:rPr>`
	}
	return `<w:p><w:r>` + rPr + `<w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func rowXML(cells ...string) string {
	var b strings.Builder
	b.WriteString(`<w:tr>`)
	for _, cell := range cells {
		b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="9360" w:type="dxa"/></w:tcPr>`)
		b.WriteString(paragraphXML(cell, false))
		b.WriteString(`</w:tc>`)
	}
	b.WriteString(`</w:tr>`)
	return b.String()
}

// defaultTemplate renders the built-in invoice layout using the full vocabulary.
func defaultTemplate() ([]byte, error) {
	var body strings.Builder
	body.WriteString(paragraphXML("INVOICE", true))
	body.WriteString(paragraphXML("Date: "+templatedomain.PlaceholderInvoiceDate, false))
	body.WriteString(paragraphXML("Bill to: "+templatedomain.PlaceholderCustomerName, false))
	body.WriteString(paragraphXML(templatedomain.PlaceholderCustomerEmail, false))
	body.WriteString(paragraphXML(templatedomain.PlaceholderPropertyAddress, false))
	body.WriteString(paragraphXML(templatedomain.PlaceholderPropertyCity+", "+templatedomain.PlaceholderPropertyState+" "+templatedomain.PlaceholderPropertyZip, false))
	body.WriteString(paragraphXML("Billing period: "+templatedomain.PlaceholderPeriod, false))

	body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="9360" w:type="dxa"/></w:tblPr><w:tblGrid><w:gridCol w:w="9360"/></w:tblGrid>`)
	body.WriteString(rowXML(templatedomain.PlaceholderPeriod + " " + templatedomain.PlaceholderFeeType + " (" + templatedomain.PlaceholderPeriodDates + ") = " + templatedomain.PlaceholderAmount))
	body.WriteString(rowXML(templatedomain.PlaceholderFeeLine2))
	body.WriteString(rowXML(templatedomain.PlaceholderFeeLine3))
	body.WriteString(rowXML(templatedomain.PlaceholderAdditionalFeeLine))
	body.WriteString(rowXML("Total due: " + templatedomain.PlaceholderTotalAmount))
	body.WriteString(`</w:tbl>`)

	body.WriteString(paragraphXML("Thank you for your business.", false))

	doc, err := docx.New(body.String())
	if err != nil {
		return nil, err
	}
	return doc.Bytes()
}
