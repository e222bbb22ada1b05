package format

import (
	"fmt"
	"strings"
)

var unsafeFilenameChars = strings.NewReplacer(" ", "_", "/", "-")

// StreetName drops the leading street-number token from an address.
func StreetName(address string) string {
	address = strings.TrimSpace(address)
	if _, rest, ok := strings.Cut(address, " "); ok && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	return address
}

// Filename builds Invoice_<period>_<street>.docx with spaces and slashes sanitized.
func Filename(periodLabel, address string) string {
	return fmt.Sprintf("Invoice_%s_%s.docx",
		unsafeFilenameChars.Replace(periodLabel),
		unsafeFilenameChars.Replace(StreetName(address)),
	)
}

// PDFFilename swaps the .docx extension for .pdf.
func PDFFilename(docxName string) string {
	return strings.TrimSuffix(docxName, ".docx") + ".pdf"
}
