package domain

const (
	PlaceholderCustomerName      = "{{CUSTOMER_NAME}}"
	PlaceholderCustomerEmail     = "{{CUSTOMER_EMAIL}}"
	PlaceholderPropertyAddress   = "{{PROPERTY_ADDRESS}}"
	PlaceholderPropertyCity      = "{{PROPERTY_CITY}}"
	PlaceholderPropertyState     = "{{PROPERTY_STATE}}"
	PlaceholderPropertyZip       = "{{PROPERTY_ZIP}}"
	PlaceholderPeriod            = "{{PERIOD}}"
	PlaceholderPeriodDates       = "{{PERIOD_DATES}}"
	PlaceholderAmount            = "{{AMOUNT}}"
	PlaceholderInvoiceDate       = "{{INVOICE_DATE}}"
	PlaceholderFeeType           = "{{FEE_TYPE}}"
	PlaceholderTotalAmount       = "{{TOTAL_AMOUNT}}"
	PlaceholderFeeLine2          = "{{FEE_LINE_2}}"
	PlaceholderFeeLine3          = "{{FEE_LINE_3}}"
	PlaceholderAdditionalFeeLine = "{{ADDITIONAL_FEE_LINE}}"
)

// Vocabulary is every placeholder an invoice fill supplies.
var Vocabulary = []string{
	PlaceholderCustomerName,
	PlaceholderCustomerEmail,
	PlaceholderPropertyAddress,
	PlaceholderPropertyCity,
	PlaceholderPropertyState,
	PlaceholderPropertyZip,
	PlaceholderPeriod,
	PlaceholderPeriodDates,
	PlaceholderAmount,
	PlaceholderInvoiceDate,
	PlaceholderFeeType,
	PlaceholderTotalAmount,
	PlaceholderFeeLine2,
	PlaceholderFeeLine3,
	PlaceholderAdditionalFeeLine,
}

// FeeLinePlaceholders mark optional rows that are removed when empty.
var FeeLinePlaceholders = []string{
	PlaceholderFeeLine2,
	PlaceholderFeeLine3,
	PlaceholderAdditionalFeeLine,
}
