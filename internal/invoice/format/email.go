package format

import "fmt"

// EmailSubject is the subject line of the invoice email draft.
func EmailSubject(periodLabel, address string) string {
	return fmt.Sprintf("Invoice – %s – %s", periodLabel, address)
}

// EmailBody is the plain text body of the invoice email draft.
func EmailBody(customerName, periodLabel, feeType, address, total, senderName string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nAttached is your invoice for %s (%s) for the property at %s.\n\nAmount due: %s\n\nThank you,\n%s",
		customerName,
		periodLabel,
		feeType,
		address,
		total,
		senderName,
	)
}
