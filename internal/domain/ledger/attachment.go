package ledger

// AttachmentCounts is the physical-document tally of one order
type AttachmentCounts struct {
	OrderID      string `json:"order_id"`
	InvoiceCount int    `json:"invoice_count"`
	DCCount      int    `json:"dc_count"`
	MIRCount     int    `json:"mir_count"`
	IsMismatched bool   `json:"is_mismatched"`
}

// CountAttachments tallies invoices, delivery challans and inspection reports
// per order. Every order gets an entry, including orders with nothing attached.
// Attachments pointing at unknown orders are ignored. MIR counts are
// informational and never affect IsMismatched.
func CountAttachments(orders []OrderDocument, attachments []AttachmentDocument) map[string]AttachmentCounts {
	byOrder := GroupBy(attachments, func(a AttachmentDocument) string { return a.AssociatedOrderID })

	counts := make(map[string]AttachmentCounts, len(orders))
	for _, o := range orders {
		c := AttachmentCounts{
			OrderID:      o.ID,
			InvoiceCount: len(o.InvoiceLines),
		}
		for _, a := range byOrder[o.ID] {
			switch a.Type {
			case AttachmentTypeDeliveryChallan:
				c.DCCount++
			case AttachmentTypeInspectionReport:
				c.MIRCount++
			}
		}
		c.IsMismatched = c.InvoiceCount != c.DCCount
		counts[o.ID] = c
	}
	return counts
}

// MismatchFilter returns the predicate used by the attachment report.
// With onlyMismatched false every order passes.
func MismatchFilter(onlyMismatched bool) func(AttachmentCounts) bool {
	return func(c AttachmentCounts) bool {
		return !onlyMismatched || c.IsMismatched
	}
}
