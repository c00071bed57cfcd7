package fiscal

import (
	"fmt"
	"strings"
)

// receiptWidth is the column width of the printed receipt, matching the
// paper width of Serbian fiscal printers.
const receiptWidth = 40

// FormatReceipt renders a receipt as a fixed-width, line-oriented text
// block suitable for direct file download. Output is deterministic:
// identical receipts render to byte-identical strings.
func FormatReceipt(r *Receipt) string {
	var b strings.Builder

	divider := strings.Repeat("=", receiptWidth)
	rule := strings.Repeat("-", receiptWidth)

	b.WriteString(divider + "\n")
	b.WriteString(center("FISCAL RECEIPT") + "\n")
	b.WriteString(center(r.BusinessInfo.Name) + "\n")
	b.WriteString(center(r.BusinessInfo.Address) + "\n")
	b.WriteString(center("PIB: "+r.BusinessInfo.TaxID) + "\n")
	b.WriteString(divider + "\n")

	writeField(&b, "Receipt No:", r.ReceiptNumber)
	writeField(&b, "Fiscal No:", r.FiscalReceiptNumber)
	writeField(&b, "Date:", r.IssueDate.Format("02.01.2006 15:04:05"))

	b.WriteString(rule + "\n")
	b.WriteString("ITEMS\n")
	b.WriteString(rule + "\n")
	for _, item := range r.Items {
		b.WriteString(item.Name + "\n")
		qtyLine := fmt.Sprintf("  %d x %.2f", item.Quantity, item.UnitPrice)
		total := fmt.Sprintf("%.2f", item.TotalPrice)
		b.WriteString(qtyLine + pad(qtyLine, total) + total + "\n")
	}
	b.WriteString(rule + "\n")

	writeAmount(&b, "TOTAL:", r.TotalAmount)
	writeAmount(&b, fmt.Sprintf("VAT (%.0f%%):", taxRateOf(r)), r.TaxAmount)
	b.WriteString(rule + "\n")

	writeField(&b, "Payment method:", r.PaymentMethod)
	writeField(&b, "Transaction:", r.TransactionID)
	writeField(&b, "Customer:", r.CustomerInfo.Name)
	if r.CustomerInfo.Email != "" {
		writeField(&b, "", r.CustomerInfo.Email)
	}

	b.WriteString(rule + "\n")
	b.WriteString("PFR Signature:\n")
	b.WriteString(r.PFRSignature + "\n")
	b.WriteString(divider + "\n")
	b.WriteString(center("Thank you for shopping at NOOK!") + "\n")
	b.WriteString(divider + "\n")

	return b.String()
}

// ReceiptFilename is the canonical download name for a formatted receipt.
func ReceiptFilename(r *Receipt) string {
	return fmt.Sprintf("fiscal-receipt-%s.txt", r.ReceiptNumber)
}

// taxRateOf reports the receipt's tax rate for display. All lines carry
// the same rate today; fall back to the standard rate for empty receipts.
func taxRateOf(r *Receipt) float64 {
	if len(r.Items) > 0 {
		return r.Items[0].TaxRate
	}
	return StandardVATRate
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	left := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", left) + s
}

func writeField(b *strings.Builder, label, value string) {
	line := label
	if label != "" {
		line += " "
	}
	b.WriteString(line + value + "\n")
}

func writeAmount(b *strings.Builder, label string, amount float64) {
	value := fmt.Sprintf("%.2f RSD", amount)
	b.WriteString(label + pad(label, value) + value + "\n")
}

// pad returns the spaces needed to right-align value on a receipt line.
func pad(left, right string) string {
	n := receiptWidth - len(left) - len(right)
	if n < 1 {
		n = 1
	}
	return strings.Repeat(" ", n)
}
