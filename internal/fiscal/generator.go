package fiscal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces locally issued receipts when the fiscalization
// backend is unreachable. Identifiers are opaque and unique per call;
// the PFR signature and QR code are placeholders until a real fiscal
// device signs the receipt.
type Generator struct {
	// Now allows tests to pin the issue timestamp.
	Now func() time.Time
}

// NewGenerator creates a receipt generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

// Generate builds a complete receipt from the request. The tax amount is
// always computed through CalculateVAT so the receipt invariant
// taxAmount == VAT(totalAmount, rate) holds by construction.
func (g *Generator) Generate(req ReceiptRequest) (*Receipt, error) {
	now := g.Now()

	tax, err := CalculateVAT(req.TotalAmount, StandardVATRate)
	if err != nil {
		return nil, err
	}

	items := make([]ReceiptItem, len(req.Items))
	copy(items, req.Items)
	for i := range items {
		if items[i].TaxRate == 0 {
			items[i].TaxRate = StandardVATRate
		}
	}

	receiptNumber := fmt.Sprintf("NOOK-%d-%s", now.Unix(), randomSuffix(6))
	fiscalNumber := fmt.Sprintf("RS-%s-%s", now.Format("20060102"), randomSuffix(6))

	return &Receipt{
		ReceiptNumber:       receiptNumber,
		FiscalReceiptNumber: fiscalNumber,
		IssueDate:           now,
		BusinessInfo: BusinessInfo{
			Name:    BusinessName,
			TaxID:   BusinessTaxID,
			Address: BusinessAddress,
		},
		Items:         items,
		TotalAmount:   req.TotalAmount,
		TaxAmount:     tax,
		PaymentMethod: req.PaymentMethod,
		CustomerInfo:  req.CustomerInfo,
		TransactionID: req.TransactionID,
		QRCode:        qrPlaceholder(receiptNumber),
		PFRSignature:  pfrPlaceholder(),
		Metadata:      req.Metadata,
	}, nil
}

// randomSuffix returns n uppercase characters of a fresh UUID.
func randomSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// pfrPlaceholder stands in for the signature a Serbian fiscal device
// attaches to receipts.
func pfrPlaceholder() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "") +
		strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw)
}

// qrPlaceholder produces a data-URI placeholder in place of the tax
// authority verification QR code.
func qrPlaceholder(receiptNumber string) string {
	payload := base64.StdEncoding.EncodeToString([]byte("suf.purs.gov.rs/v/?vl=" + receiptNumber))
	return "data:image/png;base64," + payload
}
