package fiscal

import "time"

// Business identity printed on every receipt. Matches the storefront's
// registered retail entity.
const (
	BusinessName    = "NOOK - Textile Store"
	BusinessTaxID   = "RS112233445"
	BusinessAddress = "123 Textile Street, Belgrade, Serbia"
)

// ReceiptItem is one taxed line on a fiscal receipt. The synthetic
// "Shipping" line uses the same shape as product lines.
type ReceiptItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	TaxRate    float64 `json:"taxRate"`
}

// BusinessInfo identifies the issuing retailer.
type BusinessInfo struct {
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Address string `json:"address"`
}

// CustomerInfo identifies the buyer on the receipt.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Receipt is a tax-authority-compliant record of a sale. It is created
// once per successful payment and immutable afterwards.
type Receipt struct {
	ReceiptNumber       string            `json:"receiptNumber"`
	FiscalReceiptNumber string            `json:"fiscalReceiptNumber"`
	IssueDate           time.Time         `json:"issueDate"`
	BusinessInfo        BusinessInfo      `json:"businessInfo"`
	Items               []ReceiptItem     `json:"items"`
	TotalAmount         float64           `json:"totalAmount"`
	TaxAmount           float64           `json:"taxAmount"`
	PaymentMethod       string            `json:"paymentMethod"`
	CustomerInfo        CustomerInfo      `json:"customerInfo"`
	TransactionID       string            `json:"transactionId"`
	QRCode              string            `json:"qrCode"`
	PFRSignature        string            `json:"pfrSignature"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// ReceiptRequest bundles everything needed to issue a receipt for one
// completed payment.
type ReceiptRequest struct {
	Items         []ReceiptItem     `json:"items"`
	TotalAmount   float64           `json:"totalAmount"`
	PaymentMethod string            `json:"paymentMethod"`
	CustomerInfo  CustomerInfo      `json:"customerInfo"`
	TransactionID string            `json:"transactionId"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ReceiptResult is the structured response of the fiscal collaborator.
// Failure to issue a receipt is non-fatal for checkout: Success=false
// with an Error message, never a panic or a lost payment.
type ReceiptResult struct {
	Success bool     `json:"success"`
	Receipt *Receipt `json:"receipt,omitempty"`
	Error   string   `json:"error,omitempty"`
}
