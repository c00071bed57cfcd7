package email

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// OrderEmailData carries everything needed to render an order
// confirmation email, including the optional fiscal receipt block.
type OrderEmailData struct {
	CustomerEmail   string           `json:"customerEmail"`
	CustomerName    string           `json:"customerName"`
	OrderNumber     string           `json:"orderNumber"`
	OrderDate       string           `json:"orderDate"`
	Items           []OrderEmailItem `json:"items"`
	Subtotal        float64          `json:"subtotal"`
	Shipping        float64          `json:"shipping"`
	Tax             float64          `json:"tax"`
	Total           float64          `json:"total"`
	ShippingAddress EmailAddress     `json:"shippingAddress"`
	PaymentIntentID string           `json:"paymentIntentId,omitempty"`
	FiscalReceipt   *FiscalBlock     `json:"fiscalReceipt,omitempty"`
}

func (d OrderEmailData) Subject() string {
	return "Order Confirmation - " + d.OrderNumber
}

// OrderEmailItem is a line item rendered in the order table.
type OrderEmailItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// EmailAddress is the shipping address block of the email.
type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// FiscalBlock holds the fiscal receipt fields shown in the email body.
// FormattedReceipt is attached as a file rather than rendered inline.
type FiscalBlock struct {
	ReceiptNumber       string `json:"receiptNumber"`
	FiscalReceiptNumber string `json:"fiscalReceiptNumber"`
	QRCode              string `json:"qrCode"`
	PFRSignature        string `json:"pfrSignature"`
	FormattedReceipt    string `json:"formattedReceipt"`
}

// formatRSD renders an amount with Serbian digit grouping, e.g.
// 5800 -> "5.800" and 966.67 -> "966,67".
func formatRSD(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	whole := int64(amount)
	frac := amount - float64(whole)

	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	out := grouped.String()
	if cents := int64(math.Floor(frac*100 + 0.5)); cents > 0 {
		out = fmt.Sprintf("%s,%02d", out, cents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

var orderEmailTmpl = template.Must(template.New("order_confirmation").
	Funcs(template.FuncMap{
		"rsd": formatRSD,
		"shortID": func(s string) string {
			if len(s) > 20 {
				return s[:20] + "..."
			}
			return s
		},
	}).
	Parse(orderEmailHTML))

const orderEmailHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Confirmation</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #A72729 0%, #8B1E20 100%); padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">Order Confirmed!</h1>
  </div>

  <div style="background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 8px 8px;">
    <p style="font-size: 16px; margin-bottom: 20px;">Dear {{.CustomerName}},</p>

    <p style="font-size: 16px; margin-bottom: 20px;">
      Thank you for your order! We're excited to prepare your items for shipment.
    </p>

    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin-bottom: 30px;">
      <h2 style="margin-top: 0; color: #A72729; font-size: 20px;">Order Details</h2>
      <table style="width: 100%; border-collapse: collapse; margin-top: 15px;">
        <tr>
          <td style="padding: 8px 0; color: #6b7280;"><strong>Order Number:</strong></td>
          <td style="padding: 8px 0; text-align: right; font-weight: 600;">{{.OrderNumber}}</td>
        </tr>
        <tr>
          <td style="padding: 8px 0; color: #6b7280;"><strong>Order Date:</strong></td>
          <td style="padding: 8px 0; text-align: right;">{{.OrderDate}}</td>
        </tr>
        {{if .PaymentIntentID}}
        <tr>
          <td style="padding: 8px 0; color: #6b7280;"><strong>Payment ID:</strong></td>
          <td style="padding: 8px 0; text-align: right; font-family: monospace; font-size: 12px;">{{shortID .PaymentIntentID}}</td>
        </tr>
        {{end}}
      </table>
    </div>

    <h2 style="color: #A72729; font-size: 20px; margin-top: 30px; margin-bottom: 15px;">Items Ordered</h2>
    <table style="width: 100%; border-collapse: collapse; margin-bottom: 20px;">
      <thead>
        <tr style="background: #f9fafb;">
          <th style="padding: 12px; text-align: left; border-bottom: 2px solid #e5e7eb; font-weight: 600;">Item</th>
          <th style="padding: 12px; text-align: center; border-bottom: 2px solid #e5e7eb; font-weight: 600;">Qty</th>
          <th style="padding: 12px; text-align: right; border-bottom: 2px solid #e5e7eb; font-weight: 600;">Price</th>
          <th style="padding: 12px; text-align: right; border-bottom: 2px solid #e5e7eb; font-weight: 600;">Total</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td style="padding: 12px; border-bottom: 1px solid #e5e7eb;">{{.Name}}</td>
          <td style="padding: 12px; border-bottom: 1px solid #e5e7eb; text-align: center;">{{.Quantity}}</td>
          <td style="padding: 12px; border-bottom: 1px solid #e5e7eb; text-align: right;">{{rsd .Price}} RSD</td>
          <td style="padding: 12px; border-bottom: 1px solid #e5e7eb; text-align: right; font-weight: 600;">{{rsd .Total}} RSD</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin-top: 20px;">
      <table style="width: 100%; border-collapse: collapse;">
        <tr>
          <td style="padding: 8px 0; color: #6b7280;">Subtotal:</td>
          <td style="padding: 8px 0; text-align: right; font-weight: 600;">{{rsd .Subtotal}} RSD</td>
        </tr>
        <tr>
          <td style="padding: 8px 0; color: #6b7280;">Shipping:</td>
          <td style="padding: 8px 0; text-align: right; font-weight: 600;">{{rsd .Shipping}} RSD</td>
        </tr>
        <tr>
          <td style="padding: 8px 0; color: #6b7280;">VAT (20%):</td>
          <td style="padding: 8px 0; text-align: right; font-weight: 600;">{{rsd .Tax}} RSD</td>
        </tr>
        <tr style="border-top: 2px solid #e5e7eb;">
          <td style="padding: 12px 0; font-size: 18px; font-weight: 700; color: #A72729;">Total:</td>
          <td style="padding: 12px 0; text-align: right; font-size: 18px; font-weight: 700; color: #A72729;">{{rsd .Total}} RSD</td>
        </tr>
      </table>
    </div>

    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin-top: 30px;">
      <h3 style="margin-top: 0; color: #A72729; font-size: 18px;">Shipping Address</h3>
      <p style="margin: 5px 0;">
        {{.ShippingAddress.Name}}<br>
        {{.ShippingAddress.Address}}<br>
        {{.ShippingAddress.City}}, {{.ShippingAddress.ZipCode}}<br>
        {{.ShippingAddress.Country}}
      </p>
    </div>

    {{if .FiscalReceipt}}
    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin-top: 30px; border: 2px solid #A72729;">
      <h3 style="margin-top: 0; color: #A72729; font-size: 18px;">Fiscal Receipt</h3>
      <p style="margin: 5px 0; font-size: 14px;">
        <strong>Receipt No:</strong> {{.FiscalReceipt.ReceiptNumber}}<br>
        <strong>Fiscal No:</strong> {{.FiscalReceipt.FiscalReceiptNumber}}<br>
        <strong>PFR Signature:</strong> {{.FiscalReceipt.PFRSignature}}
      </p>
      {{if .FiscalReceipt.QRCode}}
      <div style="text-align: center; margin: 15px 0;">
        <img src="{{.FiscalReceipt.QRCode}}" alt="Fiscal Receipt QR Code" style="max-width: 150px; height: auto;" />
      </div>
      {{end}}
      <p style="margin-top: 15px; font-size: 12px; color: #6b7280;">
        Your fiscal receipt is attached to this email. This receipt is registered with the Serbian Tax Authority.
      </p>
    </div>
    {{end}}

    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb;">
      <p style="font-size: 14px; color: #6b7280; margin-bottom: 10px;">
        You will receive a shipping confirmation email with tracking information once your order ships.
      </p>
      <p style="font-size: 14px; color: #6b7280; margin: 0;">
        If you have any questions, please contact us at <a href="mailto:info@nook.com" style="color: #A72729;">info@nook.com</a>
      </p>
    </div>

    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; text-align: center;">
      <p style="font-size: 12px; color: #9ca3af; margin: 0;">
        NOOK - Textile Store<br>
        123 Textile Street, Belgrade, Serbia
      </p>
    </div>
  </div>
</body>
</html>
`

// RenderOrderHTML renders the HTML body of an order confirmation.
func RenderOrderHTML(data OrderEmailData) (string, error) {
	var buf strings.Builder
	if err := orderEmailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email: render order confirmation: %w", err)
	}
	return buf.String(), nil
}

// RenderOrderText renders the plain text body of an order confirmation.
func RenderOrderText(data OrderEmailData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order Confirmation - %s\n\n", data.OrderNumber)
	fmt.Fprintf(&b, "Dear %s,\n\n", data.CustomerName)
	b.WriteString("Thank you for your order! We're excited to prepare your items for shipment.\n\n")

	b.WriteString("ORDER DETAILS\n-------------\n")
	fmt.Fprintf(&b, "Order Number: %s\n", data.OrderNumber)
	fmt.Fprintf(&b, "Order Date: %s\n", data.OrderDate)
	if data.PaymentIntentID != "" {
		fmt.Fprintf(&b, "Payment ID: %s\n", data.PaymentIntentID)
	}
	b.WriteString("\nITEMS ORDERED\n-------------\n")
	for _, item := range data.Items {
		fmt.Fprintf(&b, "  %s x %d - %s RSD\n", item.Name, item.Quantity, formatRSD(item.Total))
	}

	b.WriteString("\nORDER SUMMARY\n-------------\n")
	fmt.Fprintf(&b, "Subtotal: %s RSD\n", formatRSD(data.Subtotal))
	fmt.Fprintf(&b, "Shipping: %s RSD\n", formatRSD(data.Shipping))
	fmt.Fprintf(&b, "VAT (20%%): %s RSD\n", formatRSD(data.Tax))
	fmt.Fprintf(&b, "Total: %s RSD\n", formatRSD(data.Total))

	b.WriteString("\nSHIPPING ADDRESS\n----------------\n")
	fmt.Fprintf(&b, "%s\n%s\n%s, %s\n%s\n",
		data.ShippingAddress.Name, data.ShippingAddress.Address,
		data.ShippingAddress.City, data.ShippingAddress.ZipCode,
		data.ShippingAddress.Country)

	if data.FiscalReceipt != nil {
		b.WriteString("\nFISCAL RECEIPT\n--------------\n")
		fmt.Fprintf(&b, "Receipt No: %s\n", data.FiscalReceipt.ReceiptNumber)
		fmt.Fprintf(&b, "Fiscal No: %s\n", data.FiscalReceipt.FiscalReceiptNumber)
		fmt.Fprintf(&b, "PFR Signature: %s\n", data.FiscalReceipt.PFRSignature)
		b.WriteString("\nYour fiscal receipt is attached to this email.\n")
	}

	b.WriteString("\nYou will receive a shipping confirmation email with tracking information once your order ships.\n\n")
	b.WriteString("If you have any questions, please contact us at info@nook.com\n\n")
	b.WriteString("---\nNOOK - Textile Store\n123 Textile Street, Belgrade, Serbia\n")

	return b.String()
}
