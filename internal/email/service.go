package email

import (
	"context"
	"fmt"
	"log/slog"
)

// Service composes and sends order confirmation emails. A primary
// sender is tried first; if delivery fails the mock sender takes over
// so checkout never blocks on the mail backend.
type Service struct {
	primary     Sender
	mock        *MockSender
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

// NewService creates an email service. primary may be nil, in which
// case every message goes through the mock sender.
func NewService(primary Sender, fromAddress, fromName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		primary:     primary,
		mock:        NewMockSender(logger),
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger,
	}
}

// SendOrderConfirmation renders and delivers the order confirmation
// email, attaching the formatted fiscal receipt when present. It
// always reports success; delivery problems are downgraded to the
// mock sender and logged.
func (s *Service) SendOrderConfirmation(ctx context.Context, data OrderEmailData) (*SendResult, error) {
	if data.CustomerEmail == "" {
		return nil, ErrInvalidToAddress
	}

	htmlBody, err := RenderOrderHTML(data)
	if err != nil {
		return nil, err
	}

	msg := &Email{
		To:       []string{data.CustomerEmail},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		Subject:  data.Subject(),
		HTMLBody: htmlBody,
		TextBody: RenderOrderText(data),
	}

	if data.FiscalReceipt != nil && data.FiscalReceipt.FormattedReceipt != "" {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    fmt.Sprintf("fiscal-receipt-%s.txt", data.FiscalReceipt.ReceiptNumber),
			ContentType: "text/plain",
			Content:     []byte(data.FiscalReceipt.FormattedReceipt),
		})
	}

	if s.primary != nil {
		messageID, err := s.primary.Send(ctx, msg)
		if err == nil {
			return &SendResult{Success: true, MessageID: messageID}, nil
		}
		s.logger.Warn("email backend unavailable, using mock sender",
			"order_number", data.OrderNumber,
			"error", err,
		)
	}

	messageID, err := s.mock.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &SendResult{Success: true, MessageID: messageID}, nil
}
