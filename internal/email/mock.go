package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockSender is a test email sender. It records every message and
// returns generated message IDs without delivering anything.
type MockSender struct {
	mu sync.Mutex

	// SendFunc overrides the default behavior when set.
	SendFunc func(ctx context.Context, email *Email) (string, error)

	// Sent records every email passed to Send.
	Sent []*Email

	// CallLog tracks method invocations for assertions.
	CallLog []string

	logger *slog.Logger
}

// NewMockSender creates a mock sender that logs each message at Info.
func NewMockSender(logger *slog.Logger) *MockSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSender{logger: logger}
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "Send")
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}

	m.mu.Lock()
	m.Sent = append(m.Sent, email)
	m.mu.Unlock()

	messageID := fmt.Sprintf("msg_%d_%s", time.Now().UnixMilli(), randomToken(9))

	m.logger.Info("email would be sent (test mode)",
		"to", strings.Join(email.To, ","),
		"subject", email.Subject,
		"message_id", messageID,
		"attachments", len(email.Attachments),
	)
	return messageID, nil
}

// LastSent returns the most recently recorded email, or nil.
func (m *MockSender) LastSent() *Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

func randomToken(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
