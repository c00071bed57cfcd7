package fiscal

import (
	"context"
	"log/slog"

	"github.com/nooktextiles/nook/internal/remote"
)

// Service issues fiscal receipts for completed payments.
// The production implementation talks to the fiscalization backend and
// silently degrades to a locally generated receipt when the backend is
// unreachable, so a succeeded payment is never left without a receipt
// record in demo/test environments.
type Service interface {
	IssueReceipt(ctx context.Context, req ReceiptRequest) (*ReceiptResult, error)
}

type service struct {
	client    *remote.Client
	generator *Generator
	logger    *slog.Logger
}

// NewService creates a fiscal receipt service. client may be nil, in which
// case every receipt is generated locally.
func NewService(client *remote.Client, generator *Generator, logger *slog.Logger) Service {
	if generator == nil {
		generator = NewGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{client: client, generator: generator, logger: logger}
}

// IssueReceipt validates the request, attempts the fiscalization backend,
// and falls back to the local generator on any failure. The fallback never
// returns an error: callers always receive a structured result.
func (s *service) IssueReceipt(ctx context.Context, req ReceiptRequest) (*ReceiptResult, error) {
	if len(req.Items) == 0 {
		return &ReceiptResult{Success: false, Error: ErrNoItems.Message}, ErrNoItems
	}

	if s.client != nil {
		var result ReceiptResult
		err := s.client.PostJSON(ctx, "/api/fiscal/receipt", req, &result)
		if err == nil && result.Success && result.Receipt != nil {
			return &result, nil
		}
		s.logger.Warn("fiscal backend unavailable, generating local receipt",
			slog.String("transaction_id", req.TransactionID),
		)
	}

	receipt, err := s.generator.Generate(req)
	if err != nil {
		// Generation only fails on invalid amounts; surface as a
		// non-fatal degraded result per the checkout contract.
		return &ReceiptResult{Success: false, Error: err.Error()}, nil
	}

	return &ReceiptResult{Success: true, Receipt: receipt}, nil
}

// MockService is a test implementation of Service.
type MockService struct {
	// IssueReceiptFunc allows customizing receipt issuing behavior.
	IssueReceiptFunc func(ctx context.Context, req ReceiptRequest) (*ReceiptResult, error)

	// Receipts stores issued receipts keyed by transaction id.
	Receipts map[string]*Receipt

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockService creates a new mock fiscal service.
func NewMockService() *MockService {
	return &MockService{
		Receipts: make(map[string]*Receipt),
		CallLog:  []string{},
	}
}

// IssueReceipt issues a receipt via the local generator unless overridden.
func (m *MockService) IssueReceipt(ctx context.Context, req ReceiptRequest) (*ReceiptResult, error) {
	m.CallLog = append(m.CallLog, "IssueReceipt("+req.TransactionID+")")

	if m.IssueReceiptFunc != nil {
		return m.IssueReceiptFunc(ctx, req)
	}

	receipt, err := NewGenerator().Generate(req)
	if err != nil {
		return &ReceiptResult{Success: false, Error: err.Error()}, nil
	}
	m.Receipts[req.TransactionID] = receipt
	return &ReceiptResult{Success: true, Receipt: receipt}, nil
}
