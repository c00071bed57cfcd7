package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/email"
	"github.com/nooktextiles/nook/internal/fiscal"
	"github.com/nooktextiles/nook/internal/payment"
	"github.com/nooktextiles/nook/internal/telemetry"
)

// DefaultShippingFee is the flat delivery charge in RSD.
const DefaultShippingFee = 500.0

// CheckoutService drives a single checkout attempt through its state
// machine: payment intent, confirmation, fiscal receipt, order
// persistence and the confirmation email.
type CheckoutService interface {
	// Checkout runs one attempt to completion. Payment failures return
	// an error; degraded collaborators surface as Warnings on the
	// confirmation instead.
	Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutConfirmation, error)

	// Wait blocks until all background email dispatches have finished.
	// Intended for graceful shutdown and tests.
	Wait()
}

type checkoutService struct {
	cart     domain.CartService
	payments payment.Provider
	fiscal   fiscal.Service
	orders   domain.OrderService
	emails   *email.Service
	metrics  *telemetry.Metrics

	shippingFee float64
	validate    *validator.Validate
	logger      *slog.Logger
	wg          sync.WaitGroup
	now         func() time.Time
}

// CheckoutConfig bundles the orchestrator's collaborators.
type CheckoutConfig struct {
	Cart        domain.CartService
	Payments    payment.Provider
	Fiscal      fiscal.Service
	Orders      domain.OrderService
	Emails      *email.Service
	Metrics     *telemetry.Metrics
	ShippingFee float64 // 0 means DefaultShippingFee
	Logger      *slog.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(cfg CheckoutConfig) CheckoutService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShippingFee == 0 {
		cfg.ShippingFee = DefaultShippingFee
	}
	return &checkoutService{
		cart:        cfg.Cart,
		payments:    cfg.Payments,
		fiscal:      cfg.Fiscal,
		orders:      cfg.Orders,
		emails:      cfg.Emails,
		metrics:     cfg.Metrics,
		shippingFee: cfg.ShippingFee,
		validate:    validator.New(),
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// attempt tracks the state of one running checkout.
type attempt struct {
	state domain.CheckoutState
}

// advance moves the attempt to the next state, enforcing the legal
// transition table.
func (a *attempt) advance(to domain.CheckoutState) error {
	if !domain.CanTransition(a.state, to) {
		return fmt.Errorf("illegal checkout transition %s -> %s", a.state, to)
	}
	a.state = to
	return nil
}

func (s *checkoutService) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutConfirmation, error) {
	// Preconditions are checked before the state machine starts.
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "CheckoutService.Checkout", "Invalid checkout request")
	}

	cart, err := s.cart.GetCart(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := cart.Subtotal
	total := subtotal + s.shippingFee
	tax, err := fiscal.CalculateVAT(total, fiscal.StandardVATRate)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "CheckoutService.Checkout", "Failed to compute VAT")
	}

	a := &attempt{state: domain.CheckoutStateIdle}
	log := s.logger.With("session_id", req.SessionID, "user_id", req.UserID)
	s.count(func(m *telemetry.Metrics) { m.CheckoutStarted.Inc() })

	// Step 1: create the payment intent.
	s.enter(a, domain.CheckoutStateCreatingIntent)
	s.count(func(m *telemetry.Metrics) { m.PaymentAttempts.Inc() })

	intent, err := s.payments.CreatePaymentIntent(ctx, payment.CreateIntentParams{
		Amount:   roundRSD(total),
		Currency: "rsd",
		Metadata: map[string]string{
			"sessionId": req.SessionID,
			"userId":    req.UserID,
		},
	})
	if err != nil || !intent.Success || intent.PaymentIntentID == "" {
		return nil, s.fail(a, log, "create payment intent", err, intent)
	}

	// Step 2: confirm the payment.
	s.enter(a, domain.CheckoutStateConfirmingPayment)
	confirm, err := s.payments.ConfirmPayment(ctx, intent.PaymentIntentID, req.PaymentMethodID)
	if err != nil || !confirm.Success {
		return nil, s.fail(a, log, "confirm payment", err, confirm)
	}
	s.count(func(m *telemetry.Metrics) { m.PaymentSucceeded.Inc() })

	confirmation := &domain.CheckoutConfirmation{
		PaymentIntentID: intent.PaymentIntentID,
	}

	// Payment has succeeded. From here on the attempt always completes;
	// collaborator failures degrade and are recorded as warnings.

	// Step 3: fiscal receipt.
	s.enter(a, domain.CheckoutStateGeneratingReceipt)
	receipt := s.issueReceipt(ctx, log, req, cart, total, intent.PaymentIntentID, confirmation)

	// Step 4: persist the order.
	s.enter(a, domain.CheckoutStatePersistingOrder)
	order := s.persistOrder(ctx, log, req, cart, subtotal, tax, total, intent.PaymentIntentID, receipt, confirmation)
	if order != nil {
		confirmation.OrderNumber = order.OrderNumber
	}

	// Step 5: dispatch the confirmation email without awaiting it.
	s.enter(a, domain.CheckoutStateSendingEmail)
	s.dispatchEmail(ctx, req, cart, subtotal, tax, total, intent.PaymentIntentID, order, receipt)

	if err := s.cart.ClearCart(ctx, req.SessionID); err != nil {
		log.Warn("failed to clear cart after checkout", "error", err)
		confirmation.Warnings = append(confirmation.Warnings, "Cart could not be cleared")
	}

	s.enter(a, domain.CheckoutStateCompleted)
	s.count(func(m *telemetry.Metrics) { m.CheckoutCompleted.Inc() })
	log.Info("checkout completed",
		"payment_intent_id", confirmation.PaymentIntentID,
		"order_number", confirmation.OrderNumber,
		"warnings", len(confirmation.Warnings),
	)
	return confirmation, nil
}

func (s *checkoutService) Wait() {
	s.wg.Wait()
}

// enter advances the state machine and records the step metric. An
// illegal transition is a programming error and panics.
func (s *checkoutService) enter(a *attempt, to domain.CheckoutState) {
	if err := a.advance(to); err != nil {
		panic(err)
	}
	s.count(func(m *telemetry.Metrics) { m.CheckoutStep.WithLabelValues(to.String()).Inc() })
}

// fail transitions the attempt to Failed and builds the user-facing
// payment error.
func (s *checkoutService) fail(a *attempt, log *slog.Logger, step string, err error, res *payment.Result) error {
	state := a.state
	a.state = domain.CheckoutStateFailed

	reason := "payment declined"
	msg := "Payment failed"
	if err != nil {
		reason = "error"
		log.Error("checkout "+step+" failed", "state", state, "error", err)
	} else if res != nil && res.Error != "" {
		msg = res.Error
		log.Warn("checkout "+step+" declined", "state", state, "reason", res.Error)
	}

	s.count(func(m *telemetry.Metrics) {
		m.PaymentFailed.WithLabelValues(reason).Inc()
		m.CheckoutFailed.WithLabelValues(state.String()).Inc()
	})
	return domain.Errorf(domain.EPAYMENT, "CheckoutService.Checkout", "%s", msg)
}

func (s *checkoutService) issueReceipt(ctx context.Context, log *slog.Logger, req domain.CheckoutRequest, cart *domain.CartSummary, total float64, intentID string, confirmation *domain.CheckoutConfirmation) *fiscal.Receipt {
	items := make([]fiscal.ReceiptItem, 0, len(cart.Items)+1)
	for _, it := range cart.Items {
		items = append(items, fiscal.ReceiptItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
			TotalPrice: it.LineTotal(),
			TaxRate:    fiscal.StandardVATRate,
		})
	}
	items = append(items, fiscal.ReceiptItem{
		Name:       "Shipping",
		Quantity:   1,
		UnitPrice:  s.shippingFee,
		TotalPrice: s.shippingFee,
		TaxRate:    fiscal.StandardVATRate,
	})

	result, err := s.fiscal.IssueReceipt(ctx, fiscal.ReceiptRequest{
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: "card",
		CustomerInfo: fiscal.CustomerInfo{
			Name:  req.ShippingAddress.Name,
			Email: req.ShippingAddress.Email,
			Address: strings.Join([]string{
				req.ShippingAddress.Address,
				req.ShippingAddress.City,
				req.ShippingAddress.Country,
			}, ", "),
		},
		TransactionID: intentID,
	})
	if err != nil || !result.Success {
		if err != nil {
			log.Warn("fiscal receipt generation failed", "error", err)
		} else {
			log.Warn("fiscal receipt generation failed", "reason", result.Error)
		}
		s.count(func(m *telemetry.Metrics) { m.CollaboratorFallback.WithLabelValues("fiscal").Inc() })
		confirmation.Warnings = append(confirmation.Warnings, "Fiscal receipt could not be generated")
		return nil
	}

	confirmation.FiscalReceipt = result.Receipt
	return result.Receipt
}

func (s *checkoutService) persistOrder(ctx context.Context, log *slog.Logger, req domain.CheckoutRequest, cart *domain.CartSummary, subtotal, tax, total float64, intentID string, receipt *fiscal.Receipt, confirmation *domain.CheckoutConfirmation) *domain.Order {
	result, err := s.orders.SaveOrder(ctx, domain.CreateOrderData{
		UserID:          req.UserID,
		Items:           cart.Items,
		Subtotal:        subtotal,
		Shipping:        s.shippingFee,
		Tax:             tax,
		Total:           total,
		ShippingAddress: req.ShippingAddress,
		PaymentIntentID: intentID,
		FiscalReceipt:   receipt,
	})
	if err != nil || !result.Success {
		if err != nil {
			log.Warn("order persistence failed", "error", err)
		} else {
			log.Warn("order persistence failed", "reason", result.Error)
		}
		s.count(func(m *telemetry.Metrics) { m.CollaboratorFallback.WithLabelValues("order").Inc() })
		confirmation.Warnings = append(confirmation.Warnings, "Order could not be saved")
		return nil
	}

	s.count(func(m *telemetry.Metrics) {
		m.OrdersCreated.Inc()
		m.OrderValue.Observe(total)
	})
	return result.Order
}

// dispatchEmail sends the confirmation email in the background. The
// checkout's own context may be canceled as soon as the confirmation
// page renders, so the send uses a detached context with its own
// timeout.
func (s *checkoutService) dispatchEmail(ctx context.Context, req domain.CheckoutRequest, cart *domain.CartSummary, subtotal, tax, total float64, intentID string, order *domain.Order, receipt *fiscal.Receipt) {
	if s.emails == nil {
		return
	}

	data := email.OrderEmailData{
		CustomerEmail: req.ShippingAddress.Email,
		CustomerName:  req.ShippingAddress.Name,
		OrderDate:     s.now().Format("02.01.2006 15:04:05"),
		Subtotal:      subtotal,
		Shipping:      s.shippingFee,
		Tax:           tax,
		Total:         total,
		ShippingAddress: email.EmailAddress{
			Name:    req.ShippingAddress.Name,
			Address: req.ShippingAddress.Address,
			City:    req.ShippingAddress.City,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
		PaymentIntentID: intentID,
	}
	if order != nil {
		data.OrderNumber = order.OrderNumber
	}
	for _, it := range cart.Items {
		data.Items = append(data.Items, email.OrderEmailItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.LineTotal(),
		})
	}
	if receipt != nil {
		data.FiscalReceipt = &email.FiscalBlock{
			ReceiptNumber:       receipt.ReceiptNumber,
			FiscalReceiptNumber: receipt.FiscalReceiptNumber,
			QRCode:              receipt.QRCode,
			PFRSignature:        receipt.PFRSignature,
			FormattedReceipt:    fiscal.FormatReceipt(receipt),
		}
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		result, err := s.emails.SendOrderConfirmation(sendCtx, data)
		if err != nil {
			s.logger.Warn("order confirmation email failed",
				"order_number", data.OrderNumber, "error", err)
			s.count(func(m *telemetry.Metrics) { m.EmailFailed.Inc() })
			return
		}
		s.count(func(m *telemetry.Metrics) { m.EmailSent.Inc() })
		s.logger.Info("order confirmation email sent",
			"order_number", data.OrderNumber, "message_id", result.MessageID)
	}()
}

// count applies fn when metrics are configured.
func (s *checkoutService) count(fn func(*telemetry.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

// roundRSD converts a decimal RSD amount to the nearest whole dinar for
// the payment gateway.
func roundRSD(amount float64) int64 {
	return int64(math.Floor(amount + 0.5))
}
