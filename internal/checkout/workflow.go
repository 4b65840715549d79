package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Cart is the part of the cart store the workflow reads and clears.
type Cart interface {
	Snapshot() domain.CartState
	ClearCart()
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.Order, error)
}

type Details struct {
	Address       domain.DeliveryAddress
	PaymentMethod domain.PaymentMethod
	Notes         string
}

type Confirmation struct {
	OrderID string
	Order   *domain.Order
}

type Option func(*Workflow)

// WithCountry sets the country used when the address leaves it blank.
func WithCountry(country string) Option {
	return func(w *Workflow) { w.country = country }
}

// OnTransition registers a hook called after every status change. It runs while the
// workflow is locked and must not call back into it.
func OnTransition(fn func(from, to Status)) Option {
	return func(w *Workflow) { w.onTransition = fn }
}

func WithKeyGenerator(fn func() string) Option {
	return func(w *Workflow) { w.newKey = fn }
}

// WithAttemptStore sets where the pending attempt is kept. The default is memory,
// which forgets it when the workflow goes away.
func WithAttemptStore(store AttemptStore) Option {
	return func(w *Workflow) { w.attempts = store }
}

// Workflow turns the current cart into an order, one submission at a time.
type Workflow struct {
	cart   Cart
	orders OrderCreator

	country      string
	newKey       func() string
	onTransition func(from, to Status)
	attempts     AttemptStore

	mu     sync.Mutex
	status Status
}

func NewWorkflow(cart Cart, orders OrderCreator, opts ...Option) *Workflow {
	w := &Workflow{
		cart:     cart,
		orders:   orders,
		country:  "Pakistan",
		newKey:   uuid.NewString,
		attempts: &memoryAttempts{},
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Workflow) Submit(ctx context.Context, details Details) (*Confirmation, error) {
	if err := w.begin(); err != nil {
		return nil, err
	}
	defer w.settle()

	snapshot := w.cart.Snapshot()
	if err := validate(snapshot, details); err != nil {
		w.transition(StatusIdle)
		return nil, err
	}

	req := w.buildRequest(snapshot, details)
	fp, err := fingerprint(req)
	if err != nil {
		w.transition(StatusIdle)
		return nil, err
	}
	key := w.keyFor(ctx, fp)

	w.transition(StatusSubmitting)
	log.WithFields(log.Fields{
		"restaurant":      req.Restaurant,
		"items":           len(req.Items),
		"total":           req.TotalAmount,
		"idempotency_key": key,
	}).Info("placing order")

	order, err := w.orders.CreateOrder(ctx, req, key)
	if err != nil {
		w.transition(StatusFailed)
		submitErr := classify(err)
		w.rememberAttempt(ctx, submitErr, Attempt{Key: key, Fingerprint: fp})
		log.WithError(err).WithField("idempotency_key", key).Warn("order submission failed")
		return nil, submitErr
	}

	w.transition(StatusCompleted)
	w.forgetAttempt(ctx)
	w.cart.ClearCart()
	log.WithField("order_id", order.ID).Info("order placed")

	return &Confirmation{OrderID: order.ID, Order: order}, nil
}

func (w *Workflow) begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != StatusIdle {
		return ErrSubmissionInFlight
	}
	w.setStatus(StatusValidating)
	return nil
}

// settle returns a finished attempt to idle.
func (w *Workflow) settle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status.IsTerminal() {
		w.setStatus(StatusIdle)
	}
}

func (w *Workflow) transition(to Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !CanTransitionTo(w.status, to) {
		log.WithFields(log.Fields{"from": w.status, "to": to}).Error(ErrIllegalTransition)
		return
	}
	w.setStatus(to)
}

// setStatus must be called with mu held.
func (w *Workflow) setStatus(to Status) {
	from := w.status
	w.status = to
	if w.onTransition != nil {
		w.onTransition(from, to)
	}
}

func (w *Workflow) keyFor(ctx context.Context, fp string) string {
	pending, err := w.attempts.Pending(ctx)
	if err != nil {
		log.WithError(err).Warn("could not read pending order, using a new key")
	}
	if pending != nil && pending.Fingerprint == fp {
		return pending.Key
	}
	return w.newKey()
}

func (w *Workflow) rememberAttempt(ctx context.Context, err *SubmitError, a Attempt) {
	ctx, cancel := persistContext(ctx)
	defer cancel()

	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.StatusCode < 500 {
		// the server answered definitively; nothing was created
		w.forget(ctx)
		return
	}
	if err := w.attempts.Remember(ctx, a); err != nil {
		log.WithError(err).WithField("idempotency_key", a.Key).Warn("could not save pending order")
	}
}

func (w *Workflow) forgetAttempt(ctx context.Context) {
	ctx, cancel := persistContext(ctx)
	defer cancel()
	w.forget(ctx)
}

func (w *Workflow) forget(ctx context.Context) {
	if err := w.attempts.Forget(ctx); err != nil {
		log.WithError(err).Warn("could not clear pending order")
	}
}

// persistContext outlives a caller context that was cancelled or timed out mid-request.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), time.Second)
}

func validate(snapshot domain.CartState, details Details) error {
	if snapshot.IsEmpty() || snapshot.Restaurant == nil {
		return ErrEmptyCart
	}
	if strings.TrimSpace(details.Address.Street) == "" || strings.TrimSpace(details.Address.City) == "" {
		return ErrMissingAddress
	}
	return nil
}

func (w *Workflow) buildRequest(snapshot domain.CartState, details Details) domain.OrderRequest {
	items := make([]domain.OrderItem, len(snapshot.Lines))
	for i, l := range snapshot.Lines {
		items[i] = domain.OrderItem{
			MenuItem: l.ItemID,
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.UnitPrice,
		}
	}
	totals := domain.ComputeTotals(snapshot.Lines, snapshot.Restaurant.DeliveryFee, 0)

	address := details.Address
	address.Street = strings.TrimSpace(address.Street)
	address.City = strings.TrimSpace(address.City)
	if address.Country == "" {
		address.Country = w.country
	}
	payment := details.PaymentMethod
	if payment == "" {
		payment = domain.PaymentCash
	}

	fee := totals.DeliveryFee
	return domain.OrderRequest{
		Restaurant:      snapshot.Restaurant.ID,
		Items:           items,
		DeliveryAddress: address,
		PaymentMethod:   payment,
		Subtotal:        totals.Subtotal,
		DeliveryFee:     &fee,
		Discount:        totals.Discount,
		TotalAmount:     totals.Total,
		Notes:           details.Notes,
	}
}

func classify(err error) *SubmitError {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		msg := remote.Message
		if msg == "" {
			msg = genericFailureMessage
		}
		return &SubmitError{Kind: ErrRemoteRejection, Message: msg, Err: err}
	}
	return &SubmitError{Kind: ErrNetworkFailure, Message: genericFailureMessage, Err: err}
}
