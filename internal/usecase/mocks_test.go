package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/loayeid/shophub/internal/entity"
)

// Hand-rolled port fakes shared by the usecase tests.

type fakeCartStore struct {
	mu      sync.Mutex
	carts   map[string]*entity.Cart
	cleared []string
	getErr  error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]*entity.Cart{}}
}

func (s *fakeCartStore) Get(_ context.Context, sessionID string) (*entity.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}
	return &entity.Cart{SessionID: sessionID}, nil
}

func (s *fakeCartStore) Put(_ context.Context, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = cart
	return nil
}

func (s *fakeCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	s.cleared = append(s.cleared, sessionID)
	return nil
}

func (s *fakeCartStore) has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.carts[sessionID]
	return ok
}

type fakeGateway struct {
	intents     map[string]*entity.PaymentIntent
	confirmErr  error
	confirmed   map[string]*entity.ConfirmedPayment
	confirmCnt  int
	createErr   error
	nextIntent  *entity.PaymentIntent
	lastCreated *entity.PaymentIntent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents:   map[string]*entity.PaymentIntent{},
		confirmed: map[string]*entity.ConfirmedPayment{},
	}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string) (*entity.PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	pi := g.nextIntent
	if pi == nil {
		pi = &entity.PaymentIntent{
			ID:               "pi_test",
			ClientSecret:     "pi_test_secret",
			AmountMinorUnits: amount,
			Currency:         currency,
			Status:           entity.IntentRequiresPaymentMethod,
		}
	}
	g.intents[pi.ID] = pi
	g.lastCreated = pi
	return pi, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*entity.PaymentIntent, error) {
	pi, ok := g.intents[id]
	if !ok {
		return nil, &entity.GatewayError{Op: "get intent", Err: errors.New("no such intent")}
	}
	return pi, nil
}

func (g *fakeGateway) Confirm(_ context.Context, intentID, _ string) (*entity.ConfirmedPayment, error) {
	g.confirmCnt++
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	// Idempotent per intent, like the real gateway.
	if cp, ok := g.confirmed[intentID]; ok {
		return cp, nil
	}
	cp := &entity.ConfirmedPayment{IntentID: intentID, SettlementRef: "4242", Method: "stripe"}
	g.confirmed[intentID] = cp
	return cp, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*entity.Order
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*entity.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(_ context.Context) ([]*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to entity.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeIdemStore struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *fakeIdemStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *fakeIdemStore) Unlock(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, scope+":"+key)
	return nil
}

func (s *fakeIdemStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *fakeIdemStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []ReconcileAlertMsg
}

func (a *fakeAlerts) PublishReconcile(_ context.Context, msg ReconcileAlertMsg) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, msg)
	return nil
}

type fakeEvents struct {
	mu   sync.Mutex
	msgs []OrderStatusChangedMsg
}

func (e *fakeEvents) PublishStatusChanged(_ context.Context, msg OrderStatusChangedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
	return nil
}

type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]string{}} }

func (c *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

type fakeMail struct {
	mu   sync.Mutex
	sent []string // recipient addresses
}

func (m *fakeMail) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}
