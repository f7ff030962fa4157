package http

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/loayeid/shophub/configs"
	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/adapter/repo"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/logging"
	"github.com/loayeid/shophub/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "shophub"
	cfg.Security.Audience = "shophub-web"
	cfg.Security.TokenTTL = time.Hour
	return cfg
}

// signToken issues a token the way the login handler does.
func signToken(cfg configs.Config, id, name, email string, role entity.Role) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   cfg.Security.Issuer,
		"aud":   cfg.Security.Audience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(cfg.Security.TokenTTL).Unix(),
		"sub":   id,
		"name":  name,
		"email": email,
		"role":  string(role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Security.JWTSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

// --- in-memory port fakes ---

type memCarts struct{ carts map[string]*entity.Cart }

func newMemCarts() *memCarts { return &memCarts{carts: map[string]*entity.Cart{}} }

func (s *memCarts) Get(_ context.Context, sid string) (*entity.Cart, error) {
	if c, ok := s.carts[sid]; ok {
		return c, nil
	}
	return &entity.Cart{SessionID: sid}, nil
}
func (s *memCarts) Put(_ context.Context, c *entity.Cart) error { s.carts[c.SessionID] = c; return nil }
func (s *memCarts) Clear(_ context.Context, sid string) error   { delete(s.carts, sid); return nil }

type memGateway struct {
	intents    map[string]*entity.PaymentIntent
	confirmErr error
	createErr  error
}

func newMemGateway() *memGateway {
	return &memGateway{intents: map[string]*entity.PaymentIntent{}}
}

func (g *memGateway) CreateIntent(_ context.Context, amount int64, currency string) (*entity.PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	pi := &entity.PaymentIntent{
		ID:               "pi_test",
		ClientSecret:     "pi_test_secret",
		AmountMinorUnits: amount,
		Currency:         currency,
		Status:           entity.IntentRequiresPaymentMethod,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *memGateway) GetIntent(_ context.Context, id string) (*entity.PaymentIntent, error) {
	pi, ok := g.intents[id]
	if !ok {
		return nil, &entity.GatewayError{Op: "get intent", Err: errors.New("no such intent")}
	}
	return pi, nil
}

func (g *memGateway) Confirm(_ context.Context, intentID, _ string) (*entity.ConfirmedPayment, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return &entity.ConfirmedPayment{IntentID: intentID, SettlementRef: "4242", Method: "stripe"}, nil
}

type memOrderRepo struct {
	orders    map[string]*entity.Order
	createErr error
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{orders: map[string]*entity.Order{}} }

func (r *memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *memOrderRepo) List(_ context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to entity.OrderStatus) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

type memIdem struct {
	locks  map[string]bool
	values map[string]string
}

func newMemIdem() *memIdem { return &memIdem{locks: map[string]bool{}, values: map[string]string{}} }

func (s *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}
func (s *memIdem) Unlock(_ context.Context, scope, key string) error {
	delete(s.locks, scope+":"+key)
	return nil
}
func (s *memIdem) Remember(_ context.Context, scope, key, value string) error {
	s.values[scope+":"+key] = value
	return nil
}
func (s *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

type memAlerts struct{ alerts []usecase.ReconcileAlertMsg }

func (a *memAlerts) PublishReconcile(_ context.Context, msg usecase.ReconcileAlertMsg) error {
	a.alerts = append(a.alerts, msg)
	return nil
}

type memEvents struct{ msgs []usecase.OrderStatusChangedMsg }

func (e *memEvents) PublishStatusChanged(_ context.Context, msg usecase.OrderStatusChangedMsg) error {
	e.msgs = append(e.msgs, msg)
	return nil
}

type memCache struct{ statuses map[string]string }

func newMemCache() *memCache { return &memCache{statuses: map[string]string{}} }

func (c *memCache) SetStatus(_ context.Context, orderID, status string) error {
	c.statuses[orderID] = status
	return nil
}
func (c *memCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

type memMail struct{ sent []string }

func (m *memMail) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type memUsers struct{ byEmail map[string]*usecase.UserRecord }

func (u *memUsers) GetByEmail(_ context.Context, email string) (*usecase.UserRecord, error) {
	if rec, ok := u.byEmail[email]; ok {
		return rec, nil
	}
	return nil, repo.ErrNotFound
}

// testServer bundles the router with the fakes behind it.
type testServer struct {
	router *gin.Engine
	cfg    configs.Config
	carts  *memCarts
	gw     *memGateway
	repo   *memOrderRepo
	idem   *memIdem
	alerts *memAlerts
	events *memEvents
	cache  *memCache
	mail   *memMail
	users  *memUsers
}

func newTestServer() *testServer {
	cfg := testConfig()
	ts := &testServer{
		cfg:    cfg,
		carts:  newMemCarts(),
		gw:     newMemGateway(),
		repo:   newMemOrderRepo(),
		idem:   newMemIdem(),
		alerts: &memAlerts{},
		events: &memEvents{},
		cache:  newMemCache(),
		mail:   &memMail{},
		users:  &memUsers{byEmail: map[string]*usecase.UserRecord{}},
	}

	createIntent := usecase.NewCreateIntent(ts.gw)
	placeOrder := usecase.NewPlaceOrder(ts.carts, ts.gw, ts.repo, ts.idem, ts.alerts, ts.cache, ts.mail)
	updateStatus := usecase.NewUpdateStatus(ts.repo, ts.events, ts.cache)

	ts.router = NewRouter(
		logging.New("http-test"),
		NewAuthHandler(ts.users, cfg),
		NewCartHandler(ts.carts),
		NewCheckoutHandler(createIntent, placeOrder),
		NewAdminOrderHandler(ts.repo, updateStatus),
		middleware.NewAuthz(cfg),
	)
	return ts
}
