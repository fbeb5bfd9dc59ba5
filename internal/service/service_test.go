package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Skotchmaster/storefront/internal/filestore"
	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/mailer"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type fakeGateway struct {
	last payment.SessionRequest
	err  error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (string, error) {
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	return "cs_test_fixed", nil
}

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *mykafka.Recorder
	Images   *filestore.Store
	Mail     *fakeMailer
	Gateway  *fakeGateway
	Catalog  *CatalogService
	Cart     *CartService
	Orders   *OrderService
	Invoices *InvoiceService
	Checkout *CheckoutService
	Auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	events := &mykafka.Recorder{}
	images := filestore.New(t.TempDir())
	mail := &fakeMailer{}
	gw := &fakeGateway{}

	return &testEnv{
		Repo:     r,
		Events:   events,
		Images:   images,
		Mail:     mail,
		Gateway:  gw,
		Catalog:  &CatalogService{Repo: r, Images: images, Events: events},
		Cart:     &CartService{Repo: r, Events: events},
		Orders:   &OrderService{Repo: r, Events: events},
		Invoices: &InvoiceService{Repo: r, Store: &invoice.Store{Dir: t.TempDir()}},
		Checkout: &CheckoutService{Repo: r, Gateway: gw, BaseURL: "http://shop.test"},
		Auth: &AuthService{
			Repo:          r,
			JWTSecret:     []byte("access-secret"),
			RefreshSecret: []byte("refresh-secret"),
			Mailer:        mail,
			Events:        events,
			BaseURL:       "http://shop.test",
			HashCost:      bcrypt.MinCost,
		},
	}
}

func (env *testEnv) user(t *testing.T, email string) session.Identity {
	t.Helper()
	u, err := env.Auth.Signup(context.Background(), transport.SignupRequest{
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return session.Identity{UserID: u.ID, Email: u.Email}
}

func (env *testEnv) product(t *testing.T, owner session.Identity, title, price string) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), owner, transport.ProductInput{
		Title:       title,
		Price:       price,
		Description: "a fine product",
	}, &Image{Name: title + ".png", Body: strings.NewReader("img")})
	require.NoError(t, err)
	return p
}

func TestStoreErr_Mapping(t *testing.T) {
	err := storeErr("op", errors.New("db down"))
	require.ErrorIs(t, err, ErrPersistence)
	require.Contains(t, err.Error(), "db down")
}
