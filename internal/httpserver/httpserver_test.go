package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Skotchmaster/storefront/internal/filestore"
	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/mailer"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validate"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) resetToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	html := m.sent[len(m.sent)-1].HTML
	const marker = "/reset-password/"
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := html[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

type testEnv struct {
	E          *echo.Echo
	Repo       *repo.GormRepo
	Mail       *captureMailer
	Images     *filestore.Store
	InvoiceDir *invoice.Store
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Cart       *service.CartService
	Orders     *service.OrderService
	Deps       *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	events := &mykafka.Recorder{}
	mail := &captureMailer{}
	images := filestore.New(t.TempDir())
	invoices := &invoice.Store{Dir: t.TempDir()}

	auth := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Mailer:        mail,
		Events:        events,
		BaseURL:       "http://shop.test",
		HashCost:      bcrypt.MinCost,
	}
	catalog := &service.CatalogService{Repo: r, Images: images, Events: events}
	cart := &service.CartService{Repo: r, Events: events}
	orders := &service.OrderService{Repo: r, Events: events}

	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = HTTPErrorHandler

	deps := &Deps{
		CatalogHandler: &CatalogHTTP{Svc: catalog},
		AdminHandler:   &AdminHTTP{Svc: catalog},
		CartHandler:    &CartHTTP{Svc: cart},
		OrderHandler: &OrderHTTP{
			Orders:   orders,
			Invoices: &service.InvoiceService{Repo: r, Store: invoices},
			Checkout: &service.CheckoutService{Repo: r, Gateway: payment.Stub{}, BaseURL: "http://shop.test"},
		},
		AuthHandler: &AuthHTTP{Svc: auth},
		Gate:        authmw.NewSessionGate(auth.JWTSecret, auth),
	}

	return &testEnv{
		E:          e,
		Repo:       r,
		Mail:       mail,
		Images:     images,
		InvoiceDir: invoices,
		Auth:       auth,
		Catalog:    catalog,
		Cart:       cart,
		Orders:     orders,
		Deps:       deps,
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
	}, &service.Image{Name: title + ".png", Body: strings.NewReader("img")})
	require.NoError(t, err)
	return p
}

// newContext builds a handler context; a non-nil user is attached the way the session gate does it.
func (env *testEnv) newContext(req *http.Request, user *session.Identity) (*httptest.ResponseRecorder, echo.Context) {
	if user != nil {
		req = req.WithContext(session.IntoContext(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) get(target string, user *session.Identity) (*httptest.ResponseRecorder, echo.Context) {
	return env.newContext(httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (env *testEnv) postForm(target string, vals url.Values, user *session.Identity) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return env.newContext(req, user)
}

func (env *testEnv) postMultipart(t *testing.T, target string, fields map[string]string, fileName, fileType string, user *session.Identity) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
		h.Set("Content-Type", fileType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return env.newContext(req, user)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
