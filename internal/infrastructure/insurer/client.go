// Package insurer implements the portal backend gateway: authentication,
// document discovery, link resolution and raw downloads against the insurer's
// claim-upload APIs.
package insurer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
	"github.com/vtavares/claimfetch/internal/infrastructure/resilience"
)

const (
	headerTrace      = "x-liberty-ativartrace"
	headerSystemName = "x-liberty-nomesistema"
	headerUsername   = "x-liberty-username"

	loginPath    = "/sessao/autenticacaousuario"
	discoverPath = "/Upload/PUD_Default_Novo.aspx/CarregaDocumentosNecessarios"
	resolvePath  = "/Upload/PUD_Default_Novo.aspx/ReceberDocumentoOnBase"
)

type Config struct {
	AuthBaseURL        string
	UploadBaseURL      string
	ResidentialBaseURL string

	ClientCode    string
	UploadProfile int
	SystemName    string

	// Minimum spacing between consecutive link-resolution calls.
	ResolveInterval time.Duration
	// Minimum spacing between consecutive electrical-document fetches.
	ElectricalInterval time.Duration

	HTTPTimeout time.Duration
}

// Client builds authenticated portal sessions.
type Client struct {
	cfg      Config
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.UploadBaseURL = strings.TrimRight(cfg.UploadBaseURL, "/")
	cfg.ResidentialBaseURL = strings.TrimRight(cfg.ResidentialBaseURL, "/")
	return &Client{cfg: cfg, executor: executor}
}

// Login authenticates and returns a session holding the portal cookies. A
// non-2xx response fails with ErrAuthenticationFailed carrying the response
// body.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (ports.PortalSession, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	sess := &Session{
		client: c,
		httpClient: &http.Client{
			Timeout: c.cfg.HTTPTimeout,
			Jar:     jar,
		},
		username:        creds.Login,
		resolveLimit:    newLimiter(c.cfg.ResolveInterval),
		electricalLimit: newLimiter(c.cfg.ElectricalInterval),
	}

	payload := map[string]string{"usuario": creds.Login, "senha": creds.Secret}
	call := func(callCtx context.Context) error {
		return sess.postJSON(callCtx, c.cfg.AuthBaseURL+loginPath, payload, nil, "login")
	}
	if err := c.execute(ctx, "portal.login", call); err != nil {
		return nil, domain.WrapError(domain.ErrAuthenticationFailed, "portal login", err)
	}
	return sess, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyPortalError)
}

func newLimiter(interval time.Duration) *rate.Limiter {
	// rate.Every(0) yields an infinite limit, i.e. no throttling.
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Session is one authenticated portal handle. It is owned by a single claim's
// processing at a time.
type Session struct {
	client     *Client
	httpClient *http.Client
	username   string

	resolveLimit    *rate.Limiter
	electricalLimit *rate.Limiter
}

func (s *Session) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set(headerTrace, "true")
	h.Set(headerSystemName, s.client.cfg.SystemName)
	h.Set(headerUsername, s.username)
	return h
}

func (s *Session) Close() {
	s.httpClient.CloseIdleConnections()
}

// claimValue keeps numeric claim identifiers numeric on the wire; the portal
// rejects quoted occurrence numbers on some endpoints.
func claimValue(claimID string) any {
	if n, err := strconv.ParseInt(claimID, 10, 64); err == nil {
		return n
	}
	return claimID
}
