package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessTTL  = 30 * time.Minute
	testRefreshTTL = 14 * 24 * time.Hour
)

// testClock is a settable time source shared by the codec.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stack struct {
	handler  http.Handler
	gate     *Gate
	verifier *auth.Verifier
	codec    *auth.Codec
	clock    *testClock
	redis    *miniredis.Miniredis
	manager  *repomanager.InMemoryRepositoryManager
}

func newStack(t *testing.T) *stack {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := refreshtokens.NewRedisStore(client, refreshtokens.DefaultKeyPrefix)

	clock := &testClock{now: time.Now()}
	codec, err := auth.NewCodec([]byte(strings.Repeat("k", 64)), "gophauth-test", auth.WithClock(clock.Now))
	require.NoError(t, err)

	manager := repomanager.NewInMemoryRepositoryManager()
	issuer := auth.NewIssuer(codec, store, testAccessTTL, testRefreshTTL, time.Second)
	verifier := auth.NewVerifier(codec, manager.MemoryUsers(), time.Second)

	svc := services.NewUserService(nil, manager, manager, cryptox.NewBcryptHasher(bcrypt.MinCost),
		issuer, verifier, store, time.Second, logging.Nop{})

	gate := NewGate(verifier, logging.Nop{})
	h := NewHandler(svc, map[string]HealthCheck{"redis": store.Ping}, false, logging.Nop{})

	return &stack{
		handler:  NewRouter(h, gate, []string{"http://localhost:8080"}, logging.Nop{}),
		gate:     gate,
		verifier: verifier,
		codec:    codec,
		clock:    clock,
		redis:    mr,
		manager:  manager,
	}
}

func (s *stack) do(t *testing.T, method, path string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatalf("no refreshToken cookie in %v", rec.Header())
	return nil
}
