package session_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/cookie"
	"github.com/dmitrymomot/httpsession/pkg/session"
)

const lifespan = 300 * time.Second

type fixture struct {
	clock   *clock
	store   *countingStore
	manager *session.Manager
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()
	clk := newClock()
	store := newCountingStore(lifespan, clk)
	base := []session.Option{
		session.WithClock(clk.Now),
		session.WithIDGenerator(sequentialIDs()),
	}
	return &fixture{
		clock:   clk,
		store:   store,
		manager: session.New(store, newSigner(t, clk), append(base, opts...)...),
	}
}

func (f *fixture) serve(h http.Handler, cookieValue string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost"
	if cookieValue != "" {
		req.Header.Set("Cookie", "sid="+cookieValue)
	}
	rec := httptest.NewRecorder()
	f.manager.Middleware(h).ServeHTTP(rec, req)
	return rec
}

// cookieValue extracts the value part of a Set-Cookie header.
func cookieValue(t *testing.T, setCookie string) string {
	t.Helper()
	pair, _, _ := strings.Cut(setCookie, ";")
	name, value, ok := strings.Cut(pair, "=")
	require.True(t, ok, setCookie)
	require.Equal(t, "sid", name)
	return value
}

var noop = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, "Hello World!\n")
})

// counterApp stores a value on first visit and only reads it afterwards.
var counterApp = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	if !sess.Has("test") {
		sess.Set("test", 42)
		_, _ = io.WriteString(w, "I set a new value!\n")
		return
	}
	_, _ = io.WriteString(w, "I did nothing!\n")
})

func TestMiddleware_NothingHappens(t *testing.T) {
	f := newFixture(t)

	rec := f.serve(noop, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Values("Set-Cookie"), "an unused new session gets no cookie")
	assert.Zero(t, f.store.Total(), "an unused new session causes no store I/O")

	f.clock.Set(time.Date(2021, 10, 29, 19, 2, 0, 0, time.UTC))
	rec = f.serve(noop, "00000000-0000-0000-0000-000000000000.YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM")

	assert.Equal(t, []string{
		"sid=00000000-0000-0000-0000-000000000000.YXxFKA.kFPLnaCZYNyMzTjRX6Zc03HlMzY; " +
			"Path=/; Domain=localhost; Expires=Fri, 29 Oct 2021 19:07:00 GMT; HttpOnly; SameSite=Lax",
	}, rec.Header().Values("Set-Cookie"), "a known session is re-signed on every response")
	assert.Zero(t, f.store.Total(), "refreshing the cookie does not read the store")
}

func TestMiddleware_SlidingExpiration(t *testing.T) {
	f := newFixture(t)

	// T0: first visit creates and stores the session.
	rec := f.serve(counterApp, "")
	assert.Equal(t, "I set a new value!\n", rec.Body.String())
	first := rec.Header().Get("Set-Cookie")
	assert.Equal(t,
		"sid=00000000-0000-0000-0000-000000000000.YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM; "+
			"Path=/; Domain=localhost; Expires=Fri, 29 Oct 2021 19:05:00 GMT; HttpOnly; SameSite=Lax",
		first)
	assert.Equal(t, 1, f.store.Calls("set"))
	assert.Zero(t, f.store.Calls("get"))

	// T+120s: the session is read, touched and re-signed.
	f.store.Reset()
	f.clock.Set(time.Date(2021, 10, 29, 19, 2, 0, 0, time.UTC))
	rec = f.serve(counterApp, cookieValue(t, first))
	assert.Equal(t, "I did nothing!\n", rec.Body.String())
	assert.Equal(t,
		"sid=00000000-0000-0000-0000-000000000000.YXxFKA.kFPLnaCZYNyMzTjRX6Zc03HlMzY; "+
			"Path=/; Domain=localhost; Expires=Fri, 29 Oct 2021 19:07:00 GMT; HttpOnly; SameSite=Lax",
		rec.Header().Get("Set-Cookie"))
	assert.Equal(t, 1, f.store.Calls("get"))
	assert.Equal(t, 1, f.store.Calls("touch"))
	assert.Zero(t, f.store.Calls("set"))

	// T+600s: the first cookie is past its lifespan, a new session starts.
	f.clock.Set(time.Date(2021, 10, 29, 19, 10, 0, 0, time.UTC))
	rec = f.serve(counterApp, cookieValue(t, first))
	assert.Equal(t, "I set a new value!\n", rec.Body.String())
	assert.Equal(t,
		"sid=00000000-0000-0000-0000-000000000001.YXxHCA.4NikiSMM4nvu9jP0OrfET4s3I9A; "+
			"Path=/; Domain=localhost; Expires=Fri, 29 Oct 2021 19:15:00 GMT; HttpOnly; SameSite=Lax",
		rec.Header().Get("Set-Cookie"))
}

func TestMiddleware_KeepsSessionNextToBrokenCookies(t *testing.T) {
	f := newFixture(t)

	first := f.serve(counterApp, "")
	token := cookieValue(t, first.Header().Get("Set-Cookie"))

	for _, header := range []string{
		"sid=" + token + "; broken",
		"broken; sid=" + token,
		"sid=" + token + `; pref="x`,
	} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = "localhost"
			req.Header.Set("Cookie", header)
			rec := httptest.NewRecorder()
			f.manager.Middleware(counterApp).ServeHTTP(rec, req)

			assert.Equal(t, "I did nothing!\n", rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Set-Cookie"), "sid=00000000-0000-0000-0000-000000000000."))
		})
	}
}

func TestMiddleware_CookieAttributes(t *testing.T) {
	f := newFixture(t,
		session.WithSameSite(http.SameSiteNoneMode),
		session.WithSecure(true),
		session.WithHTTPOnly(true),
	)

	rec := f.serve(counterApp, "")
	assert.Equal(t,
		"sid=00000000-0000-0000-0000-000000000000.YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM; "+
			"Path=/; Domain=localhost; Expires=Fri, 29 Oct 2021 19:05:00 GMT; HttpOnly; Secure; SameSite=None",
		rec.Header().Get("Set-Cookie"))
}

func TestMiddleware_Domain(t *testing.T) {
	tests := []struct {
		name   string
		opts   []session.Option
		host   string
		domain string
	}{
		{name: "host without port", host: "app.example.com:8443", domain: "; Domain=app.example.com;"},
		{name: "ipv6 host", host: "[::1]:8080", domain: ""},
		{name: "pinned", opts: []session.Option{session.WithDomain("example.org")}, host: "localhost", domain: "; Domain=example.org;"},
		{name: "omitted", opts: []session.Option{session.WithDomain("")}, host: "localhost", domain: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			f.manager.Middleware(counterApp).ServeHTTP(rec, req)

			setCookie := rec.Header().Get("Set-Cookie")
			require.NotEmpty(t, setCookie)
			if tt.domain == "" {
				assert.NotContains(t, setCookie, "Domain=")
			} else {
				assert.Contains(t, setCookie, tt.domain)
			}
		})
	}
}

func TestMiddleware_CustomCookieName(t *testing.T) {
	f := newFixture(t, session.WithCookieName("app_session"), session.WithPath("/app"))

	rec := f.serve(counterApp, "")
	setCookie := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(setCookie, "app_session="), setCookie)
	assert.Contains(t, setCookie, "Path=/app;")
}

func TestMiddleware_WriteOrderings(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{name: "no write", handler: func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Set("k", "v")
		}, status: http.StatusOK},
		{name: "explicit status", handler: func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Set("k", "v")
			w.WriteHeader(http.StatusCreated)
			// Mutations after the headers are sent are not persisted.
			session.MustFromContext(r.Context()).Set("late", true)
		}, status: http.StatusCreated},
		{name: "body write", handler: func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Set("k", "v")
			_, _ = w.Write([]byte("body"))
		}, status: http.StatusOK},
		{name: "flush", handler: func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Set("k", "v")
			require.NoError(t, http.NewResponseController(w).Flush())
		}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.serve(tt.handler, "")

			assert.Equal(t, tt.status, rec.Code)
			res := rec.Result()
			assert.Len(t, res.Header.Values("Set-Cookie"), 1, "exactly one cookie reaches the client")
			assert.Equal(t, 1, f.store.Calls("set"))

			data, err := f.store.MemoryStore.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
			require.NoError(t, err)
			assert.Equal(t, "v", data["k"])
			assert.NotContains(t, data, "late")
		})
	}
}

func TestMiddleware_ReadOnlyTouches(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.MemoryStore.Set(context.Background(), "known", session.Data{"test": 1}))
	token, err := f.manager.Cookie("known", "", "")
	require.NoError(t, err)

	f.serve(counterApp, cookieValue(t, token))

	assert.Equal(t, 1, f.store.Calls("get"))
	assert.Equal(t, 1, f.store.Calls("touch"))
	assert.Zero(t, f.store.Calls("set"))
}

func TestMiddleware_RefreshOnAccess(t *testing.T) {
	f := newFixture(t, session.WithRefreshPolicy(session.RefreshOnAccess))
	token, err := f.manager.Cookie("known", "", "")
	require.NoError(t, err)

	rec := f.serve(noop, cookieValue(t, token))
	assert.Empty(t, rec.Header().Values("Set-Cookie"), "an unused known session keeps its cookie")

	rec = f.serve(counterApp, cookieValue(t, token))
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestMiddleware_InvalidTokenRenews(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := session.NewMetrics(reg)
	f := newFixture(t, session.WithMetrics(metrics))

	var seen string
	rec := f.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.MustFromContext(r.Context())
		seen = sess.ID()
		assert.True(t, sess.IsNew())
		sess.Set("k", "v")
	}), "11111111-1111-1111-1111-111111111111.YXxEsA.forgedsignatureAAAAAAAAAAAAA")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", seen)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Set-Cookie"), "sid=00000000-0000-0000-0000-000000000000."))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvalidTokens.WithLabelValues("renewed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CookiesWritten))
}

func TestMiddleware_InvalidTokenRejected(t *testing.T) {
	var handlerErr error
	f := newFixture(t,
		session.WithInvalidTokenPolicy(session.RejectInvalidToken),
		session.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, status int, err error) {
			handlerErr = err
			session.DefaultErrorHandler(w, r, status, err)
		}),
	)

	called := false
	rec := f.serve(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }), "tampered.value.here")

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ErrorIs(t, handlerErr, session.ErrInvalidToken)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestMiddleware_PersistFailure(t *testing.T) {
	f := newFixture(t)
	f.store.setErr = assert.AnError

	var writeErr error
	rec := f.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("k", "v")
		_, writeErr = w.Write([]byte("should not be sent"))
	}), "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.ErrorIs(t, writeErr, session.ErrResponseAborted)
	assert.NotContains(t, rec.Body.String(), "should not be sent")
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestMiddleware_OversizeCookie(t *testing.T) {
	var handlerErr error
	f := newFixture(t,
		session.WithIDGenerator(func() string { return strings.Repeat("x", cookie.MaxSize) }),
		session.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, status int, err error) {
			handlerErr = err
			session.DefaultErrorHandler(w, r, status, err)
		}),
	)

	rec := f.serve(counterApp, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.ErrorIs(t, handlerErr, cookie.ErrTooLarge)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestMiddleware_CancelledRequest(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	f.manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("k", "v")
	})).ServeHTTP(rec, req)

	assert.Zero(t, f.store.Calls("set"))
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestMiddleware_HandlerPanic(t *testing.T) {
	f := newFixture(t)

	assert.Panics(t, func() {
		f.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Set("k", "v")
			panic("handler failed")
		}), "")
	})
	assert.Zero(t, f.store.Calls("set"))
}

func TestMiddleware_DistinctIDsForConcurrentRequests(t *testing.T) {
	clk := newClock()
	store := newCountingStore(lifespan, clk)
	manager := session.New(store, newSigner(t, clk), session.WithClock(clk.Now))
	h := manager.Middleware(counterApp)

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			pair, _, _ := strings.Cut(rec.Header().Get("Set-Cookie"), ";")
			value := strings.TrimPrefix(pair, "sid=")
			id, _, _ := strings.Cut(value, ".")
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]struct{}{}
	for id := range ids {
		require.NotEmpty(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, store.Calls("set"))
}

func TestMiddleware_Destroy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.MemoryStore.Set(context.Background(), "known", session.Data{"k": "v"}))
	token, err := f.manager.Cookie("known", "", "")
	require.NoError(t, err)

	rec := f.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.MustFromContext(r.Context())
		sess.Set("k", "changed")
		require.NoError(t, f.manager.Destroy(w, r, sess))
		assert.True(t, sess.Discarded())
	}), cookieValue(t, token))

	setCookies := rec.Header().Values("Set-Cookie")
	require.Len(t, setCookies, 1, "only the removal cookie is sent")
	assert.Contains(t, setCookies[0], "Max-Age=0")
	assert.Zero(t, f.store.Calls("set"))

	_, err = f.store.MemoryStore.Get(context.Background(), "known")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

type userSession struct {
	*session.Session
}

func (u *userSession) UserID() string {
	id, _ := u.GetString("user_id")
	return id
}

type ctxKey struct{}

func TestMiddleware_FactoryAndContextKey(t *testing.T) {
	f := newFixture(t,
		session.WithContextKey(ctxKey{}),
		session.WithFactory(func(ctx context.Context, id string, store session.Store, isNew bool) session.Lifecycle {
			return &userSession{session.NewSession(ctx, id, store, isNew)}
		}),
	)

	rec := f.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := session.FromContext(r.Context())
		assert.False(t, ok, "the default key is unused")

		base, ok := session.FromContextKey(r.Context(), ctxKey{})
		require.True(t, ok)
		base.Set("user_id", "u-1")

		us, ok := session.As[*userSession](r.Context(), ctxKey{})
		require.True(t, ok)
		assert.Equal(t, "u-1", us.UserID())
	}), "")

	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
	assert.Equal(t, 1, f.store.Calls("set"))
}

func TestWithSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	sess := session.NewSession(context.Background(), "u-1", store, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	counterApp.ServeHTTP(rec, req)

	assert.Equal(t, "I set a new value!\n", rec.Body.String())
	assert.Same(t, sess, session.MustFromContext(req.Context()))
	require.NoError(t, sess.Persist(false))

	data, err := store.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 42, data["test"])
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.PanicsWithValue(t, session.ErrNotInContext, func() {
		session.MustFromContext(context.Background())
	})
}
