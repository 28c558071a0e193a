// Package session provides server-side HTTP sessions identified by a signed,
// time-stamped cookie.
//
// The cookie carries only the session id; the data lives in a pluggable
// Store. A session is loaded lazily on first access and written back once,
// right before the response headers go out, and only when it was modified
// or is new. Sessions that were merely read are touched so the store keeps
// them alive. Every response for a known session re-signs the id, giving
// sliding expiry: a session dies only after one full TTL without requests.
//
// # Architecture
//
//	┌────────┐  Cookie: sid=...  ┌──────────┐  verify  ┌────────┐
//	│ Client │ ────────────────► │ Resolver │ ───────► │ Signer │
//	└────────┘                   └──────────┘          └────────┘
//	     ▲                            │ id, isNew
//	     │ Set-Cookie                 ▼
//	┌─────────────────────────────────────────┐ Get / Set / Touch ┌───────┐
//	│        Manager.Middleware + Session     │ ────────────────► │ Store │
//	└─────────────────────────────────────────┘                   └───────┘
//
// The store's TTL drives both the maximum token age and the cookie expiry.
// Stores that cannot expire records on their own implement Flusher; run a
// Sweeper, or the sessiond flush command from cron, to clean them up.
//
// # Usage
//
//	import (
//	    "github.com/dmitrymomot/httpsession/pkg/session"
//	    "github.com/dmitrymomot/httpsession/pkg/signer"
//	)
//
//	sig, err := signer.New([]string{os.Getenv("SESSION_SECRET")})
//	if err != nil {
//	    return err
//	}
//	store := session.NewMemoryStore(30 * time.Minute)
//	manager := session.New(store, sig, session.WithSecure(true))
//
//	mux.Handle("/", manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    n, _ := sess.GetInt("visits")
//	    sess.Set("visits", n+1)
//	    fmt.Fprintf(w, "visit #%d", n+1)
//	})))
//
// Values mutated in place (a slice appended to, a nested map) are invisible
// to the dirty tracking; call Save after such changes.
//
// # Custom session types
//
// WithFactory replaces the per-request session constructor. Types embedding
// *Session keep working with FromContext; use As to get the concrete type:
//
//	type UserSession struct{ *session.Session }
//
//	manager := session.New(store, sig,
//	    session.WithFactory(func(ctx context.Context, id string, st session.Store, isNew bool) session.Lifecycle {
//	        return &UserSession{session.NewSession(ctx, id, st, isNew)}
//	    }),
//	)
//
// # Configuration
//
// Most knobs are exposed via Option functions (e.g. WithCookieName) or by
// passing a Config struct to NewFromConfig, which twelve-factor applications
// can populate from SESSION_* environment variables.
//
// # Error Handling
//
//   - ErrNotFound      – returned by stores for unknown ids; the session starts over empty
//   - ErrInvalidToken  – tampered or corrupt cookie; renewed or rejected per InvalidTokenPolicy
//   - ErrResponseAborted – writes after a failed persist were discarded
//
// Store failures while persisting replace the response with the
// ErrorHandler output (500 by default).
package session
