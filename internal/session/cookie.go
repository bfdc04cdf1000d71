package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

type contextKey struct{}

// Cookies signs and verifies the cookie that carries the session id.
type Cookies struct {
	name   string
	maxAge time.Duration
	codec  *securecookie.SecureCookie
	// Generated is true when no secret was configured and a random one was used.
	Generated bool
}

// NewCookies builds a cookie codec. An empty secret is replaced by a random key, which
// means sessions do not survive a restart.
func NewCookies(name, secret string, maxAge time.Duration) *Cookies {
	key := []byte(secret)
	generated := false
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		generated = true
	}

	codec := securecookie.New(key, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	if maxAge > 0 {
		codec.MaxAge(int(maxAge.Seconds()))
	} else {
		codec.MaxAge(0)
	}

	return &Cookies{name: name, maxAge: maxAge, codec: codec, Generated: generated}
}

// Name returns the cookie name.
func (c *Cookies) Name() string {
	return c.name
}

// Read returns the session id carried by r, if the cookie is present and valid.
func (c *Cookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}

	var id string
	if err := c.codec.Decode(c.name, cookie.Value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Write sets a signed cookie for id on w.
func (c *Cookies) Write(w http.ResponseWriter, id string) error {
	encoded, err := c.codec.Encode(c.name, id)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if c.maxAge > 0 {
		cookie.MaxAge = int(c.maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Middleware resolves the session id for every request, minting a new one when the
// cookie is missing or fails verification. The cookie is re-signed on every request so its
// lifetime slides with activity, like the store TTL.
func (c *Cookies) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := c.Read(r)
		if !ok {
			id = uuid.NewString()
		}
		if err := c.Write(w, id); err != nil {
			http.Error(w, "failed to issue session", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext returns the session id placed by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
