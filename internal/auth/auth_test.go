package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/auth"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	mu sync.Mutex
	m  map[string]auth.Session
}

func (s *memSessions) Create(_ context.Context, sid string, sess auth.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]auth.Session{}
	}
	s.m[sid] = sess
	return nil
}

func (s *memSessions) Get(_ context.Context, sid string) (auth.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[sid]
	return sess, ok, nil
}

func (s *memSessions) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sid)
	return nil
}

type usersFunc func(ctx context.Context, username string) (profiles.Profile, error)

func (f usersFunc) GetByUsername(ctx context.Context, username string) (profiles.Profile, error) {
	return f(ctx, username)
}

func newAuth(t *testing.T, role profiles.Role) (*auth.Service, profiles.Profile) {
	t.Helper()

	hash, err := profiles.HashPassword("secret-1")
	require.NoError(t, err)

	user := profiles.Profile{ID: uuid.New(), Username: "nok", PasswordHash: hash, Name: "Nok", Role: role}

	svc := &auth.Service{
		Users: usersFunc(func(_ context.Context, username string) (profiles.Profile, error) {
			if username != user.Username {
				return profiles.Profile{}, profiles.ErrNotFound
			}
			return user, nil
		}),
		Sessions: &memSessions{},
		Secret:   []byte("test-secret"),
		TTL:      time.Hour,
	}
	return svc, user
}

func TestService_Login(t *testing.T) {
	svc, user := newAuth(t, profiles.RoleEmployee)

	tests := []struct {
		name      string
		username  string
		password  string
		wantError error
	}{
		{name: "ok", username: "nok", password: "secret-1"},
		{name: "wrong password", username: "nok", password: "secret-2", wantError: auth.ErrInvalidCredentials},
		{name: "unknown user", username: "pim", password: "secret-1", wantError: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, p, err := svc.Login(t.Context(), tt.username, tt.password)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, p.ID)

			principal, err := svc.Authenticate(t.Context(), token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, principal.UserID)
			assert.Equal(t, profiles.RoleEmployee, principal.Role)
			assert.NotEmpty(t, principal.SessionID)
		})
	}
}

func TestService_AuthenticateRejects(t *testing.T) {
	svc, _ := newAuth(t, profiles.RoleCustomer)

	token, _, err := svc.Login(t.Context(), "nok", "secret-1")
	require.NoError(t, err)

	t.Run("after logout", func(t *testing.T) {
		p, err := svc.Authenticate(t.Context(), token)
		require.NoError(t, err)
		require.NoError(t, svc.Logout(t.Context(), p.SessionID))

		_, err = svc.Authenticate(t.Context(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("other secret", func(t *testing.T) {
		other := *svc
		other.Secret = []byte("another-secret")
		_, err := other.Authenticate(t.Context(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := *svc
		later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Authenticate(t.Context(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": uuid.NewString()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Authenticate(t.Context(), unsigned)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestMiddleware(t *testing.T) {
	svc, _ := newAuth(t, profiles.RoleEmployee)
	token, _, err := svc.Login(t.Context(), "nok", "secret-1")
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, found := auth.FromContext(r.Context())
		if !found {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(p.Role))
	})

	tests := []struct {
		name     string
		roles    []profiles.Role
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{name: "no token", roles: []profiles.Role{profiles.RoleEmployee}, wantCode: http.StatusUnauthorized},
		{name: "garbage token", roles: []profiles.Role{profiles.RoleEmployee}, header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "basic scheme", roles: []profiles.Role{profiles.RoleEmployee}, header: "Basic " + token, wantCode: http.StatusUnauthorized},
		{name: "allowed role", roles: []profiles.Role{profiles.RoleOwner, profiles.RoleEmployee}, header: "Bearer " + token, wantCode: http.StatusOK, wantBody: "employee"},
		{name: "token in query", roles: []profiles.Role{profiles.RoleEmployee}, query: "?access_token=" + token, wantCode: http.StatusOK, wantBody: "employee"},
		{name: "wrong role", roles: []profiles.Role{profiles.RoleOwner}, header: "Bearer " + token, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := svc.Middleware(auth.RequireRole(tt.roles...)(ok))

			req := httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
