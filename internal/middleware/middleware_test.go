package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCors(t *testing.T) {
	handler := CORS("http://localhost:3000")(okHandler)

	t.Run("OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Normal request", func(t *testing.T) {
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := auth.FromContext(r.Context())
			assert.ErrorIs(t, err, auth.ErrUnauthenticated)
			w.WriteHeader(http.StatusOK)
		})
		w := httptest.NewRecorder()

		Authenticate(tm)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		Authenticate(tm)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, _, err := tm.Issue(auth.Identity{UserID: 1, Email: "a@b.c", Role: auth.RoleCustomer})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.FromContext(r.Context())
			assert.NoError(t, err)
			assert.Equal(t, uint(1), id.UserID)
			assert.Equal(t, auth.RoleCustomer, id.Role)
			w.WriteHeader(http.StatusOK)
		})

		Authenticate(tm)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 1,
			"role":    "customer",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Authenticate(tm)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		Authenticate(tm)(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func withIdentity(r *http.Request, id auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

func TestRequireAuth(t *testing.T) {
	w := httptest.NewRecorder()
	RequireAuth(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), auth.Identity{UserID: 2, Role: auth.RoleCustomer})
	RequireAuth(okHandler).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	staffOnly := RequireRole(auth.RoleStaff)(okHandler)

	cases := []struct {
		name string
		id   *auth.Identity
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &auth.Identity{UserID: 2, Role: auth.RoleCustomer}, http.StatusForbidden},
		{"staff", &auth.Identity{UserID: 1, Role: auth.RoleStaff}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders/all", nil)
			if tc.id != nil {
				req = withIdentity(req, *tc.id)
			}
			w := httptest.NewRecorder()

			staffOnly.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("Strict tier for checkout", func(t *testing.T) {
		rl := NewRateLimiter()
		h := rl.Middleware(okHandler)

		codes := map[int]int{}
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
			req.RemoteAddr = "10.0.0.1:5555"
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			codes[w.Code]++
		}

		assert.Equal(t, burstStrict, codes[http.StatusOK])
		assert.Equal(t, 1, codes[http.StatusTooManyRequests])
	})

	t.Run("Users and tiers get separate buckets", func(t *testing.T) {
		rl := NewRateLimiter()
		h := rl.Middleware(okHandler)

		for i := 0; i < burstStrict; i++ {
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/orders", nil), auth.Identity{UserID: 1, Role: auth.RoleCustomer})
			h.ServeHTTP(httptest.NewRecorder(), req)
		}

		other := withIdentity(httptest.NewRequest(http.MethodPost, "/api/orders", nil), auth.Identity{UserID: 2, Role: auth.RoleCustomer})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)

		browse := withIdentity(httptest.NewRequest(http.MethodGet, "/api/products", nil), auth.Identity{UserID: 1, Role: auth.RoleCustomer})
		w = httptest.NewRecorder()
		h.ServeHTTP(w, browse)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cleanup evicts idle visitors", func(t *testing.T) {
		rl := NewRateLimiter()
		base := time.Now()
		rl.now = func() time.Time { return base }
		rl.get("ip:1:general", limitGeneral, burstGeneral)

		rl.now = func() time.Time { return base.Add(visitorIdle + time.Second) }
		rl.cleanup()

		assert.Empty(t, rl.visitors)
	})
}

func TestResolveRateTier(t *testing.T) {
	cases := []struct {
		method, path, tier string
	}{
		{http.MethodPost, "/api/auth/login", "strict"},
		{http.MethodPost, "/api/orders", "strict"},
		{http.MethodGet, "/api/orders/my-orders", "general"},
		{http.MethodGet, "/api/products/abc", "browse"},
		{http.MethodPut, "/api/products/abc", "general"},
	}
	for _, tc := range cases {
		_, _, tier := resolveRateTier(httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.tier, tier, tc.method+" "+tc.path)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req = req.WithContext(logger.WithUserID(logger.WithRequestID(req.Context(), "rid-1"), 5))

	LoggingMiddleware(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	LoggingMiddleware(failing).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, 200, entries[0].ContextMap()["status"])

	fields := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, 500, fields["status"])
	assert.EqualValues(t, 4, fields["bytes"])
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.EqualValues(t, 5, fields["user_id"])
}
