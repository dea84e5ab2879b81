package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echoUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userId":     c.GetString(CtxUserID),
		"deviceId":   c.GetString(CtxDeviceID),
		"deviceName": c.GetString(CtxDeviceName),
		"ip":         c.GetString(CtxDeviceIP),
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeviceDetailsMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", DeviceDetailsMiddleware(), echoUser)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Device-ID", " dev-1 ")
	req.Header.Set("User-Agent", strings.Repeat("u", 150))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deviceId":"dev-1"`)
	assert.Contains(t, w.Body.String(), `"deviceName":"`+strings.Repeat("u", 100)+`"`)
	assert.Contains(t, w.Body.String(), `"ip":"203.0.113.7"`)
}

func authRouter(users UserLookup) *gin.Engine {
	r := gin.New()
	r.GET("/", DeviceDetailsMiddleware(), JWTAuthUserMiddleware(users, nil), echoUser)
	return r
}

func authed(token, device string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Device-ID", device)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	token, err := utils.GenerateToken("u1", "phone", time.Hour)
	require.NoError(t, err)
	stale, err := utils.GenerateToken("u1", "tablet", time.Hour)
	require.NoError(t, err)

	users := memrepo.NewUsers(models.User{ID: "u1", Devices: []models.Device{
		{DeviceID: "phone", TokenHash: utils.HashToken(token)},
		{DeviceID: "tablet", TokenHash: "revoked"},
	}})
	r := authRouter(users)

	w := serve(r, authed(token, "phone"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"u1"`)

	cases := map[string]*http.Request{
		"no token":         authed("", "phone"),
		"garbage token":    authed("not.a.jwt", "phone"),
		"other device":     authed(token, "laptop"),
		"superseded token": authed(stale, "tablet"),
	}
	for name, req := range cases {
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, name)
	}
}

func TestJWTAuthRejectsSuspendedMember(t *testing.T) {
	token, err := utils.GenerateToken("u1", "phone", time.Hour)
	require.NoError(t, err)
	users := memrepo.NewUsers(models.User{ID: "u1", Suspended: true, Devices: []models.Device{
		{DeviceID: "phone", TokenHash: utils.HashToken(token)},
	}})

	w := serve(authRouter(users), authed(token, "phone"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJWTAuthUnknownMember(t *testing.T) {
	token, err := utils.GenerateToken("ghost", "phone", time.Hour)
	require.NoError(t, err)
	users := memrepo.NewUsers()
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "someone-else"}))

	w := serve(authRouter(users), authed(token, "phone"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", AdminKeyMiddleware(string(hash)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	locked := gin.New()
	locked.GET("/admin", AdminKeyMiddleware(""), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := func(key string) *http.Request {
		rq := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if key != "" {
			rq.Header.Set("Authorization", "Bearer "+key)
		}
		return rq
	}
	assert.Equal(t, http.StatusNoContent, serve(r, req("s3cret")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req("wrong")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req("")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(locked, req("s3cret")).Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	r := gin.New()
	require.NoError(t, TrustProxies(r, []string{"192.0.2.0/24"}))
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) *http.Request {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.Header.Set("X-Real-IP", ip)
		return rq
	}
	assert.Equal(t, http.StatusOK, serve(r, from("198.51.100.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, from("198.51.100.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, from("198.51.100.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, from("198.51.100.2")).Code)
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", getClientIP(c))
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1)
	r := gin.New()
	require.NoError(t, TrustProxies(r, nil))
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	spoofed := func(fake string) *http.Request {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = "203.0.113.9:40000"
		rq.Header.Set("X-Forwarded-For", fake)
		rq.Header.Set("X-Real-IP", fake)
		return rq
	}
	assert.Equal(t, http.StatusOK, serve(r, spoofed("198.51.100.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, spoofed("198.51.100.2")).Code,
		"rotating the header must not buy a fresh bucket")
}

func TestGetClientIPBehindTrustedProxy(t *testing.T) {
	r := gin.New()
	require.NoError(t, TrustProxies(r, []string{"10.0.0.0/8"}))
	var got string
	r.GET("/", func(c *gin.Context) {
		got = getClientIP(c)
		c.Status(http.StatusOK)
	})

	rq := httptest.NewRequest(http.MethodGet, "/", nil)
	rq.RemoteAddr = "10.1.2.3:443"
	rq.Header.Set("X-Forwarded-For", "1.1.1.1, 198.51.100.7")
	serve(r, rq)
	assert.Equal(t, "198.51.100.7", got, "the left-most entry is client supplied")

	rq = httptest.NewRequest(http.MethodGet, "/", nil)
	rq.RemoteAddr = "203.0.113.9:40000"
	rq.Header.Set("X-Forwarded-For", "198.51.100.7")
	serve(r, rq)
	assert.Equal(t, "203.0.113.9", got)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(5)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("198.51.100.1")
	limiter.getLimiter("198.51.100.2")
	require.Len(t, limiter.visitors, 2)

	now = now.Add(limiterIdleTTL / 2)
	limiter.getLimiter("198.51.100.2")

	now = now.Add(limiterIdleTTL/2 + time.Minute)
	limiter.getLimiter("198.51.100.3")
	assert.Len(t, limiter.visitors, 2)
	assert.NotContains(t, limiter.visitors, "198.51.100.1")
	assert.Contains(t, limiter.visitors, "198.51.100.2")
	assert.Contains(t, limiter.visitors, "198.51.100.3")
}
