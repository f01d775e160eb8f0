package helpers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-clean-starter/pkg/helpers"
)

func TestBcryptHasher(t *testing.T) {
	h := helpers.BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)
	assert.True(t, h.Compare(hash, "Sup3rSecret"))
	assert.False(t, h.Compare(hash, "wrong"))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, exp, err := m.GenerateAccessToken("u-1", "s-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "s-1", claims.SessionID)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not verify with the refresh secret")
}

func TestJWTManager_Expired(t *testing.T) {
	m := helpers.NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("u-1", "s-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bkt/avatars/u1/a.png", helpers.PublicURL("bkt", "avatars/u1/a.png"))
}

func TestCookieManager(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := helpers.NewCookie("example.com", true)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	m.SetPair(c, "a", time.Now().Add(time.Minute), "r", time.Now().Add(time.Hour))
	m.Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 4)
	assert.Equal(t, helpers.AccessCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Greater(t, cookies[1].MaxAge, 3000)
	assert.Equal(t, -1, cookies[3].MaxAge)
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, helpers.NewLogger("app", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, helpers.NewLogger("app", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, helpers.NewLogger("app", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, helpers.NewLogger("app", "production", "loud").GetLevel())
}

func TestRedisJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type item struct{ Name string }
	require.NoError(t, mr.Set("k", `{"Name":"lamp"}`))

	var got item
	ok, err := helpers.RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lamp", got.Name)

	require.NoError(t, helpers.RedisDel(ctx, rdb, "k"))
	ok, err = helpers.RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set("k", "not json"))
	_, err = helpers.RedisGetJSON(ctx, rdb, "k", &got)
	assert.Error(t, err)
}

func TestPingES(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"}}`))
	}))
	t.Cleanup(srv.Close)

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	require.NoError(t, helpers.PingES(context.Background(), es))

	status.Store(http.StatusUnauthorized)
	assert.Error(t, helpers.PingES(context.Background(), es))
}
