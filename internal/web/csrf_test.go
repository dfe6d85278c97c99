package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenEngine serves GET /token, which hands out the session token, and
// POST /submit behind the body limit and the token check.
func tokenEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.GET("/token", func(c *gin.Context) {
		sess := sessions.Default(c)
		tok := csrfToken(sess)
		_ = sess.Save()
		c.String(http.StatusOK, tok)
	})
	r.POST("/submit", LimitBody(limit), VerifyToken(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func issueToken(t *testing.T, r *gin.Engine) (string, []*http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String(), w.Result().Cookies()
}

func submit(r *gin.Engine, cookies []*http.Cookie, body string, header string) int {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if header != "" {
		req.Header.Set(CSRFHeader, header)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestVerifyToken(t *testing.T) {
	r := tokenEngine(1 << 20)
	tok, cookies := issueToken(t, r)
	require.NotEmpty(t, tok)

	form := url.Values{CSRFField: {tok}}.Encode()
	assert.Equal(t, http.StatusOK, submit(r, cookies, form, ""))
	assert.Equal(t, http.StatusOK, submit(r, cookies, "", tok))
	assert.Equal(t, http.StatusBadRequest, submit(r, cookies, "", ""))
	assert.Equal(t, http.StatusBadRequest, submit(r, cookies, url.Values{CSRFField: {tok + "x"}}.Encode(), ""))
	assert.Equal(t, http.StatusBadRequest, submit(r, nil, form, ""), "token without its session")
}

func TestTokenIsStablePerSession(t *testing.T) {
	r := tokenEngine(1 << 20)
	tok, cookies := issueToken(t, r)

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, tok, w.Body.String())

	other, _ := issueToken(t, r)
	assert.NotEqual(t, tok, other)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	r := tokenEngine(64)
	tok, cookies := issueToken(t, r)

	body := url.Values{CSRFField: {tok}, "pad": {string(bytes.Repeat([]byte("a"), 256))}}.Encode()
	assert.Equal(t, http.StatusRequestEntityTooLarge, submit(r, cookies, body, ""))
}
