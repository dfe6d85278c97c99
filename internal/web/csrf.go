package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionCSRF = "csrf_token"
	// CSRFField is the form field the anti-forgery token is posted in.
	CSRFField = "__RequestVerificationToken"
	// CSRFHeader carries the token for non-form clients.
	CSRFHeader = "X-CSRF-Token"

	multipartMemory = 8 << 20
)

// csrfToken returns the session's anti-forgery token, creating one when
// the session has none yet. The caller saves the session.
func csrfToken(sess sessions.Session) string {
	if tok, ok := sess.Get(sessionCSRF).(string); ok && tok != "" {
		return tok
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	tok := base64.RawURLEncoding.EncodeToString(b)
	sess.Set(sessionCSRF, tok)
	return tok
}

// VerifyToken rejects state-changing requests whose anti-forgery token does
// not match the one stored in the session.
func VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if err := parseBody(c.Request); err != nil {
			if isTooLarge(err) {
				c.AbortWithStatus(http.StatusRequestEntityTooLarge)
				return
			}
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		got := c.GetHeader(CSRFHeader)
		if got == "" {
			got = c.Request.PostFormValue(CSRFField)
		}
		want, _ := sessions.Default(c).Get(sessionCSRF).(string)
		if want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Next()
	}
}

func parseBody(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}
