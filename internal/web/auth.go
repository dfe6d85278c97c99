package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"webshop/internal/models"
	"webshop/internal/store"
)

const (
	sessionUser = "user_username"
	userKey     = "currentUser"

	loginPath        = "/Account/Login"
	accessDeniedPath = "/Account/AccessDenied"
)

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequireRole lets the request through only for a signed-in account with
// role. Anonymous visitors go to the sign-in page and everyone else to the
// access denied page.
func RequireRole(users UserStore, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		username, _ := sess.Get(sessionUser).(string)
		if username == "" {
			redirectToLogin(c)
			return
		}
		u, err := users.FindByUsername(c.Request.Context(), username)
		if errors.Is(err, store.ErrNotFound) {
			sess.Delete(sessionUser)
			_ = sess.Save()
			redirectToLogin(c)
			return
		}
		if err != nil {
			_ = c.Error(err)
			renderError(c)
			c.Abort()
			return
		}
		if u.Role != role {
			c.Redirect(http.StatusSeeOther, accessDeniedPath)
			c.Abort()
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	target := loginPath + "?ReturnUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// localURL reports whether u is a path on this site.
func localURL(u string) bool {
	return strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") && !strings.HasPrefix(u, "/\\")
}

type accountHandler struct {
	users UserStore
	log   zerolog.Logger
}

func (h *accountHandler) loginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.tmpl", ViewData{
		"Title":     "Sign in",
		"Username":  "",
		"ReturnUrl": c.Query("ReturnUrl"),
	})
}

func (h *accountHandler) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("Username"))
	password := c.PostForm("Password")
	returnURL := c.PostForm("ReturnUrl")

	u, err := h.users.FindByUsername(c.Request.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Msg("sign-in lookup failed")
		renderError(c)
		return
	}
	if u == nil || !models.CheckPassword(u.PasswordHash, password) {
		h.log.Info().Str("username", username).Msg("sign-in rejected")
		render(c, http.StatusUnauthorized, "login.tmpl", ViewData{
			"Title":     "Sign in",
			"Error":     "Invalid username or password.",
			"Username":  username,
			"ReturnUrl": returnURL,
		})
		return
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(sessionUser, u.Username)
	if err := sess.Save(); err != nil {
		h.log.Error().Err(err).Msg("save session")
		renderError(c)
		return
	}
	h.log.Info().Str("username", u.Username).Msg("signed in")

	if !localURL(returnURL) {
		returnURL = productsPath
	}
	c.Redirect(http.StatusSeeOther, returnURL)
}

func (h *accountHandler) logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *accountHandler) accessDenied(c *gin.Context) {
	render(c, http.StatusForbidden, "access_denied.tmpl", ViewData{"Title": "Access denied"})
}
