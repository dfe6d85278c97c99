// Package web serves the admin site: sign-in, the product pages and static assets.
package web

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"webshop/internal/catalog"
	"webshop/internal/models"
)

// UserStore looks up accounts for sign-in and authorization.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Options wires the router to its collaborators.
type Options struct {
	Catalog *catalog.Service
	Users   UserStore
	// Health reports whether the backing services are reachable.
	Health func(ctx context.Context) error
	Log    zerolog.Logger

	SessionSecret string
	SessionName   string
	SessionMaxAge time.Duration
	CookieSecure  bool

	WebRoot        string
	MaxUploadBytes int64
}

// NewRouter builds the gin engine with every route and middleware installed.
func NewRouter(o Options) (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if o.SessionName == "" {
		o.SessionName = "shop_session"
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(RequestLogger(o.Log), Recover(o.Log))

	store := cookie.NewStore([]byte(o.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(o.SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   o.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(o.SessionName, store))

	r.Static("/images", filepath.Join(o.WebRoot, "images"))
	r.Static("/static", filepath.Join(o.WebRoot, "static"))

	r.GET("/health", func(c *gin.Context) {
		if o.Health != nil {
			if err := o.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, productsPath)
	})

	limit := LimitBody(o.MaxUploadBytes)

	acct := &accountHandler{users: o.Users, log: o.Log}
	account := r.Group("/Account")
	account.GET("/Login", acct.loginForm)
	account.POST("/Login", limit, VerifyToken(), acct.login)
	account.POST("/Logout", limit, VerifyToken(), acct.logout)
	account.GET("/AccessDenied", acct.accessDenied)

	ph := &productHandler{svc: o.Catalog, log: o.Log}
	admin := r.Group("/Admin", RequireRole(o.Users, models.RoleAdmin), limit, VerifyToken())
	admin.GET("/Product", ph.list)
	admin.GET("/Product/Create", ph.createForm)
	admin.POST("/Product/Create", ph.create)
	admin.GET("/Product/Edit/:id", ph.editForm)
	admin.POST("/Product/Edit/:id", ph.edit)
	admin.GET("/Product/Delete/:id", ph.deleteView)
	admin.POST("/Product/Delete/:id", ph.deleteConfirmed)

	r.NoRoute(func(c *gin.Context) {
		renderNotFound(c)
	})
	return r, nil
}
