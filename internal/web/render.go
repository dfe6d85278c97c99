package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:embed views
var views embed.FS

// ViewData is the value handed to every page template.
type ViewData map[string]any

func loadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"price": func(d decimal.Decimal) string { return d.StringFixed(2) },
	}
	return template.New("").Funcs(funcs).ParseFS(views, "views/*.tmpl", "views/*/*.tmpl")
}

// page fills in what the layout needs: the signed-in user, the anti-forgery
// token and any pending flash messages.
func page(c *gin.Context, data ViewData) ViewData {
	if data == nil {
		data = ViewData{}
	}
	sess := sessions.Default(c)
	if u := currentUser(c); u != nil {
		data["UserName"] = u.Username
	} else if name, ok := sess.Get(sessionUser).(string); ok {
		data["UserName"] = name
	}
	data["CSRFToken"] = csrfToken(sess)
	var notices []string
	for _, f := range sess.Flashes() {
		if s, ok := f.(string); ok {
			notices = append(notices, s)
		}
	}
	data["Flashes"] = notices
	_ = sess.Save()
	return data
}

func render(c *gin.Context, status int, name string, data ViewData) {
	c.HTML(status, name, page(c, data))
}

func renderNotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.tmpl", ViewData{"Title": "Not found"})
}

func renderError(c *gin.Context) {
	render(c, http.StatusInternalServerError, "error.tmpl", ViewData{"Title": "Error"})
}

func flash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg)
	_ = sess.Save()
}
