// Package view renders the server-side HTML screens.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/pkg/i18n"
)

//go:embed templates/*.html templates/pages/*.html
var templateFS embed.FS

// Header variants.
const (
	HeaderGuest      = "guest"
	HeaderCustomer   = "customer"
	HeaderOwner      = "owner"
	HeaderAdmin      = "admin"
	HeaderIncomplete = "incomplete"
)

// HeaderFor picks the navigation header shown to access.
func HeaderFor(a domain.Access) string {
	switch a.Kind {
	case domain.AccessCustomer:
		return HeaderCustomer
	case domain.AccessOwner:
		return HeaderOwner
	case domain.AccessAdmin:
		return HeaderAdmin
	case domain.AccessProfileIncomplete, domain.AccessRoleUnknown:
		return HeaderIncomplete
	default:
		return HeaderGuest
	}
}

// Page is the data every template receives.
type Page struct {
	Title  string // translation key
	Access domain.Access
	Header string
	Lang   string
	CSRF   string

	// Flash is a translation key shown above the content.
	Flash      string
	FlashError bool

	// Errors maps form field names to translation keys.
	Errors map[string]string
	// Form holds submitted values so a failed form is re-rendered as typed.
	Form map[string]string

	Data any

	// RefreshAfter, when positive, makes the browser load RefreshURL after
	// that many seconds.
	RefreshAfter int
	RefreshURL   string

	loc *i18n.Localizer
}

// NewPage builds the page skeleton for the current request.
func NewPage(title string, access domain.Access, loc *i18n.Localizer, csrf string) *Page {
	return &Page{
		Title:  title,
		Access: access,
		Header: HeaderFor(access),
		Lang:   loc.Lang(),
		CSRF:   csrf,
		Errors: map[string]string{},
		Form:   map[string]string{},
		loc:    loc,
	}
}

// T translates key in the page language.
func (p *Page) T(key string) string {
	if p.loc == nil {
		return key
	}
	return p.loc.T(key)
}

// FieldError returns the translated error of field, or "".
func (p *Page) FieldError(field string) string {
	key, ok := p.Errors[field]
	if !ok {
		return ""
	}
	return p.T(key)
}

// Renderer implements echo.Renderer over the embedded templates. Each page
// is parsed together with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/*.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the layout with the named page's content block.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	// money prints the stored value as is: 12.5 stays 12.5, 12.345 stays 12.345.
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"join":  strings.Join,
	"lines": func(ss []string) string { return strings.Join(ss, "\n") },
	"actions": func(s domain.BookingStatus) []string {
		var out []string
		for _, action := range []string{"accept", "reject", "complete"} {
			next, _ := domain.BookingStatusFromAction(action)
			if s.CanTransitionTo(next) {
				out = append(out, action)
			}
		}
		return out
	},
}
