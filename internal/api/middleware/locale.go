package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/pkg/i18n"
)

// LangCookie stores the language picked on /lang/:code.
const LangCookie = "lang"

var fallbackCatalog, _ = i18n.Load(i18n.EmbeddedLocales)

// Localize picks the request language from the lang cookie, then the
// Accept-Language header, then the default language.
func Localize(catalog *i18n.Catalog) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := ""
			if ck, err := c.Cookie(LangCookie); err == nil && i18n.IsSupported(ck.Value) {
				lang = ck.Value
			} else {
				lang = i18n.DetectLanguage(c.Request().Header.Get("Accept-Language"))
			}
			c.Set(ctxLocalizer, catalog.Localizer(lang))
			return next(c)
		}
	}
}
