package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type navItem struct {
	Label  string
	Icon   string
	Path   string
	Active bool
}

var navItems = []navItem{
	{Label: "Subjects", Icon: "📚", Path: "/"},
	{Label: "Mark Today", Icon: "✅", Path: "/attendance"},
	{Label: "Analytics", Icon: "📊", Path: "/analytics"},
}

// navFor returns the bottom navigation with the item for current marked active.
func navFor(current string) []navItem {
	items := make([]navItem, len(navItems))
	for i, item := range navItems {
		item.Active = item.Path == current
		items[i] = item
	}
	return items
}

// page is what the layout renders around a view.
type page struct {
	AppName string
	Build   string
	HTMXSrc string
	Title   string
	Nav     []navItem
	ViewURL string // fragment loaded into the view container

	Code    int
	Message string
}

func newPage(ctx echo.Context, title, viewURL string) page {
	p := page{
		Title:   title,
		Nav:     navFor(ctx.Request().URL.Path),
		ViewURL: viewURL,
	}
	if conf, ok := ctx.Get(confKey).(pageConf); ok {
		p.AppName, p.Build, p.HTMXSrc = conf.appName, conf.build, conf.htmxSrc
	}
	return p
}

func (p page) withError(code int, message string) page {
	p.Code, p.Message = code, message
	if p.Message == "" {
		p.Message = http.StatusText(code)
	}
	return p
}
