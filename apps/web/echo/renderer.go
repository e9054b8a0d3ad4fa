package echoweb

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

const reloadDelay = 100 * time.Millisecond

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// renderer executes pages as "layout" in their own template set
// and any other name (fragments) from the shared set of partials.
type renderer struct {
	fsys   fs.FS
	logger core.Logger

	mu       sync.RWMutex
	partials *template.Template
	pages    map[string]*template.Template

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newRenderer(fsys fs.FS, logger core.Logger) (*renderer, error) {
	r := &renderer{fsys: fsys, logger: logger}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) load() error {
	partials, err := template.New("").Funcs(templateFuncs).ParseFS(r.fsys, "layout.gohtml", "partials/*.gohtml")
	if err != nil {
		return errors.Wrap(err, "parsing partials")
	}

	fps, err := fs.Glob(r.fsys, "pages/*.gohtml")
	if err != nil {
		return errors.Wrap(err, "listing pages")
	}
	pages := make(map[string]*template.Template, len(fps))
	for _, fp := range fps {
		name := strings.TrimSuffix(path.Base(fp), path.Ext(fp))
		set, err := partials.Clone()
		if err != nil {
			return errors.Wrapf(err, "cloning partials for %s", name)
		}
		if pages[name], err = set.ParseFS(r.fsys, fp); err != nil {
			return errors.Wrapf(err, "parsing page %s", name)
		}
	}

	r.mu.Lock()
	r.partials, r.pages = partials, pages
	r.mu.Unlock()
	return nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.mu.RLock()
	page, isPage := r.pages[name]
	partials := r.partials
	r.mu.RUnlock()

	if isPage {
		return page.ExecuteTemplate(w, "layout", data)
	}
	return partials.ExecuteTemplate(w, name, data)
}

// watch reloads the templates whenever a file under dir changes.
// A broken template is logged and the previous set stays in use.
func (r *renderer) watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating template watcher")
	}
	for _, sub := range []string{"", "pages", "partials"} {
		if err := watcher.Add(filepath.Join(dir, sub)); err != nil {
			_ = watcher.Close()
			return errors.Wrapf(err, "watching %s", filepath.Join(dir, sub))
		}
	}
	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		var pending *time.Timer
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					if pending != nil {
						pending.Stop()
					}
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				// editors fire bursts of events for a single save
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(reloadDelay, r.reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("echoweb.renderer: watching templates", err)
			}
		}
	}()
	return nil
}

func (r *renderer) reload() {
	if err := r.load(); err != nil {
		r.logger.Error("echoweb.renderer: reloading templates", err)
		return
	}
	r.logger.Debug("echoweb.renderer: templates reloaded")
}

func (r *renderer) close() {
	if r.watcher == nil {
		return
	}
	_ = r.watcher.Close()
	<-r.done
	r.watcher = nil
}
