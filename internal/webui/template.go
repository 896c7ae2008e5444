package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"sync"
	"time"

	"github.com/xtesports/xtesports/internal/util/human"
	"github.com/xtesports/xtesports/internal/util/timeutil"
)

var (
	//go:embed static
	staticFiles embed.FS
	//go:embed template
	templates embed.FS

	staticData = must(fs.Sub(staticFiles, "static"))
)

type templator struct {
	cfg  *Config
	mu   sync.Mutex
	tmpl map[string]*template.Template
}

func newTemplator(cfg *Config) *templator {
	return &templator{
		cfg:  cfg,
		tmpl: make(map[string]*template.Template),
	}
}

func (t *templator) makeFuncs() template.FuncMap {
	return template.FuncMap{
		"asURL": func(s string) string {
			return t.cfg.prefix + s
		},
		"asStaticURL": func(s string) string {
			return t.cfg.prefix + s + "?" + t.cfg.ServerID
		},
		"humanTime": func(ts timeutil.UTCTime) string {
			if ts.IsZero() {
				return "-"
			}
			return human.Ago(time.Now(), ts.Local())
		},
		"fullTime": func(ts timeutil.UTCTime) string {
			if ts.IsZero() {
				return ""
			}
			return ts.Local().Format(time.RFC1123)
		},
		"id": func(v uint) string {
			return strconv.FormatUint(uint64(v), 10)
		},
	}
}

// Get returns the page template parsed together with the base layout.
func (t *templator) Get(name string) (*template.Template, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tmpl, ok := t.tmpl[name]; ok {
		return tmpl, nil
	}
	files := []string{"template/base.html", fmt.Sprintf("template/%v.html", name)}
	tmpl, err := template.New(name).Funcs(t.makeFuncs()).ParseFS(templates, files...)
	if err != nil {
		return nil, fmt.Errorf("template %v parse: %w", name, err)
	}
	t.tmpl[name] = tmpl
	return tmpl, nil
}
