package httpx

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
)

//go:embed views
var viewsFS embed.FS

// Page names.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageAdmin     = "admin"
	PagePending   = "pending"
)

// PageData is the view model shared by every page.
type PageData struct {
	Title         string
	Identity      *domainauth.Identity
	LoginPath     string
	DashboardPath string
	RetryPath     string
	Error         string
	FieldErrors   map[string]string
	Form          any
	Data          any
}

// TemplateRenderer renders HTML pages. Each page is parsed together with the layout.
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem with layout.tmpl and pages/*.tmpl (defaults to the embedded views)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses the layout and every page.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	fsys := cfg.TemplateFS
	if fsys == nil {
		sub, err := fs.Sub(viewsFS, "views")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("root").ParseFS(fsys, "layout.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "layout"))
		return nil, err
	}
	files, err := fs.Glob(fsys, "pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".tmpl")
		t, cerr := base.Clone()
		if cerr != nil {
			return nil, cerr
		}
		if _, perr := t.ParseFS(fsys, f); perr != nil {
			logger.Error("template parsing failed", slog.Any("error", perr), slog.String("page", name))
			return nil, perr
		}
		pages[name] = t
	}
	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. htmx requests get only the content fragment.
func (r *TemplateRenderer) Render(w http.ResponseWriter, req *http.Request, page string, status int, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	name := "layout"
	if req != nil && WantsPartial(req) {
		name = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", slog.String("page", page), slog.Any("error", err))
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template", slog.String("page", page), slog.Any("error", err))
		return err
	}
	return nil
}
