package web

import (
	"bytes"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/security"
)

// views はページ名ごとに解析済みのテンプレートを保持する。
// 各ページは layout.html と組み合わせて "layout" として実行する。
type views struct {
	pages map[string]*template.Template
}

func parseViews(renderer security.Renderer) (*views, error) {
	funcs := template.FuncMap{
		"markdown":  renderer.Render,
		"title":     titleCase,
		"joinList":  content.JoinList,
		"joinLines": content.JoinLines,
		"hasTag":    slices.Contains[[]string, string],
		"date":      formatDate,
		"initial":   initial,
		"hasPrefix": strings.HasPrefix,
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	v := &views{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		page := strings.TrimSuffix(path.Base(name), ".html")
		if page == "layout" {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, name); err != nil {
			return nil, err
		}
		v.pages[page] = t
	}
	return v, nil
}

// titleCase はセクション名などの見出しを英語のタイトルケースに変換する。
// cases.Caserはgoroutine間で共有できないため呼び出しごとに生成する。
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func formatDate(t any) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("Jan 2, 2006")
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format("Jan 2, 2006")
	}
	return ""
}

func initial(s string) string {
	for _, r := range s {
		return strings.ToUpper(string(r))
	}
	return ""
}

// pageData は全ページ共通のテンプレート入力。Bodyにページ固有の値を入れる。
type pageData struct {
	Title     string
	Site      *model.Site
	Admin     string
	CSRFToken string
	Path      string
	Body      any
}

func (p *Pages) newPageData(r *http.Request, title string, site *model.Site, body any) pageData {
	admin, _ := auth.AdminFromContext(r.Context())
	return pageData{
		Title:     title,
		Site:      site,
		Admin:     admin,
		CSRFToken: middleware.CSRFToken(r),
		Path:      r.URL.Path,
		Body:      body,
	}
}

// render はテンプレートをバッファに実行してからレスポンスに書き込む。
// 実行途中で失敗した場合に不完全なHTMLを返さないため。
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := p.views.pages[page]
	if !ok {
		p.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.logger.Error("template execution failed",
			slog.String("page", page),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Status  int
	Heading string
	Message string
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	site := model.DefaultSite()
	if s, err := p.content.GetSite(r.Context()); err == nil {
		site = *s
	}
	p.render(w, r, status, "error", p.newPageData(r, http.StatusText(status), &site, errorView{
		Status:  status,
		Heading: http.StatusText(status),
		Message: message,
	}))
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}
