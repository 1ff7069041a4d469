package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// snapshot は1リクエスト分の表示用データ。読み取りに失敗した項目はフォールバック値になる。
type snapshot struct {
	Site        *model.Site
	Projects    []*model.Project
	Credentials *model.Credentials
}

type loadOptions struct {
	projects    bool
	credentials bool
}

// load はサイト情報と、必要に応じてプロジェクト一覧・資格情報を並行して読み込む。
// 個々の読み取りの失敗はログに残してフォールバック値に置き換え、エラーとしては返さない。
//   - サイト情報: デフォルトのプロフィール
//   - プロジェクト一覧: 空のリスト
//   - 資格情報: 空のリスト群
func (p *Pages) load(ctx context.Context, opts loadOptions) snapshot {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		site, err := p.content.GetSite(ctx)
		if err != nil {
			p.logger.WarnContext(ctx, "site read failed, using default profile", slog.String("error", err.Error()))
			def := model.DefaultSite()
			site = &def
		}
		snap.Site = site
		return nil
	})

	if opts.projects {
		g.Go(func() error {
			projects, err := p.content.ListProjects(ctx)
			if err != nil {
				p.logger.WarnContext(ctx, "project list read failed, showing none", slog.String("error", err.Error()))
				projects = []*model.Project{}
			}
			snap.Projects = projects
			return nil
		})
	}

	if opts.credentials {
		g.Go(func() error {
			creds, err := p.content.GetCredentials(ctx)
			if err != nil {
				p.logger.WarnContext(ctx, "credentials read failed, showing none", slog.String("error", err.Error()))
				empty := model.EmptyCredentials()
				creds = &empty
			}
			snap.Credentials = creds
			return nil
		})
	}

	_ = g.Wait()
	return snap
}

type homeView struct {
	Featured       []*model.Project
	ProjectCount   int
	Skills         []model.SkillGroup
	Certifications []model.Certification
}

// home はプロフィールカード、注目プロジェクト、スキル概要を表示する。
func (p *Pages) home(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{projects: true, credentials: true})
	p.render(w, r, http.StatusOK, "home", p.newPageData(r, snap.Site.Name, snap.Site, homeView{
		Featured:       content.FeaturedProjects(snap.Projects, content.FeaturedLimit),
		ProjectCount:   len(snap.Projects),
		Skills:         snap.Credentials.Skills,
		Certifications: snap.Credentials.Certifications,
	}))
}

type aboutView struct {
	Education []model.Education
	Skills    []model.SkillGroup
}

func (p *Pages) about(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{credentials: true})
	p.render(w, r, http.StatusOK, "about", p.newPageData(r, "About", snap.Site, aboutView{
		Education: snap.Credentials.Education,
		Skills:    snap.Credentials.Skills,
	}))
}

type projectsView struct {
	Query        string
	SelectedTags []string
	AllTags      []string
	Projects     []*model.Project
	Total        int
}

// projects はプロジェクト一覧を ?q= と ?tag= で絞り込んで表示する。
func (p *Pages) projects(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{projects: true})

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	tags := content.SplitList(strings.Join(r.URL.Query()["tag"], ","))

	p.render(w, r, http.StatusOK, "projects", p.newPageData(r, "Projects", snap.Site, projectsView{
		Query:        query,
		SelectedTags: tags,
		AllTags:      content.AllTags(snap.Projects),
		Projects:     content.FilterProjects(snap.Projects, query, tags),
		Total:        len(snap.Projects),
	}))
}

type section struct {
	Heading string
	Text    string
	Items   []string
}

type projectDetailView struct {
	Project  *model.Project
	Sections []section
}

func (p *Pages) projectDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	project, err := p.content.GetProject(r.Context(), slug)
	if err != nil {
		if model.IsCode(err, model.ErrCodeProjectNotFound) {
			p.notFound(w, r)
			return
		}
		p.logger.ErrorContext(r.Context(), "project read failed", slog.String("slug", slug), slog.String("error", err.Error()))
		p.renderError(w, r, http.StatusServiceUnavailable, "This project is temporarily unavailable. Please try again later.")
		return
	}

	snap := p.load(r.Context(), loadOptions{})
	p.render(w, r, http.StatusOK, "project", p.newPageData(r, project.Name, snap.Site, projectDetailView{
		Project:  project,
		Sections: projectSections(project.Sections),
	}))
}

func projectSections(s model.ProjectSections) []section {
	out := []section{
		{Heading: titleCase("overview"), Text: s.Overview},
		{Heading: titleCase("the problem"), Text: s.Problem},
	}
	if len(s.Features) > 0 {
		out = append(out, section{Heading: titleCase("key features"), Items: s.Features})
	}
	if len(s.Learnings) > 0 {
		out = append(out, section{Heading: titleCase("what I learned"), Items: s.Learnings})
	}
	return out
}

type credentialsView struct {
	Credentials *model.Credentials
}

func (p *Pages) credentials(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{credentials: true})
	p.render(w, r, http.StatusOK, "credentials", p.newPageData(r, "Credentials", snap.Site, credentialsView{
		Credentials: snap.Credentials,
	}))
}

func (p *Pages) resume(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{})
	p.render(w, r, http.StatusOK, "resume", p.newPageData(r, "Resume", snap.Site, nil))
}

func (p *Pages) contact(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{})
	p.render(w, r, http.StatusOK, "contact", p.newPageData(r, "Contact", snap.Site, nil))
}
