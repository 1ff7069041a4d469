package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

type projectListView struct {
	Projects []*model.Project
	Failure  *formFailure
}

func (p *Pages) projectList(w http.ResponseWriter, r *http.Request) {
	projects, err := p.content.ListProjects(r.Context())
	if err != nil {
		status, f := p.failure(r, "list projects", err)
		f.Message = "Projects could not be loaded. Please try again."
		p.renderProjectList(w, r, status, projectListView{Projects: []*model.Project{}, Failure: f})
		return
	}
	p.renderProjectList(w, r, http.StatusOK, projectListView{Projects: projects})
}

func (p *Pages) renderProjectList(w http.ResponseWriter, r *http.Request, status int, view projectListView) {
	p.render(w, r, status, "admin_projects", p.newPageData(r, "Projects", nil, view))
}

type projectFormView struct {
	Draft   model.Project
	IsNew   bool
	Failure *formFailure
}

func (p *Pages) renderProjectForm(w http.ResponseWriter, r *http.Request, status int, view projectFormView) {
	title := "Edit Project"
	if view.IsNew {
		title = "New Project"
	}
	p.render(w, r, status, "admin_project", p.newPageData(r, title, nil, view))
}

func (p *Pages) newProjectForm(w http.ResponseWriter, r *http.Request) {
	p.renderProjectForm(w, r, http.StatusOK, projectFormView{IsNew: true})
}

func (p *Pages) createProject(w http.ResponseWriter, r *http.Request) {
	if !p.parseForm(w, r) {
		return
	}

	draft, err := projectDraftFromForm(r.PostForm)
	if err == nil {
		_, err = p.content.CreateProject(r.Context(), content.ProjectInputFromDraft(draft))
	}
	if err != nil {
		status, f := p.failure(r, "create project", err)
		p.renderProjectForm(w, r, status, projectFormView{Draft: draft, IsNew: true, Failure: f})
		return
	}
	redirect(w, r, "/admin/projects")
}

func (p *Pages) editProjectForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	project, err := p.content.GetProject(r.Context(), id)
	if err != nil {
		if model.IsCode(err, model.ErrCodeProjectNotFound) {
			p.notFound(w, r)
			return
		}
		p.logger.ErrorContext(r.Context(), "project read failed", slog.String("id", id), slog.String("error", err.Error()))
		p.renderError(w, r, http.StatusServiceUnavailable, "The project could not be loaded. Please try again later.")
		return
	}
	p.renderProjectForm(w, r, http.StatusOK, projectFormView{Draft: *project})
}

func (p *Pages) updateProject(w http.ResponseWriter, r *http.Request) {
	if !p.parseForm(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	draft, err := projectDraftFromForm(r.PostForm)
	draft.ID = id
	if err == nil {
		_, err = p.content.UpdateProject(r.Context(), id, content.ProjectPatchFromDraft(draft))
	}
	if err != nil {
		status, f := p.failure(r, "update project", err)
		p.renderProjectForm(w, r, status, projectFormView{Draft: draft, Failure: f})
		return
	}
	redirect(w, r, "/admin/projects")
}

func (p *Pages) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := p.content.DeleteProject(r.Context(), id); err != nil {
		status, f := p.failure(r, "delete project", err)
		f.Message = "Failed to delete the project."
		projects, listErr := p.content.ListProjects(r.Context())
		if listErr != nil {
			projects = []*model.Project{}
		}
		p.renderProjectList(w, r, status, projectListView{Projects: projects, Failure: f})
		return
	}
	redirect(w, r, "/admin/projects")
}

// projectDraftFromForm はフォームをプロジェクトの下書きに変換する。
// リストはカンマ区切り（tags, stack）または改行区切り（gallery, features, learnings）で入力する。
func projectDraftFromForm(form url.Values) (model.Project, error) {
	order, err := parseOptionalInt(form.Get("order"))
	draft := model.Project{
		Slug:        form.Get("slug"),
		Name:        form.Get("name"),
		Tagline:     form.Get("tagline"),
		Description: form.Get("description"),
		Tags:        content.SplitList(form.Get("tags")),
		Stack:       content.SplitList(form.Get("stack")),
		Featured:    form.Get("featured") != "",
		Links: model.ProjectLinks{
			GitHub: form.Get("github"),
			Live:   form.Get("live"),
			Docs:   form.Get("docs"),
		},
		Gallery: content.SplitLines(form.Get("gallery")),
		Sections: model.ProjectSections{
			Overview:  form.Get("overview"),
			Problem:   form.Get("problem"),
			Features:  content.SplitLines(form.Get("features")),
			Learnings: content.SplitLines(form.Get("learnings")),
		},
		Order: order,
	}
	if err != nil {
		return draft, model.NewInvalidRequestError("order must be a whole number")
	}
	return draft, nil
}
