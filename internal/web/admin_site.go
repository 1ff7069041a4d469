package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

type siteFormView struct {
	Draft   model.Site
	Saved   bool
	Failure *formFailure
}

func (p *Pages) siteForm(w http.ResponseWriter, r *http.Request) {
	site, err := p.content.GetSite(r.Context())
	if err != nil {
		p.logger.ErrorContext(r.Context(), "site read failed", slog.String("error", err.Error()))
		p.renderError(w, r, http.StatusServiceUnavailable, "The site profile could not be loaded. Please try again later.")
		return
	}
	p.render(w, r, http.StatusOK, "admin_site", p.newPageData(r, "Edit Site", nil, siteFormView{
		Draft: *site,
		Saved: r.URL.Query().Get("saved") == "1",
	}))
}

// saveSite はフォームを下書きにデコードして保存する。失敗時は下書きをそのまま再表示する。
func (p *Pages) saveSite(w http.ResponseWriter, r *http.Request) {
	if !p.parseForm(w, r) {
		return
	}
	draft, err := siteDraftFromForm(r.PostForm)
	if err == nil {
		_, err = p.content.UpdateSite(r.Context(), content.SitePatchFromDraft(draft))
	}
	if err != nil {
		status, f := p.failure(r, "update site", err)
		p.render(w, r, status, "admin_site", p.newPageData(r, "Edit Site", nil, siteFormView{
			Draft:   draft,
			Failure: f,
		}))
		return
	}
	redirect(w, r, "/admin/site?saved=1")
}

// siteDraftFromForm はフォームの各項目グループを順に下書きへ反映する。
// following が数値でない場合もそれ以外の項目は反映した下書きを返す。
func siteDraftFromForm(form url.Values) (model.Site, error) {
	var draft model.Site

	draft = content.ApplyIdentity(draft, content.IdentityFields{
		Name:       form.Get("name"),
		Title:      form.Get("title"),
		Location:   form.Get("location"),
		Email:      form.Get("email"),
		ShortBio:   form.Get("shortBio"),
		ResumePath: form.Get("resumePath"),
	})
	draft = content.ApplySocials(draft, model.Socials{
		GitHub:   form.Get("github"),
		LinkedIn: form.Get("linkedin"),
		Facebook: form.Get("facebook"),
	})

	following, err := parseOptionalInt(form.Get("following"))
	draft = content.ApplyProfile(draft, model.SiteProfile{
		CoverImage:   form.Get("coverImage"),
		Avatar:       form.Get("avatar"),
		Username:     form.Get("username"),
		Followers:    form.Get("followers"),
		Following:    following,
		Joined:       form.Get("joined"),
		Work:         form.Get("work"),
		Education:    form.Get("education"),
		Relationship: form.Get("relationship"),
	})
	if err != nil {
		return draft, model.NewInvalidRequestError("profile.following must be a whole number")
	}
	return draft, nil
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
