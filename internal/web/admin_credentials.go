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

type credentialsFormView struct {
	Draft   model.Credentials
	Saved   bool
	Failure *formFailure
}

func (p *Pages) credentialsForm(w http.ResponseWriter, r *http.Request) {
	creds, err := p.content.GetCredentials(r.Context())
	if err != nil {
		p.logger.ErrorContext(r.Context(), "credentials read failed", slog.String("error", err.Error()))
		p.renderError(w, r, http.StatusServiceUnavailable, "Credentials could not be loaded. Please try again later.")
		return
	}
	p.renderCredentialsForm(w, r, http.StatusOK, credentialsFormView{
		Draft: *creds,
		Saved: r.URL.Query().Get("saved") == "1",
	})
}

// saveCredentials は行の追加・削除と保存を処理する。
// 追加・削除は下書きを更新して再表示するだけで、ストアには書き込まない。
func (p *Pages) saveCredentials(w http.ResponseWriter, r *http.Request) {
	if !p.parseForm(w, r) {
		return
	}

	draft := credentialsDraftFromForm(r.PostForm)
	if next, ok := applyRowAction(draft, r.PostForm.Get("action")); ok {
		p.renderCredentialsForm(w, r, http.StatusOK, credentialsFormView{Draft: next})
		return
	}

	if _, err := p.content.UpdateCredentials(r.Context(), content.CredentialsPatchFromDraft(draft)); err != nil {
		status, f := p.failure(r, "update credentials", err)
		p.renderCredentialsForm(w, r, status, credentialsFormView{Draft: draft, Failure: f})
		return
	}
	redirect(w, r, "/admin/credentials?saved=1")
}

func (p *Pages) renderCredentialsForm(w http.ResponseWriter, r *http.Request, status int, view credentialsFormView) {
	p.render(w, r, status, "admin_credentials", p.newPageData(r, "Edit Credentials", nil, view))
}

// credentialsDraftFromForm は行ごとに同名で繰り返される入力欄を下書きに組み立てる。
func credentialsDraftFromForm(form url.Values) model.Credentials {
	c := model.EmptyCredentials()

	for i, title := range form["cert_title"] {
		c.Certifications = append(c.Certifications, model.Certification{
			Title:  title,
			Issuer: valueAt(form["cert_issuer"], i),
			Date:   valueAt(form["cert_date"], i),
			Link:   valueAt(form["cert_link"], i),
		})
	}
	for i, degree := range form["edu_degree"] {
		c.Education = append(c.Education, model.Education{
			Degree: degree,
			School: valueAt(form["edu_school"], i),
			Year:   valueAt(form["edu_year"], i),
		})
	}
	for i, category := range form["skill_category"] {
		c.Skills = append(c.Skills, model.SkillGroup{Category: category, Items: []string{}})
		c = content.SetSkillItems(c, i, valueAt(form["skill_items"], i))
	}
	return c
}

// applyRowAction は "add-cert" や "remove-skill:2" 形式のactionを下書きに適用する。
// 行操作でない場合（保存）はfalseを返す。
func applyRowAction(c model.Credentials, action string) (model.Credentials, bool) {
	kind, rawIndex, _ := strings.Cut(action, ":")
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		index = -1
	}

	switch kind {
	case "add-cert":
		return content.AddCertification(c), true
	case "remove-cert":
		return content.RemoveCertification(c, index), true
	case "add-edu":
		return content.AddEducation(c), true
	case "remove-edu":
		return content.RemoveEducation(c, index), true
	case "add-skill":
		return content.AddSkillGroup(c), true
	case "remove-skill":
		return content.RemoveSkillGroup(c, index), true
	}
	return c, false
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
