package content

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/repository"
)

// ProjectInput はプロジェクト作成時の入力。Slugは省略可能。
type ProjectInput struct {
	Slug        string                `json:"slug,omitempty"`
	Name        string                `json:"name"`
	Tagline     string                `json:"tagline"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Stack       []string              `json:"stack,omitempty"`
	Featured    bool                  `json:"featured,omitempty"`
	Links       model.ProjectLinks    `json:"links"`
	Gallery     []string              `json:"gallery,omitempty"`
	Sections    model.ProjectSections `json:"sections"`
	Order       int                   `json:"order,omitempty"`
}

// ProjectPatch はプロジェクトの部分更新。nilのフィールドは変更しない。
type ProjectPatch struct {
	Slug        *string        `json:"slug,omitempty"`
	Name        *string        `json:"name,omitempty"`
	Tagline     *string        `json:"tagline,omitempty"`
	Description *string        `json:"description,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
	Stack       *[]string      `json:"stack,omitempty"`
	Featured    *bool          `json:"featured,omitempty"`
	Links       *LinksPatch    `json:"links,omitempty"`
	Gallery     *[]string      `json:"gallery,omitempty"`
	Sections    *SectionsPatch `json:"sections,omitempty"`
	Order       *int           `json:"order,omitempty"`
}

// LinksPatch は外部リンクの部分更新。
type LinksPatch struct {
	GitHub *string `json:"github,omitempty"`
	Live   *string `json:"live,omitempty"`
	Docs   *string `json:"docs,omitempty"`
}

// SectionsPatch はケーススタディ本文の部分更新。
type SectionsPatch struct {
	Overview  *string   `json:"overview,omitempty"`
	Problem   *string   `json:"problem,omitempty"`
	Features  *[]string `json:"features,omitempty"`
	Learnings *[]string `json:"learnings,omitempty"`
}

// ListProjects は全プロジェクトをorder昇順、作成日時の新しい順で返す。
func (s *Service) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError("list projects", err)
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return projects, nil
}

// GetProject はIDで検索し、見つからなければslugで検索する。
// UUIDとして解釈できない値はslugとしてのみ扱う。
func (s *Service) GetProject(ctx context.Context, idOrSlug string) (*model.Project, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, model.NewProjectNotFoundError(idOrSlug)
	}

	if _, err := uuid.Parse(idOrSlug); err == nil {
		p, err := s.projects.FindByID(ctx, idOrSlug)
		if err != nil {
			return nil, model.NewStoreUnavailableError("load project", err)
		}
		if p != nil {
			return p, nil
		}
	}

	p, err := s.projects.FindBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, model.NewStoreUnavailableError("load project", err)
	}
	if p == nil {
		return nil, model.NewProjectNotFoundError(idOrSlug)
	}
	return p, nil
}

// CreateProject はプロジェクトを作成する。
// slugが未指定の場合はnameから生成し、既存のslugと重複する場合はConflictを返す。
func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (*model.Project, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	p := model.Project{
		ID:          s.newID(),
		Slug:        strings.TrimSpace(in.Slug),
		Name:        strings.TrimSpace(in.Name),
		Tagline:     strings.TrimSpace(in.Tagline),
		Description: strings.TrimSpace(in.Description),
		Tags:        uniqueNonBlank(in.Tags),
		Stack:       nonBlank(in.Stack),
		Featured:    in.Featured,
		Links:       trimLinks(in.Links),
		Gallery:     nonBlank(in.Gallery),
		Sections: model.ProjectSections{
			Overview:  strings.TrimSpace(in.Sections.Overview),
			Problem:   strings.TrimSpace(in.Sections.Problem),
			Features:  nonBlank(in.Sections.Features),
			Learnings: nonBlank(in.Sections.Learnings),
		},
		Order:     in.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// 明示されたslugも正規化する。記号だけのslugは空になりValidateProjectで拒否される。
	if p.Slug == "" {
		p.Slug = p.Name
	}
	p.Slug = Slugify(p.Slug)

	if err := ValidateProject(p); err != nil {
		return nil, err
	}

	existing, err := s.projects.FindBySlug(ctx, p.Slug)
	if err != nil {
		return nil, model.NewStoreUnavailableError("check project slug", err)
	}
	if existing != nil {
		return nil, model.NewSlugConflictError(p.Slug)
	}

	if err := s.projects.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, model.NewSlugConflictError(p.Slug)
		}
		return nil, model.NewStoreUnavailableError("create project", err)
	}
	s.record("project", "create")
	return &p, nil
}

// UpdateProject はIDまたはslugで対象を特定し、patchを反映して保存する。
func (s *Service) UpdateProject(ctx context.Context, idOrSlug string, patch ProjectPatch) (*model.Project, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	current, err := s.GetProject(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	p := ApplyProjectPatch(*current, patch)
	if patch.Slug != nil {
		p.Slug = Slugify(p.Slug)
	}
	if err := ValidateProject(p); err != nil {
		return nil, err
	}

	if p.Slug != current.Slug {
		other, err := s.projects.FindBySlug(ctx, p.Slug)
		if err != nil {
			return nil, model.NewStoreUnavailableError("check project slug", err)
		}
		if other != nil && other.ID != p.ID {
			return nil, model.NewSlugConflictError(p.Slug)
		}
	}

	p.UpdatedAt = s.now()
	ok, err := s.projects.Update(ctx, &p)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, model.NewSlugConflictError(p.Slug)
		}
		return nil, model.NewStoreUnavailableError("update project", err)
	}
	if !ok {
		return nil, model.NewProjectNotFoundError(idOrSlug)
	}
	s.record("project", "update")
	return &p, nil
}

// DeleteProject はIDまたはslugで対象を特定し、完全に削除する。
func (s *Service) DeleteProject(ctx context.Context, idOrSlug string) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	p, err := s.GetProject(ctx, idOrSlug)
	if err != nil {
		return err
	}

	ok, err := s.projects.Delete(ctx, p.ID)
	if err != nil {
		return model.NewStoreUnavailableError("delete project", err)
	}
	if !ok {
		return model.NewProjectNotFoundError(idOrSlug)
	}
	s.record("project", "delete")
	return nil
}

// ApplyProjectPatch はpatchのnilでないフィールドをpに反映したコピーを返す。
// slugの正規化は呼び出し側で行う。
func ApplyProjectPatch(p model.Project, patch ProjectPatch) model.Project {
	setString(&p.Slug, patch.Slug)
	setString(&p.Name, patch.Name)
	setString(&p.Tagline, patch.Tagline)
	setString(&p.Description, patch.Description)
	if patch.Tags != nil {
		p.Tags = uniqueNonBlank(*patch.Tags)
	}
	if patch.Stack != nil {
		p.Stack = nonBlank(*patch.Stack)
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if l := patch.Links; l != nil {
		setString(&p.Links.GitHub, l.GitHub)
		setString(&p.Links.Live, l.Live)
		setString(&p.Links.Docs, l.Docs)
	}
	if patch.Gallery != nil {
		p.Gallery = nonBlank(*patch.Gallery)
	}
	if sec := patch.Sections; sec != nil {
		setString(&p.Sections.Overview, sec.Overview)
		setString(&p.Sections.Problem, sec.Problem)
		if sec.Features != nil {
			p.Sections.Features = nonBlank(*sec.Features)
		}
		if sec.Learnings != nil {
			p.Sections.Learnings = nonBlank(*sec.Learnings)
		}
	}
	if patch.Order != nil {
		p.Order = *patch.Order
	}
	return p
}

// ValidateProject は必須項目とslugを検証する。
func ValidateProject(p model.Project) error {
	var missing []string
	if isBlank(p.Name) {
		missing = append(missing, "name")
	}
	if p.Slug == "" {
		missing = append(missing, "slug")
	}
	if isBlank(p.Tagline) {
		missing = append(missing, "tagline")
	}
	if isBlank(p.Sections.Overview) {
		missing = append(missing, "sections.overview")
	}
	if isBlank(p.Sections.Problem) {
		missing = append(missing, "sections.problem")
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

func trimLinks(l model.ProjectLinks) model.ProjectLinks {
	return model.ProjectLinks{
		GitHub: strings.TrimSpace(l.GitHub),
		Live:   strings.TrimSpace(l.Live),
		Docs:   strings.TrimSpace(l.Docs),
	}
}

// nonBlank は前後の空白を除き、空の要素を取り除いたスライスを返す。常に非nil。
func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// uniqueNonBlank はnonBlankに加えて重複を除く。タグは集合として扱う。
func uniqueNonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range nonBlank(in) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
