package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/repository"
)

// memStore は統合テスト用のインメモリストア。
// content.Serviceが使う3つのリポジトリインターフェースを実装する。
type memStore struct {
	mu       sync.Mutex
	site     *model.Site
	creds    *model.Credentials
	projects map[string]model.Project
}

func newMemStore() *memStore {
	return &memStore{projects: make(map[string]model.Project)}
}

type memSiteRepo struct{ s *memStore }
type memCredsRepo struct{ s *memStore }
type memProjectRepo struct{ s *memStore }

var (
	_ repository.SiteRepository        = memSiteRepo{}
	_ repository.CredentialsRepository = memCredsRepo{}
	_ repository.ProjectRepository     = memProjectRepo{}
)

func (r memSiteRepo) Find(ctx context.Context) (*model.Site, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.site == nil {
		return nil, nil
	}
	site := *r.s.site
	return &site, nil
}

func (r memSiteRepo) CreateIfAbsent(ctx context.Context, site *model.Site) (*model.Site, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.site == nil {
		stored := *site
		r.s.site = &stored
	}
	out := *r.s.site
	return &out, nil
}

func (r memSiteRepo) Save(ctx context.Context, site *model.Site) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *site
	r.s.site = &stored
	return nil
}

func (r memCredsRepo) Find(ctx context.Context) (*model.Credentials, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.creds == nil {
		return nil, nil
	}
	creds := *r.s.creds
	return &creds, nil
}

func (r memCredsRepo) Save(ctx context.Context, creds *model.Credentials) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *creds
	r.s.creds = &stored
	return nil
}

func (r memProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProjectRepo) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.projects {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r memProjectRepo) Create(ctx context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.projects {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	r.s.projects[p.ID] = *p
	return nil
}

func (r memProjectRepo) Update(ctx context.Context, p *model.Project) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return false, nil
	}
	for id, existing := range r.s.projects {
		if id != p.ID && existing.Slug == p.Slug {
			return false, repository.ErrDuplicateSlug
		}
	}
	r.s.projects[p.ID] = *p
	return true, nil
}

func (r memProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return false, nil
	}
	delete(r.s.projects, id)
	return true, nil
}
