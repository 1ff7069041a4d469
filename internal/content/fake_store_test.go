package content

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// fakeStore はテスト用のインメモリレコードストア。
// 3種類のリポジトリインターフェースをすべて満たす。
type fakeStore struct {
	mu       sync.Mutex
	site     *model.Site
	creds    *model.Credentials
	projects map[string]model.Project

	siteCreates  int
	credsSaves   int
	projectWrite int

	// failが設定されている場合、すべての操作はこのエラーを返す
	fail error
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: make(map[string]model.Project)}
}

type fakeSiteRepo struct{ *fakeStore }
type fakeCredsRepo struct{ *fakeStore }
type fakeProjectRepo struct{ *fakeStore }

func (f fakeSiteRepo) Find(ctx context.Context) (*model.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if f.site == nil {
		return nil, nil
	}
	s := *f.site
	return &s, nil
}

func (f fakeSiteRepo) CreateIfAbsent(ctx context.Context, site *model.Site) (*model.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if f.site == nil {
		s := *site
		f.site = &s
		f.siteCreates++
	}
	s := *f.site
	return &s, nil
}

func (f fakeSiteRepo) Save(ctx context.Context, site *model.Site) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	s := *site
	f.site = &s
	return nil
}

func (f fakeCredsRepo) Find(ctx context.Context) (*model.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if f.creds == nil {
		return nil, nil
	}
	c := *f.creds
	return &c, nil
}

func (f fakeCredsRepo) Save(ctx context.Context, creds *model.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	c := *creds
	f.creds = &c
	f.credsSaves++
	return nil
}

func (f fakeProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f fakeProjectRepo) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, p := range f.projects {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakeProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]*model.Project, 0, len(f.projects))
	for _, p := range f.projects {
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

func (f fakeProjectRepo) Create(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	for _, existing := range f.projects {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	f.projects[p.ID] = *p
	f.projectWrite++
	return nil
}

func (f fakeProjectRepo) Update(ctx context.Context, p *model.Project) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	if _, ok := f.projects[p.ID]; !ok {
		return false, nil
	}
	for id, existing := range f.projects {
		if id != p.ID && existing.Slug == p.Slug {
			return false, repository.ErrDuplicateSlug
		}
	}
	f.projects[p.ID] = *p
	f.projectWrite++
	return true, nil
}

func (f fakeProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	if _, ok := f.projects[id]; !ok {
		return false, nil
	}
	delete(f.projects, id)
	f.projectWrite++
	return true, nil
}

var (
	_ repository.SiteRepository        = fakeSiteRepo{}
	_ repository.CredentialsRepository = fakeCredsRepo{}
	_ repository.ProjectRepository     = fakeProjectRepo{}
)

// recorderStub はMutationRecorderの呼び出しを記録する。
type recorderStub struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorderStub) RecordContentMutation(kind, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kind+"/"+op)
}
