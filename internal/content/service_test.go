package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hitoshi/portfolio/internal/model"
)

var (
	allowAll = GateFunc(func(context.Context) bool { return true })
	denyAll  = GateFunc(func(context.Context) bool { return false })
)

// newTestService はfakeStoreと固定時刻・連番IDを使うServiceを生成する。
// 時刻は呼び出しごとに1秒進む。
func newTestService(t *testing.T, gate Gate) (*Service, *fakeStore, *recorderStub) {
	t.Helper()
	store := newFakeStore()
	rec := &recorderStub{}

	var mu sync.Mutex
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seq := 0
	svc := NewService(
		fakeSiteRepo{store}, fakeCredsRepo{store}, fakeProjectRepo{store}, gate,
		WithMutationRecorder(rec),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("00000000-0000-0000-0000-%012d", seq)
		}),
	)
	return svc, store, rec
}

func projectInput(name string) ProjectInput {
	return ProjectInput{
		Name:     name,
		Tagline:  "x",
		Sections: model.ProjectSections{Overview: "o", Problem: "p"},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}

func strPtr(s string) *string { return &s }

// --- Site ---

func TestGetSite_CreatesDefaultOnce(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)
	ctx := context.Background()

	first, err := svc.GetSite(ctx)
	if err != nil {
		t.Fatalf("GetSite returned error: %v", err)
	}
	second, err := svc.GetSite(ctx)
	if err != nil {
		t.Fatalf("second GetSite returned error: %v", err)
	}

	if store.siteCreates != 1 {
		t.Errorf("site creates = %d, want 1", store.siteCreates)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second GetSite differs (-first +second):\n%s", diff)
	}
	if first.Name != model.DefaultSite().Name {
		t.Errorf("Name = %q, want default %q", first.Name, model.DefaultSite().Name)
	}
}

func TestGetSite_ConcurrentFirstReads_CreateOneRecord(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetSite(context.Background()); err != nil {
				t.Errorf("GetSite returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.siteCreates != 1 {
		t.Errorf("site creates = %d, want 1", store.siteCreates)
	}
}

func TestGetSite_StoreDown_ReturnsStoreUnavailable(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)
	store.fail = errStoreDown

	_, err := svc.GetSite(context.Background())
	assertCode(t, err, model.ErrCodeStoreUnavailable)
	if !errors.Is(err, errStoreDown) {
		t.Error("StoreUnavailable should wrap the store error")
	}
}

func TestUpdateSite_MergesPartialFields(t *testing.T) {
	svc, _, rec := newTestService(t, allowAll)
	ctx := context.Background()
	if _, err := svc.GetSite(ctx); err != nil {
		t.Fatalf("GetSite returned error: %v", err)
	}

	got, err := svc.UpdateSite(ctx, SitePatch{
		Title:   strPtr("  Backend Engineer "),
		Socials: &SocialsPatch{GitHub: strPtr("https://github.com/someone")},
	})
	if err != nil {
		t.Fatalf("UpdateSite returned error: %v", err)
	}

	want := model.DefaultSite()
	want.Title = "Backend Engineer"
	want.Socials.GitHub = "https://github.com/someone"
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("UpdateSite mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"site/update"}, rec.calls); diff != "" {
		t.Errorf("recorded mutations (-want +got):\n%s", diff)
	}
}

func TestUpdateSite_Absent_CreatesFromPatch(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)

	got, err := svc.UpdateSite(context.Background(), SitePatch{
		Name:     strPtr("Jane"),
		Title:    strPtr("Dev"),
		Location: strPtr("Manila"),
		Email:    strPtr("jane@example.com"),
		ShortBio: strPtr("Hello"),
	})
	if err != nil {
		t.Fatalf("UpdateSite returned error: %v", err)
	}
	if got.ResumePath != model.DefaultResumePath {
		t.Errorf("ResumePath = %q, want %q", got.ResumePath, model.DefaultResumePath)
	}
	if got.Profile.CoverImage != model.DefaultCoverImage {
		t.Errorf("Profile.CoverImage = %q, want %q", got.Profile.CoverImage, model.DefaultCoverImage)
	}
	if got.Profile.Avatar != model.DefaultAvatar {
		t.Errorf("Profile.Avatar = %q, want %q", got.Profile.Avatar, model.DefaultAvatar)
	}
	if store.site == nil || store.site.Name != "Jane" {
		t.Errorf("stored site = %+v", store.site)
	}
}

func TestUpdateSite_Absent_KeepsGivenProfileImages(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)

	got, err := svc.UpdateSite(context.Background(), SitePatch{
		Name:     strPtr("Jane"),
		Title:    strPtr("Dev"),
		Location: strPtr("Manila"),
		Email:    strPtr("jane@example.com"),
		ShortBio: strPtr("Hello"),
		Profile:  &ProfilePatch{Avatar: strPtr("/images/jane.png")},
	})
	if err != nil {
		t.Fatalf("UpdateSite returned error: %v", err)
	}
	if got.Profile.Avatar != "/images/jane.png" {
		t.Errorf("Profile.Avatar = %q, want %q", got.Profile.Avatar, "/images/jane.png")
	}
	if got.Profile.CoverImage != model.DefaultCoverImage {
		t.Errorf("Profile.CoverImage = %q, want %q", got.Profile.CoverImage, model.DefaultCoverImage)
	}
}

func TestUpdateSite_BlankRequiredField_ReturnsValidationError(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)
	ctx := context.Background()
	if _, err := svc.GetSite(ctx); err != nil {
		t.Fatalf("GetSite returned error: %v", err)
	}

	_, err := svc.UpdateSite(ctx, SitePatch{Email: strPtr("   ")})
	assertCode(t, err, model.ErrCodeValidation)
	if store.site.Email != model.DefaultSite().Email {
		t.Error("store should be unchanged after validation failure")
	}
}

// --- Credentials ---

func TestGetCredentials_Absent_ReturnsEmptyWithoutCreating(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)

	got, err := svc.GetCredentials(context.Background())
	if err != nil {
		t.Fatalf("GetCredentials returned error: %v", err)
	}
	if diff := cmp.Diff(model.EmptyCredentials(), *got); diff != "" {
		t.Errorf("GetCredentials mismatch (-want +got):\n%s", diff)
	}
	if got.Certifications == nil || got.Education == nil || got.Skills == nil {
		t.Error("sequences should be empty, not nil")
	}
	if store.creds != nil || store.credsSaves != 0 {
		t.Error("GetCredentials must not create a record")
	}
}

func TestUpdateCredentials_ReplacesGivenSequences(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	certs := []model.Certification{{Title: "CCNA", Issuer: "Cisco"}}
	if _, err := svc.UpdateCredentials(ctx, CredentialsPatch{Certifications: &certs}); err != nil {
		t.Fatalf("first UpdateCredentials returned error: %v", err)
	}

	skills := []model.SkillGroup{{Category: "Backend", Items: []string{"Go"}}}
	got, err := svc.UpdateCredentials(ctx, CredentialsPatch{Skills: &skills})
	if err != nil {
		t.Fatalf("second UpdateCredentials returned error: %v", err)
	}

	want := model.Credentials{
		Certifications: certs,
		Education:      []model.Education{},
		Skills:         skills,
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("UpdateCredentials mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCredentials_MissingEntryFields_ReturnsValidationError(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)

	edu := []model.Education{{Degree: "BSIT"}}
	_, err := svc.UpdateCredentials(context.Background(), CredentialsPatch{Education: &edu})
	assertCode(t, err, model.ErrCodeValidation)

	var apiErr *model.APIError
	errors.As(err, &apiErr)
	if want := "education[0].school"; !strings.Contains(apiErr.Message, want) {
		t.Errorf("message %q should mention %q", apiErr.Message, want)
	}
	if store.credsSaves != 0 {
		t.Error("store should be unchanged after validation failure")
	}
}

// --- Projects ---

func TestCreateProject_DerivesSlug(t *testing.T) {
	svc, _, rec := newTestService(t, allowAll)

	got, err := svc.CreateProject(context.Background(), projectInput("My Cool, Project!"))
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if got.Slug != "my-cool-project" {
		t.Errorf("Slug = %q, want %q", got.Slug, "my-cool-project")
	}
	if got.ID == "" {
		t.Error("ID should be generated")
	}
	if got.Featured || got.Order != 0 {
		t.Errorf("defaults: featured=%v order=%d", got.Featured, got.Order)
	}
	if got.Tags == nil || got.Stack == nil || got.Gallery == nil {
		t.Error("sequences should default to empty slices")
	}
	if diff := cmp.Diff([]string{"project/create"}, rec.calls); diff != "" {
		t.Errorf("recorded mutations (-want +got):\n%s", diff)
	}
}

func TestCreateProject_ExplicitSlug_IsKept(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)

	in := projectInput("Demo App")
	in.Slug = "custom-slug"
	got, err := svc.CreateProject(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if got.Slug != "custom-slug" {
		t.Errorf("Slug = %q, want %q", got.Slug, "custom-slug")
	}
}

// 明示されたslugもURLに使える形へ正規化し、正規化後に空になるものは拒否する。
func TestProjectSlug_ExplicitValueIsNormalized(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	in := projectInput("Demo App")
	in.Slug = "  My Custom_Slug!! "
	got, err := svc.CreateProject(ctx, in)
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if got.Slug != "my-custom-slug" {
		t.Errorf("Slug = %q, want %q", got.Slug, "my-custom-slug")
	}

	updated, err := svc.UpdateProject(ctx, got.ID, ProjectPatch{Slug: strPtr("Renamed App")})
	if err != nil {
		t.Fatalf("UpdateProject returned error: %v", err)
	}
	if updated.Slug != "renamed-app" {
		t.Errorf("Slug = %q, want %q", updated.Slug, "renamed-app")
	}

	_, err = svc.UpdateProject(ctx, got.ID, ProjectPatch{Slug: strPtr("!!!")})
	assertCode(t, err, model.ErrCodeValidation)

	bad := projectInput("Other App")
	bad.Slug = "---"
	_, err = svc.CreateProject(ctx, bad)
	assertCode(t, err, model.ErrCodeValidation)
}

func TestCreateProject_DuplicateDerivedSlug_ReturnsConflict(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, projectInput("Demo App")); err != nil {
		t.Fatalf("first CreateProject returned error: %v", err)
	}
	_, err := svc.CreateProject(ctx, projectInput("demo   app!!"))
	assertCode(t, err, model.ErrCodeSlugConflict)
	if len(store.projects) != 1 {
		t.Errorf("projects = %d, want 1", len(store.projects))
	}
}

func TestCreateProject_MissingRequired_ReturnsValidationError(t *testing.T) {
	tests := []struct {
		name  string
		input ProjectInput
	}{
		{"名前なし", ProjectInput{Tagline: "x", Sections: model.ProjectSections{Overview: "o", Problem: "p"}}},
		{"タグラインなし", ProjectInput{Name: "A", Sections: model.ProjectSections{Overview: "o", Problem: "p"}}},
		{"overviewなし", ProjectInput{Name: "A", Tagline: "x", Sections: model.ProjectSections{Problem: "p"}}},
		{"problemなし", ProjectInput{Name: "A", Tagline: "x", Sections: model.ProjectSections{Overview: "o"}}},
		{"slugが空になる名前", ProjectInput{Name: "!!!", Tagline: "x", Sections: model.ProjectSections{Overview: "o", Problem: "p"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t, allowAll)
			_, err := svc.CreateProject(context.Background(), tt.input)
			assertCode(t, err, model.ErrCodeValidation)
			if len(store.projects) != 0 {
				t.Error("store should be unchanged")
			}
		})
	}
}

func TestCreateProject_NormalizesTags(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)

	in := projectInput("Tagged")
	in.Tags = []string{"go", " web ", "go", ""}
	got, err := svc.CreateProject(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"go", "web"}, got.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}

func TestGetProject_ByIDThenSlug(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, projectInput("Demo App"))
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	byID, err := svc.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProject(id) returned error: %v", err)
	}
	if diff := cmp.Diff(created, byID); diff != "" {
		t.Errorf("GetProject(id) mismatch (-want +got):\n%s", diff)
	}

	bySlug, err := svc.GetProject(ctx, "demo-app")
	if err != nil {
		t.Fatalf("GetProject(slug) returned error: %v", err)
	}
	if diff := cmp.Diff(created, bySlug); diff != "" {
		t.Errorf("GetProject(slug) mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.GetProject(ctx, "no-such-project")
	assertCode(t, err, model.ErrCodeProjectNotFound)

	_, err = svc.GetProject(ctx, "00000000-0000-0000-0000-999999999999")
	assertCode(t, err, model.ErrCodeProjectNotFound)
}

// UUID形式のslugを持つプロジェクトもslugで引ける。
func TestGetProject_UUIDShapedSlug_FallsBackToSlug(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	in := projectInput("Odd")
	in.Slug = "11111111-2222-3333-4444-555555555555"
	created, err := svc.CreateProject(ctx, in)
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	got, err := svc.GetProject(ctx, in.Slug)
	if err != nil {
		t.Fatalf("GetProject returned error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
}

func TestListProjects_OrderAscThenCreatedDesc(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	for _, c := range []struct {
		name  string
		order int
	}{
		{"A", 2}, {"B", 1}, {"C", 1}, {"D", 0},
	} {
		in := projectInput(c.name)
		in.Order = c.order
		if _, err := svc.CreateProject(ctx, in); err != nil {
			t.Fatalf("CreateProject(%s) returned error: %v", c.name, err)
		}
	}

	list, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects returned error: %v", err)
	}
	var got []string
	for _, p := range list {
		got = append(got, p.Name)
	}
	// BとCは同じorder。後から作成されたCが先に並ぶ
	if diff := cmp.Diff([]string{"D", "C", "B", "A"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListProjects_Empty_ReturnsNonNil(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)

	list, err := svc.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects returned error: %v", err)
	}
	if list == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestUpdateProject_AppliesPatch(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, projectInput("Demo App"))
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	featured := true
	features := []string{"Login", " ", "Search"}
	got, err := svc.UpdateProject(ctx, "demo-app", ProjectPatch{
		Tagline:  strPtr("better"),
		Featured: &featured,
		Sections: &SectionsPatch{Features: &features},
	})
	if err != nil {
		t.Fatalf("UpdateProject returned error: %v", err)
	}

	if got.Tagline != "better" || !got.Featured {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.Sections.Overview != "o" {
		t.Errorf("Overview = %q, should be unchanged", got.Sections.Overview)
	}
	if diff := cmp.Diff([]string{"Login", "Search"}, got.Sections.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Error("UpdatedAt should advance")
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt should not change")
	}
}

func TestUpdateProject_SlugChangeToExisting_ReturnsConflict(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	for _, name := range []string{"First", "Second"} {
		if _, err := svc.CreateProject(ctx, projectInput(name)); err != nil {
			t.Fatalf("CreateProject(%s) returned error: %v", name, err)
		}
	}

	_, err := svc.UpdateProject(ctx, "second", ProjectPatch{Slug: strPtr("First")})
	assertCode(t, err, model.ErrCodeSlugConflict)
}

func TestUpdateProject_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, allowAll)

	_, err := svc.UpdateProject(context.Background(), "missing", ProjectPatch{Name: strPtr("x")})
	assertCode(t, err, model.ErrCodeProjectNotFound)
}

func TestDeleteProject_RemovesPermanently(t *testing.T) {
	svc, store, rec := newTestService(t, allowAll)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, projectInput("Demo App")); err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if err := svc.DeleteProject(ctx, "demo-app"); err != nil {
		t.Fatalf("DeleteProject returned error: %v", err)
	}
	if len(store.projects) != 0 {
		t.Errorf("projects = %d, want 0", len(store.projects))
	}

	_, err := svc.GetProject(ctx, "demo-app")
	assertCode(t, err, model.ErrCodeProjectNotFound)

	err = svc.DeleteProject(ctx, "demo-app")
	assertCode(t, err, model.ErrCodeProjectNotFound)

	if diff := cmp.Diff([]string{"project/create", "project/delete"}, rec.calls); diff != "" {
		t.Errorf("recorded mutations (-want +got):\n%s", diff)
	}
}

func TestProjects_StoreDown_ReturnsStoreUnavailable(t *testing.T) {
	svc, store, _ := newTestService(t, allowAll)
	store.fail = errStoreDown
	ctx := context.Background()

	_, err := svc.ListProjects(ctx)
	assertCode(t, err, model.ErrCodeStoreUnavailable)
	_, err = svc.GetProject(ctx, "demo-app")
	assertCode(t, err, model.ErrCodeStoreUnavailable)
	_, err = svc.CreateProject(ctx, projectInput("Demo App"))
	assertCode(t, err, model.ErrCodeStoreUnavailable)
}

// --- Authorization ---

// 未認証の更新操作はすべてUnauthorizedとなり、ストアは変更されない。
func TestMutations_WithoutSession_AreUnauthorized(t *testing.T) {
	svc, store, rec := newTestService(t, denyAll)
	ctx := context.Background()

	// 認証済みのサービスで事前にプロジェクトを1件作っておく
	seeded := NewService(fakeSiteRepo{store}, fakeCredsRepo{store}, fakeProjectRepo{store}, allowAll)
	if _, err := seeded.CreateProject(ctx, projectInput("Demo App")); err != nil {
		t.Fatalf("seed CreateProject returned error: %v", err)
	}
	before := store.projectWrite

	certs := []model.Certification{{Title: "t", Issuer: "i"}}
	ops := map[string]func() error{
		"UpdateSite": func() error {
			_, err := svc.UpdateSite(ctx, SitePatch{Name: strPtr("x")})
			return err
		},
		"UpdateCredentials": func() error {
			_, err := svc.UpdateCredentials(ctx, CredentialsPatch{Certifications: &certs})
			return err
		},
		"CreateProject": func() error {
			_, err := svc.CreateProject(ctx, projectInput("Other"))
			return err
		},
		"UpdateProject": func() error {
			_, err := svc.UpdateProject(ctx, "demo-app", ProjectPatch{Name: strPtr("x")})
			return err
		},
		"DeleteProject": func() error {
			return svc.DeleteProject(ctx, "demo-app")
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assertCode(t, op(), model.ErrCodeUnauthorized)
		})
	}

	if store.site != nil || store.creds != nil {
		t.Error("singletons should not be written")
	}
	if store.projectWrite != before || len(store.projects) != 1 {
		t.Error("projects should be unchanged")
	}
	if len(rec.calls) != 0 {
		t.Errorf("no mutation should be recorded, got %v", rec.calls)
	}
}

func TestNilGate_DeniesMutations(t *testing.T) {
	store := newFakeStore()
	svc := NewService(fakeSiteRepo{store}, fakeCredsRepo{store}, fakeProjectRepo{store}, nil)

	_, err := svc.CreateProject(context.Background(), projectInput("Demo App"))
	assertCode(t, err, model.ErrCodeUnauthorized)
}
