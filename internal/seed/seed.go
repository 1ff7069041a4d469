// Package seed はコンテンツディレクトリの内容をコンテンツアクセス層に取り込む。
//
// ディレクトリ構成:
//
//	site.yaml          サイト情報（任意）
//	credentials.yaml   資格・学歴・スキル（任意）
//	projects/*.md      1ファイル1プロジェクト。YAMLフロントマターに項目、本文に説明文（Markdown）
//
// プロジェクトはslugで突き合わせ、既存なら更新、なければ作成する。
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// ContentWriter はseedが使うコンテンツアクセス層の操作。*content.Service が満たす。
type ContentWriter interface {
	UpdateSite(ctx context.Context, patch content.SitePatch) (*model.Site, error)
	UpdateCredentials(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error)
	GetProject(ctx context.Context, idOrSlug string) (*model.Project, error)
	CreateProject(ctx context.Context, in content.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error)
}

// Bundle はディレクトリから読み込んだコンテンツ。存在しないファイルの項目はnilになる。
type Bundle struct {
	Site        *model.Site
	Credentials *model.Credentials
	Projects    []model.Project
}

// Result は取り込み結果の件数。
type Result struct {
	SiteUpdated        bool
	CredentialsUpdated bool
	ProjectsCreated    int
	ProjectsUpdated    int
}

type siteFile struct {
	Name       string `yaml:"name"`
	Title      string `yaml:"title"`
	Location   string `yaml:"location"`
	Email      string `yaml:"email"`
	ShortBio   string `yaml:"shortBio"`
	ResumePath string `yaml:"resumePath"`
	Socials    struct {
		GitHub   string `yaml:"github"`
		LinkedIn string `yaml:"linkedin"`
		Facebook string `yaml:"facebook"`
	} `yaml:"socials"`
	Profile struct {
		CoverImage   string `yaml:"coverImage"`
		Avatar       string `yaml:"avatar"`
		Username     string `yaml:"username"`
		Followers    string `yaml:"followers"`
		Following    int    `yaml:"following"`
		Joined       string `yaml:"joined"`
		Work         string `yaml:"work"`
		Education    string `yaml:"education"`
		Relationship string `yaml:"relationship"`
	} `yaml:"profile"`
}

type credentialsFile struct {
	Certifications []struct {
		Title  string `yaml:"title"`
		Issuer string `yaml:"issuer"`
		Date   string `yaml:"date"`
		Link   string `yaml:"link"`
	} `yaml:"certifications"`
	Education []struct {
		Degree string `yaml:"degree"`
		School string `yaml:"school"`
		Year   string `yaml:"year"`
	} `yaml:"education"`
	Skills []struct {
		Category string   `yaml:"category"`
		Items    []string `yaml:"items"`
	} `yaml:"skills"`
}

// projectFrontMatter はプロジェクトMarkdownのフロントマター。本文は説明文になる。
type projectFrontMatter struct {
	Slug     string   `yaml:"slug"`
	Name     string   `yaml:"name"`
	Tagline  string   `yaml:"tagline"`
	Tags     []string `yaml:"tags"`
	Stack    []string `yaml:"stack"`
	Featured bool     `yaml:"featured"`
	Order    int      `yaml:"order"`
	Links    struct {
		GitHub string `yaml:"github"`
		Live   string `yaml:"live"`
		Docs   string `yaml:"docs"`
	} `yaml:"links"`
	Gallery   []string `yaml:"gallery"`
	Overview  string   `yaml:"overview"`
	Problem   string   `yaml:"problem"`
	Features  []string `yaml:"features"`
	Learnings []string `yaml:"learnings"`
}

// LoadDir はディレクトリからBundleを読み込む。
func LoadDir(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed: %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Load はfsysのルートからBundleを読み込む。
func Load(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{}

	var sf siteFile
	ok, err := readYAML(fsys, "site.yaml", &sf)
	if err != nil {
		return nil, err
	}
	if ok {
		site := sf.toModel()
		b.Site = &site
	}

	var cf credentialsFile
	ok, err = readYAML(fsys, "credentials.yaml", &cf)
	if err != nil {
		return nil, err
	}
	if ok {
		creds := cf.toModel()
		b.Credentials = &creds
	}

	names, err := fs.Glob(fsys, "projects/*.md")
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := readProject(fsys, name)
		if err != nil {
			return nil, err
		}
		b.Projects = append(b.Projects, p)
	}
	return b, nil
}

func readYAML(fsys fs.FS, name string, v any) (bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

func readProject(fsys fs.FS, name string) (model.Project, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return model.Project{}, fmt.Errorf("read %s: %w", name, err)
	}

	var fm projectFrontMatter
	body, err := frontmatter.MustParse(bytes.NewReader(data), &fm)
	if err != nil {
		return model.Project{}, fmt.Errorf("parse front matter of %s: %w", name, err)
	}

	slug := fm.Slug
	if slug == "" && fm.Name == "" {
		// 名前もslugもない場合はファイル名をslugとして使う
		slug = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}

	return model.Project{
		Slug:        slug,
		Name:        fm.Name,
		Tagline:     fm.Tagline,
		Description: strings.TrimSpace(string(body)),
		Tags:        fm.Tags,
		Stack:       fm.Stack,
		Featured:    fm.Featured,
		Links: model.ProjectLinks{
			GitHub: fm.Links.GitHub,
			Live:   fm.Links.Live,
			Docs:   fm.Links.Docs,
		},
		Gallery: fm.Gallery,
		Sections: model.ProjectSections{
			Overview:  fm.Overview,
			Problem:   fm.Problem,
			Features:  fm.Features,
			Learnings: fm.Learnings,
		},
		Order: fm.Order,
	}, nil
}

func (f siteFile) toModel() model.Site {
	return model.Site{
		Name:       f.Name,
		Title:      f.Title,
		Location:   f.Location,
		Email:      f.Email,
		ShortBio:   f.ShortBio,
		ResumePath: f.ResumePath,
		Socials: model.Socials{
			GitHub:   f.Socials.GitHub,
			LinkedIn: f.Socials.LinkedIn,
			Facebook: f.Socials.Facebook,
		},
		Profile: model.SiteProfile{
			CoverImage:   f.Profile.CoverImage,
			Avatar:       f.Profile.Avatar,
			Username:     f.Profile.Username,
			Followers:    f.Profile.Followers,
			Following:    f.Profile.Following,
			Joined:       f.Profile.Joined,
			Work:         f.Profile.Work,
			Education:    f.Profile.Education,
			Relationship: f.Profile.Relationship,
		},
	}
}

func (f credentialsFile) toModel() model.Credentials {
	c := model.EmptyCredentials()
	for _, v := range f.Certifications {
		c.Certifications = append(c.Certifications, model.Certification{Title: v.Title, Issuer: v.Issuer, Date: v.Date, Link: v.Link})
	}
	for _, v := range f.Education {
		c.Education = append(c.Education, model.Education{Degree: v.Degree, School: v.School, Year: v.Year})
	}
	for _, v := range f.Skills {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		c.Skills = append(c.Skills, model.SkillGroup{Category: v.Category, Items: items})
	}
	return c
}

// Apply はBundleをコンテンツアクセス層に書き込む。
// ctxは管理者として認証済みである必要がある。最初に失敗した時点で中断する。
func Apply(ctx context.Context, w ContentWriter, b *Bundle, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result

	if b.Site != nil {
		if _, err := w.UpdateSite(ctx, content.SitePatchFromDraft(*b.Site)); err != nil {
			return res, fmt.Errorf("seed site: %w", err)
		}
		res.SiteUpdated = true
	}

	if b.Credentials != nil {
		if _, err := w.UpdateCredentials(ctx, content.CredentialsPatchFromDraft(*b.Credentials)); err != nil {
			return res, fmt.Errorf("seed credentials: %w", err)
		}
		res.CredentialsUpdated = true
	}

	for _, p := range b.Projects {
		key := p.Slug
		if key == "" {
			key = content.Slugify(p.Name)
		}

		_, err := w.GetProject(ctx, key)
		switch {
		case model.IsCode(err, model.ErrCodeProjectNotFound):
			created, err := w.CreateProject(ctx, content.ProjectInputFromDraft(p))
			if err != nil {
				return res, fmt.Errorf("seed project %q: %w", key, err)
			}
			res.ProjectsCreated++
			logger.Info("project created", slog.String("slug", created.Slug))
		case err != nil:
			return res, fmt.Errorf("seed project %q: %w", key, err)
		default:
			p.Slug = key
			if _, err := w.UpdateProject(ctx, key, content.ProjectPatchFromDraft(p)); err != nil {
				return res, fmt.Errorf("seed project %q: %w", key, err)
			}
			res.ProjectsUpdated++
			logger.Info("project updated", slog.String("slug", key))
		}
	}

	return res, nil
}
