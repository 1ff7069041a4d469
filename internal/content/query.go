package content

import (
	"slices"
	"strings"

	"github.com/hitoshi/portfolio/internal/model"
)

// FeaturedLimit はトップページに表示する注目プロジェクトの最大数。
const FeaturedLimit = 6

// FilterProjects はプロジェクト一覧をキーワードとタグで絞り込む。
// キーワードは大文字小文字を区別せず、名前・タグライン・説明・スタック・タグのいずれかに含まれれば一致。
// tagsは指定されたすべてのタグを持つプロジェクトのみ残す。入力の順序は保持する。
func FilterProjects(projects []*model.Project, query string, tags []string) []*model.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		if !hasAllTags(p, tags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p *model.Project, q string) bool {
	for _, field := range []string{
		p.Name,
		p.Tagline,
		p.Description,
		strings.Join(p.Stack, " "),
		strings.Join(p.Tags, " "),
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func hasAllTags(p *model.Project, tags []string) bool {
	for _, t := range tags {
		if t == "" {
			continue
		}
		if !slices.Contains(p.Tags, t) {
			return false
		}
	}
	return true
}

// FeaturedProjects はfeaturedなプロジェクトを先頭からlimit件返す。
func FeaturedProjects(projects []*model.Project, limit int) []*model.Project {
	if limit <= 0 {
		return []*model.Project{}
	}
	out := make([]*model.Project, 0, limit)
	for _, p := range projects {
		if len(out) >= limit {
			break
		}
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// AllTags は全プロジェクトのタグを初出順に重複なく返す。
func AllTags(projects []*model.Project) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, p := range projects {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}
