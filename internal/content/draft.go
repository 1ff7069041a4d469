package content

import (
	"slices"
	"strings"

	"github.com/hitoshi/portfolio/internal/model"
)

// 管理画面の編集フォームは、レコードそのものを編集中の下書き値として扱う。
// 以下の関数はいずれも引数を変更せず、更新後のコピーを返す。

// IdentityFields はサイト情報の基本項目グループ。
type IdentityFields struct {
	Name       string
	Title      string
	Location   string
	Email      string
	ShortBio   string
	ResumePath string
}

// ApplyIdentity は基本項目グループを反映する。
func ApplyIdentity(site model.Site, f IdentityFields) model.Site {
	site.Name = f.Name
	site.Title = f.Title
	site.Location = f.Location
	site.Email = f.Email
	site.ShortBio = f.ShortBio
	site.ResumePath = f.ResumePath
	return site
}

// ApplySocials はSNSリンクグループを反映する。
func ApplySocials(site model.Site, socials model.Socials) model.Site {
	site.Socials = socials
	return site
}

// ApplyProfile はプロフィールカードグループを反映する。
func ApplyProfile(site model.Site, profile model.SiteProfile) model.Site {
	site.Profile = profile
	return site
}

// SitePatchFromDraft は下書き全体を保存用のパッチに変換する。
func SitePatchFromDraft(site model.Site) SitePatch {
	following := site.Profile.Following
	return SitePatch{
		Name:       &site.Name,
		Title:      &site.Title,
		Location:   &site.Location,
		Email:      &site.Email,
		ShortBio:   &site.ShortBio,
		ResumePath: &site.ResumePath,
		Socials: &SocialsPatch{
			GitHub:   &site.Socials.GitHub,
			LinkedIn: &site.Socials.LinkedIn,
			Facebook: &site.Socials.Facebook,
		},
		Profile: &ProfilePatch{
			CoverImage:   &site.Profile.CoverImage,
			Avatar:       &site.Profile.Avatar,
			Username:     &site.Profile.Username,
			Followers:    &site.Profile.Followers,
			Following:    &following,
			Joined:       &site.Profile.Joined,
			Work:         &site.Profile.Work,
			Education:    &site.Profile.Education,
			Relationship: &site.Profile.Relationship,
		},
	}
}

// AddCertification は空の資格行を末尾に追加する。
func AddCertification(c model.Credentials) model.Credentials {
	c.Certifications = append(slices.Clone(c.Certifications), model.Certification{})
	return c
}

// RemoveCertification はi番目の資格行を削除する。範囲外の場合は何もしない。
func RemoveCertification(c model.Credentials, i int) model.Credentials {
	if i < 0 || i >= len(c.Certifications) {
		return c
	}
	c.Certifications = slices.Delete(slices.Clone(c.Certifications), i, i+1)
	return c
}

// AddEducation は空の学歴行を末尾に追加する。
func AddEducation(c model.Credentials) model.Credentials {
	c.Education = append(slices.Clone(c.Education), model.Education{})
	return c
}

// RemoveEducation はi番目の学歴行を削除する。
func RemoveEducation(c model.Credentials, i int) model.Credentials {
	if i < 0 || i >= len(c.Education) {
		return c
	}
	c.Education = slices.Delete(slices.Clone(c.Education), i, i+1)
	return c
}

// AddSkillGroup は空のスキルカテゴリ行を末尾に追加する。
func AddSkillGroup(c model.Credentials) model.Credentials {
	c.Skills = append(slices.Clone(c.Skills), model.SkillGroup{Items: []string{}})
	return c
}

// RemoveSkillGroup はi番目のスキルカテゴリ行を削除する。
func RemoveSkillGroup(c model.Credentials, i int) model.Credentials {
	if i < 0 || i >= len(c.Skills) {
		return c
	}
	c.Skills = slices.Delete(slices.Clone(c.Skills), i, i+1)
	return c
}

// SetSkillItems はi番目のスキルカテゴリの項目をカンマ区切りの文字列から設定する。
func SetSkillItems(c model.Credentials, i int, raw string) model.Credentials {
	if i < 0 || i >= len(c.Skills) {
		return c
	}
	c.Skills = slices.Clone(c.Skills)
	c.Skills[i].Items = SplitList(raw)
	return c
}

// CompactCredentials はすべての項目が空の行を取り除く。
// 追加しただけで未入力の行を保存時に無視するために使う。
func CompactCredentials(c model.Credentials) model.Credentials {
	certs := make([]model.Certification, 0, len(c.Certifications))
	for _, v := range c.Certifications {
		if allBlank(v.Title, v.Issuer, v.Date, v.Link) {
			continue
		}
		certs = append(certs, v)
	}
	edu := make([]model.Education, 0, len(c.Education))
	for _, v := range c.Education {
		if allBlank(v.Degree, v.School, v.Year) {
			continue
		}
		edu = append(edu, v)
	}
	skills := make([]model.SkillGroup, 0, len(c.Skills))
	for _, v := range c.Skills {
		if isBlank(v.Category) && len(nonBlank(v.Items)) == 0 {
			continue
		}
		skills = append(skills, v)
	}
	c.Certifications = certs
	c.Education = edu
	c.Skills = skills
	return c
}

// CredentialsPatchFromDraft は下書き全体を保存用のパッチに変換する。
func CredentialsPatchFromDraft(c model.Credentials) CredentialsPatch {
	c = CompactCredentials(c)
	return CredentialsPatch{
		Certifications: &c.Certifications,
		Education:      &c.Education,
		Skills:         &c.Skills,
	}
}

// ProjectInputFromDraft は新規作成フォームの下書きを作成用の入力に変換する。
func ProjectInputFromDraft(p model.Project) ProjectInput {
	return ProjectInput{
		Slug:        p.Slug,
		Name:        p.Name,
		Tagline:     p.Tagline,
		Description: p.Description,
		Tags:        p.Tags,
		Stack:       p.Stack,
		Featured:    p.Featured,
		Links:       p.Links,
		Gallery:     p.Gallery,
		Sections:    p.Sections,
		Order:       p.Order,
	}
}

// ProjectPatchFromDraft は編集フォームの下書き全体を更新用のパッチに変換する。
func ProjectPatchFromDraft(p model.Project) ProjectPatch {
	return ProjectPatch{
		Slug:        &p.Slug,
		Name:        &p.Name,
		Tagline:     &p.Tagline,
		Description: &p.Description,
		Tags:        &p.Tags,
		Stack:       &p.Stack,
		Featured:    &p.Featured,
		Links: &LinksPatch{
			GitHub: &p.Links.GitHub,
			Live:   &p.Links.Live,
			Docs:   &p.Links.Docs,
		},
		Gallery: &p.Gallery,
		Sections: &SectionsPatch{
			Overview:  &p.Sections.Overview,
			Problem:   &p.Sections.Problem,
			Features:  &p.Sections.Features,
			Learnings: &p.Sections.Learnings,
		},
		Order: &p.Order,
	}
}

// SplitList はカンマ区切りの入力を前後の空白を除いたリストに変換する。空の要素は除く。
func SplitList(raw string) []string {
	return nonBlank(strings.Split(raw, ","))
}

// SplitLines は改行区切りの入力をリストに変換する。空行は除く。
func SplitLines(raw string) []string {
	return nonBlank(strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n"))
}

// JoinList はSplitListの逆変換。フォームの初期値に使う。
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// JoinLines はSplitLinesの逆変換。
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}

func allBlank(values ...string) bool {
	for _, v := range values {
		if !isBlank(v) {
			return false
		}
	}
	return true
}
