package content

import (
	"context"
	"strings"

	"github.com/hitoshi/portfolio/internal/model"
)

// SitePatch はサイト情報の部分更新。nilのフィールドは変更しない。
type SitePatch struct {
	Name       *string       `json:"name,omitempty"`
	Title      *string       `json:"title,omitempty"`
	Location   *string       `json:"location,omitempty"`
	Email      *string       `json:"email,omitempty"`
	ShortBio   *string       `json:"shortBio,omitempty"`
	ResumePath *string       `json:"resumePath,omitempty"`
	Socials    *SocialsPatch `json:"socials,omitempty"`
	Profile    *ProfilePatch `json:"profile,omitempty"`
}

// SocialsPatch はSNSリンクの部分更新。
type SocialsPatch struct {
	GitHub   *string `json:"github,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Facebook *string `json:"facebook,omitempty"`
}

// ProfilePatch はプロフィールカードの部分更新。
type ProfilePatch struct {
	CoverImage   *string `json:"coverImage,omitempty"`
	Avatar       *string `json:"avatar,omitempty"`
	Username     *string `json:"username,omitempty"`
	Followers    *string `json:"followers,omitempty"`
	Following    *int    `json:"following,omitempty"`
	Joined       *string `json:"joined,omitempty"`
	Work         *string `json:"work,omitempty"`
	Education    *string `json:"education,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}

// GetSite はサイト情報を返す。未作成の場合はデフォルトのプロフィールを保存してから返す。
func (s *Service) GetSite(ctx context.Context) (*model.Site, error) {
	site, err := s.sites.Find(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError("load site", err)
	}
	if site != nil {
		return site, nil
	}

	def := model.DefaultSite()
	site, err = s.sites.CreateIfAbsent(ctx, &def)
	if err != nil {
		return nil, model.NewStoreUnavailableError("create default site", err)
	}
	return site, nil
}

// UpdateSite はpatchを既存のサイト情報にマージして保存する。
// レコードが存在しない場合は空のサイト情報にマージして作成する。
func (s *Service) UpdateSite(ctx context.Context, patch SitePatch) (*model.Site, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	current, err := s.sites.Find(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError("load site", err)
	}
	var site model.Site
	if current != nil {
		site = *current
	}

	site = ApplySitePatch(site, patch)
	site.FillDefaults()
	if err := ValidateSite(site); err != nil {
		return nil, err
	}

	if err := s.sites.Save(ctx, &site); err != nil {
		return nil, model.NewStoreUnavailableError("save site", err)
	}
	s.record("site", "update")
	return &site, nil
}

// ApplySitePatch はpatchのnilでないフィールドをsiteに反映したコピーを返す。
func ApplySitePatch(site model.Site, patch SitePatch) model.Site {
	setString(&site.Name, patch.Name)
	setString(&site.Title, patch.Title)
	setString(&site.Location, patch.Location)
	setString(&site.Email, patch.Email)
	setString(&site.ShortBio, patch.ShortBio)
	setString(&site.ResumePath, patch.ResumePath)
	if p := patch.Socials; p != nil {
		setString(&site.Socials.GitHub, p.GitHub)
		setString(&site.Socials.LinkedIn, p.LinkedIn)
		setString(&site.Socials.Facebook, p.Facebook)
	}
	if p := patch.Profile; p != nil {
		setString(&site.Profile.CoverImage, p.CoverImage)
		setString(&site.Profile.Avatar, p.Avatar)
		setString(&site.Profile.Username, p.Username)
		setString(&site.Profile.Followers, p.Followers)
		if p.Following != nil {
			site.Profile.Following = *p.Following
		}
		setString(&site.Profile.Joined, p.Joined)
		setString(&site.Profile.Work, p.Work)
		setString(&site.Profile.Education, p.Education)
		setString(&site.Profile.Relationship, p.Relationship)
	}
	return site
}

// ValidateSite は必須項目を検証する。
func ValidateSite(site model.Site) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", site.Name},
		{"title", site.Title},
		{"location", site.Location},
		{"email", site.Email},
		{"shortBio", site.ShortBio},
	} {
		if isBlank(f.value) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
