// Package model はドメインモデルを定義する。
package model

import "time"

// 未設定時に使う画像・PDFのパス
const (
	DefaultResumePath = "/resume.pdf"
	DefaultCoverImage = "/images/banner.png"
	DefaultAvatar     = "/images/avatar.jpg"
)

// FillDefaults は空のパス項目にデフォルト値を設定する。
func (s *Site) FillDefaults() {
	if s.ResumePath == "" {
		s.ResumePath = DefaultResumePath
	}
	if s.Profile.CoverImage == "" {
		s.Profile.CoverImage = DefaultCoverImage
	}
	if s.Profile.Avatar == "" {
		s.Profile.Avatar = DefaultAvatar
	}
}

// Site はポートフォリオサイトのプロフィール情報を表す。
// サイト全体で1レコードのみ存在するシングルトン。
type Site struct {
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Location   string      `json:"location"`
	Email      string      `json:"email"`
	Socials    Socials     `json:"socials"`
	ShortBio   string      `json:"shortBio"`
	ResumePath string      `json:"resumePath"`
	Profile    SiteProfile `json:"profile"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Socials はSNSアカウントのURLを保持する。すべて任意項目。
type Socials struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// SiteProfile はトップページのプロフィールカードに表示する情報。
type SiteProfile struct {
	CoverImage   string `json:"coverImage"`
	Avatar       string `json:"avatar"`
	Username     string `json:"username,omitempty"`
	Followers    string `json:"followers,omitempty"`
	Following    int    `json:"following,omitempty"`
	Joined       string `json:"joined,omitempty"`
	Work         string `json:"work,omitempty"`
	Education    string `json:"education,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// DefaultSite は初回アクセス時に作成されるデフォルトのプロフィールを返す。
// 呼び出しごとに新しい値を返すため、呼び出し側で自由に変更してよい。
func DefaultSite() Site {
	return Site{
		Name:     "John Rave O. Camarines",
		Title:    "BSIT Student • Developer",
		Location: "Dolores, Quezon Province, Philippines",
		Email:    "janjancamarines@gmail.com",
		Socials: Socials{
			GitHub:   "https://github.com/Henchman17",
			LinkedIn: "www.linkedin.com/in/camarines-john-rave-o-b774483b0",
			Facebook: "https://www.facebook.com/john.rave.75470",
		},
		ShortBio:   "I build systems and apps that solve real problems — focused on clean UI, reliable backend, and practical features.",
		ResumePath: DefaultResumePath,
		Profile: SiteProfile{
			CoverImage:   DefaultCoverImage,
			Avatar:       DefaultAvatar,
			Username:     "johnrave.camarines",
			Followers:    "1.2K",
			Following:    843,
			Joined:       "January 2020",
			Work:         "BSIT Student at Pamantasan ng Lungsod ng San Pablo",
			Education:    "Lusacan National High School",
			Relationship: "Single",
		},
	}
}
