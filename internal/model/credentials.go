// Package model はドメインモデルを定義する。
package model

import "time"

// Credentials は資格・学歴・スキルをまとめたシングルトンレコード。
type Credentials struct {
	Certifications []Certification `json:"certifications"`
	Education      []Education     `json:"education"`
	Skills         []SkillGroup    `json:"skills"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// Certification は取得資格を表す。TitleとIssuerは必須。
type Certification struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Education は学歴を表す。DegreeとSchoolは必須。
type Education struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year,omitempty"`
}

// SkillGroup はカテゴリごとのスキル一覧。Categoryは必須。
type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// EmptyCredentials はレコード未作成時に返す空のCredentialsを返す。
// nilスライスではなく空スライスを持つため、JSONでは [] として出力される。
func EmptyCredentials() Credentials {
	return Credentials{
		Certifications: []Certification{},
		Education:      []Education{},
		Skills:         []SkillGroup{},
	}
}
