package content

import (
	"context"
	"fmt"

	"github.com/hitoshi/portfolio/internal/model"
)

// CredentialsPatch は資格情報の部分更新。
// 指定されたシーケンスは保存済みのものを丸ごと置き換える。
type CredentialsPatch struct {
	Certifications *[]model.Certification `json:"certifications,omitempty"`
	Education      *[]model.Education     `json:"education,omitempty"`
	Skills         *[]model.SkillGroup    `json:"skills,omitempty"`
}

// GetCredentials は資格情報を返す。未作成の場合は空のシーケンスを返し、レコードは作成しない。
func (s *Service) GetCredentials(ctx context.Context) (*model.Credentials, error) {
	creds, err := s.creds.Find(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError("load credentials", err)
	}
	if creds == nil {
		empty := model.EmptyCredentials()
		return &empty, nil
	}
	normalizeCredentials(creds)
	return creds, nil
}

// UpdateCredentials はpatchをマージして保存する。未作成の場合は作成する。
func (s *Service) UpdateCredentials(ctx context.Context, patch CredentialsPatch) (*model.Credentials, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	current, err := s.creds.Find(ctx)
	if err != nil {
		return nil, model.NewStoreUnavailableError("load credentials", err)
	}
	creds := model.EmptyCredentials()
	if current != nil {
		creds = *current
	}

	creds = ApplyCredentialsPatch(creds, patch)
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	if err := s.creds.Save(ctx, &creds); err != nil {
		return nil, model.NewStoreUnavailableError("save credentials", err)
	}
	s.record("credentials", "update")
	return &creds, nil
}

// ApplyCredentialsPatch はpatchで指定されたシーケンスを置き換えたコピーを返す。
func ApplyCredentialsPatch(creds model.Credentials, patch CredentialsPatch) model.Credentials {
	if patch.Certifications != nil {
		creds.Certifications = append([]model.Certification(nil), (*patch.Certifications)...)
	}
	if patch.Education != nil {
		creds.Education = append([]model.Education(nil), (*patch.Education)...)
	}
	if patch.Skills != nil {
		skills := make([]model.SkillGroup, len(*patch.Skills))
		for i, g := range *patch.Skills {
			skills[i] = model.SkillGroup{Category: g.Category, Items: append([]string(nil), g.Items...)}
		}
		creds.Skills = skills
	}
	normalizeCredentials(&creds)
	return creds
}

// ValidateCredentials は各エントリの必須項目を検証する。
// 不足項目は "certifications[0].issuer" のようなパスで報告する。
func ValidateCredentials(creds model.Credentials) error {
	var missing []string
	for i, c := range creds.Certifications {
		if isBlank(c.Title) {
			missing = append(missing, fmt.Sprintf("certifications[%d].title", i))
		}
		if isBlank(c.Issuer) {
			missing = append(missing, fmt.Sprintf("certifications[%d].issuer", i))
		}
	}
	for i, e := range creds.Education {
		if isBlank(e.Degree) {
			missing = append(missing, fmt.Sprintf("education[%d].degree", i))
		}
		if isBlank(e.School) {
			missing = append(missing, fmt.Sprintf("education[%d].school", i))
		}
	}
	for i, g := range creds.Skills {
		if isBlank(g.Category) {
			missing = append(missing, fmt.Sprintf("skills[%d].category", i))
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

// normalizeCredentials はnilスライスを空スライスに揃える。
func normalizeCredentials(c *model.Credentials) {
	if c.Certifications == nil {
		c.Certifications = []model.Certification{}
	}
	if c.Education == nil {
		c.Education = []model.Education{}
	}
	if c.Skills == nil {
		c.Skills = []model.SkillGroup{}
	}
	for i := range c.Skills {
		if c.Skills[i].Items == nil {
			c.Skills[i].Items = []string{}
		}
	}
}
