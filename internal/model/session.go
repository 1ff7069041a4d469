// Package model はドメインモデルを定義する。
package model

import "time"

// Session は管理者のログインセッションを表す。
// 管理者は1名のみのため、Subjectには設定済みの管理者メールアドレスが入る。
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
