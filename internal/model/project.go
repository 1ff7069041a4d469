// Package model はドメインモデルを定義する。
package model

import "time"

// Project はポートフォリオに掲載する制作物を表す。
type Project struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Tagline     string          `json:"tagline"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Stack       []string        `json:"stack"`
	Featured    bool            `json:"featured"`
	Links       ProjectLinks    `json:"links"`
	Gallery     []string        `json:"gallery"`
	Sections    ProjectSections `json:"sections"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProjectLinks は外部リンク。すべて任意項目。
type ProjectLinks struct {
	GitHub string `json:"github,omitempty"`
	Live   string `json:"live,omitempty"`
	Docs   string `json:"docs,omitempty"`
}

// ProjectSections はケーススタディの本文。OverviewとProblemは必須。
type ProjectSections struct {
	Overview  string   `json:"overview"`
	Problem   string   `json:"problem"`
	Features  []string `json:"features"`
	Learnings []string `json:"learnings"`
}
