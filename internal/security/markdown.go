// Package security はユーザー入力をHTMLとして表示する際の安全性を担保する。
//
// MarkdownRenderer は管理画面で入力されたMarkdown（自己紹介文やプロジェクト説明）を
// goldmarkでHTMLに変換し、bluemondayの許可リストポリシーでサニタイズする。
// 生のHTMLはgoldmarkの段階で出力されず、変換後のHTMLもポリシーで再度フィルタされる。
package security

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer はMarkdownを安全なHTMLに変換する。
type Renderer interface {
	// Render はMarkdownをサニタイズ済みHTMLに変換する。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	Render(markdown string) template.HTML
}

// MarkdownRenderer はRendererの実装。goldmarkとbluemondayのポリシーはどちらも
// 生成後に変更しないため、複数のgoroutineから同時に使用できる。
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var _ Renderer = (*MarkdownRenderer)(nil)

// NewMarkdownRenderer はMarkdownRendererを生成する。
// ポリシーの内容:
//   - 許可タグ: 段落、見出し、リスト、引用、コード、強調、取り消し線、表、水平線、a、img
//   - script, iframe, style および全てのon*イベント属性は除去
//   - URLはhttp, https, mailtoと相対URLのみ（javascript:などは属性ごと除去）
//   - 外部リンクにはtarget="_blank"とrel="nofollow noreferrer"を付与
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	return &MarkdownRenderer{
		md:     md,
		policy: newPolicy(),
	}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del",
		"table", "thead", "tbody", "tr", "th", "td",
	)

	// GFMのタスクリスト
	p.AllowAttrs("type").Matching(bluemonday.SpaceSeparatedTokens).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt", "title").OnElements("img")

	return p
}

// Render はMarkdownをHTMLに変換してサニタイズする。
// 変換に失敗した場合は入力をエスケープしたテキストを返す。
func (r *MarkdownRenderer) Render(markdown string) template.HTML {
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		slog.Warn("markdown conversion failed", slog.String("error", err.Error()))
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}
