package content

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify は名前からURLに使えるslugを生成する。
// 小文字化し、英数字以外の連続を1つのハイフンに置き換え、先頭と末尾のハイフンを除く。
//
//	Slugify("My Cool, Project!") == "my-cool-project"
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
