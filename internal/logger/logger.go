// Package logger はslogによるJSON構造化ログの初期化を提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// level はグローバルロガーのログレベル。
// 設定読み込み前にロガーを使えるよう、起動時はInfoで開始し後から変更する。
var level = new(slog.LevelVar)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// levelにnilを渡した場合はInfoレベルで出力する。
func Setup(w io.Writer, lv slog.Leveler) *slog.Logger {
	if lv == nil {
		lv = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lv,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, level))
}

// SetLevel はグローバルロガーのログレベルを変更する。
func SetLevel(l slog.Level) {
	level.Set(l)
}
