// Command portfolio はポートフォリオサイトと管理画面を提供する。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/portfolio/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
		os.Exit(1)
	}
}
