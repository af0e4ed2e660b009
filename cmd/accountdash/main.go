// Command accountdash はアカウント登録・サインインとダッシュボードを提供するWebサーバー。
//
// 使い方:
//
//	accountdash [serve|worker|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/accountdash/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "accountdash: %v\n", err)
		os.Exit(1)
	}
}
