// Package cli は cmd 配下のコマンドが共有する起動処理です。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shouni/gemini-skill-kit/pkg/config"
	"github.com/shouni/gemini-skill-kit/pkg/facade"
	"github.com/shouni/gemini-skill-kit/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// UsageError はプロンプトなど必須の引数が足りないことを表します。
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return e.Usage }

// Bootstrap は .env と環境変数から設定を読み込み、ロガーと Facade を組み立てます。
// debug が false でも GEMINI_DEBUG が真ならデバッグログを出します。
func Bootstrap(debug bool) (*facade.Facade, *zap.Logger, error) {
	cfg, err := config.Load(config.DefaultDotfile)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(debug || cfg.Debug)
	f, err := facade.FromConfig(cfg, facade.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return f, log, nil
}

// Run はコマンドを実行し、プロセスの終了コードを返します。
// 失敗時は標準エラー出力に "Error: <msg>" を、引数不足の場合は使い方を書きます。
func Run(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetFlagErrorFunc(flagErrorHint)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var uErr *UsageError
		if errors.As(err, &uErr) {
			fmt.Fprintln(stderr, uErr.Usage)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// flagErrorHint は "-" で始まるプロンプトがフラグと誤解されたときのために、-- の使い方を添えます。
func flagErrorHint(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w (to send a prompt that starts with \"-\", use: %s -- <prompt>)", err, cmd.Name())
}
