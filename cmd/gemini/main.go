// gemini はプロンプトを Gemini に送り、応答テキストを標準出力に書くコマンドです。
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/gemini-skill-kit/internal/cli"
	"github.com/shouni/gemini-skill-kit/pkg/facade"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const usage = "Usage: gemini <prompt>"

const longDesc = `Send a prompt to Gemini and print the response.

The API key is read from GEMINI_API_KEY (environment or .env).
Flags must come before the prompt; everything after the first
word is part of the prompt. Put -- before a prompt that starts with "-".

Examples:
  gemini explain goroutines in one paragraph
  gemini --html a pricing table with three tiers > pricing.html
  gemini -- -5 degrees outside, what should I wear?`

type bootstrapFunc func(debug bool) (*facade.Facade, *zap.Logger, error)

type geminiCommander struct {
	html      bool
	debug     bool
	bootstrap bootstrapFunc
}

func newRootCmd(bootstrap bootstrapFunc) *cobra.Command {
	cmder := &geminiCommander{bootstrap: bootstrap}

	cmd := &cobra.Command{
		Use:   "gemini <prompt...>",
		Short: "Send a prompt to Gemini",
		Long:  longDesc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&cmder.html, "html", false, "Generate HTML and strip code fences")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Write debug logs to stderr")

	return cmd
}

func (c *geminiCommander) run(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if prompt == "" {
		return &cli.UsageError{Usage: usage}
	}

	f, log, err := c.bootstrap(c.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Fprintln(cmd.ErrOrStderr(), "Sending to Gemini...")

	var out string
	if c.html {
		out, err = f.GenerateHTML(cmd.Context(), prompt)
	} else {
		out, err = f.GenerateText(cmd.Context(), prompt)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func main() {
	os.Exit(cli.Run(context.Background(), newRootCmd(cli.Bootstrap), os.Args[1:], os.Stdout, os.Stderr))
}
