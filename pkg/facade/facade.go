// Package facade は Gemini クライアントをまとめて扱うための窓口です。
// エントリーポイントで1回だけ組み立て、必要な箇所へ明示的に渡して使います。
package facade

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/gemini-skill-kit/pkg/config"
	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/gemini-skill-kit/pkg/generator"
	"github.com/shouni/gemini-skill-kit/pkg/transport"
	"go.uber.org/zap"
)

// Option は FromConfig / FromEnv での組み立てを変更します。
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// WithLogger は通信層とクライアントに渡すロガーを設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient は通信に使う HTTP クライアントを設定します。
// 指定した場合、Config.RequestTimeout は適用されません。
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// Facade は generator.Generator の各操作をそのまま委譲します。
type Facade struct {
	gen generator.Generator
}

// New は既存の Generator を包みます。
func New(gen generator.Generator) (*Facade, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	return &Facade{gen: gen}, nil
}

// FromConfig は解決済みの設定から通信層とクライアントを組み立てます。
func FromConfig(cfg config.Config, opts ...Option) (*Facade, error) {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	tr := transport.New(
		transport.WithBaseURL(cfg.BaseURL),
		transport.WithHTTPClient(httpClient),
		transport.WithLogger(o.logger),
	)
	client, err := generator.NewClient(cfg, tr, generator.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return New(client)
}

// FromEnv は環境変数と dotfile から設定を読み込んで組み立てます。
func FromEnv(dotfile string, opts ...Option) (*Facade, error) {
	cfg, err := config.Load(dotfile)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, opts...)
}

func (f *Facade) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.gen.GenerateText(ctx, prompt)
}

func (f *Facade) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	return f.gen.GenerateHTML(ctx, prompt)
}

// Chat はシステムプロンプトを省略できます。
func (f *Facade) Chat(ctx context.Context, messages []domain.ChatMessage, systemPrompt ...string) (string, error) {
	return f.gen.Chat(ctx, messages, first(systemPrompt))
}

// GenerateImage は opts を省略するとデフォルト（1枚、1:1）で生成します。
func (f *Facade) GenerateImage(ctx context.Context, prompt string, opts ...domain.ImageOptions) (*domain.GeneratedImage, error) {
	return f.gen.GenerateImage(ctx, prompt, first(opts))
}

func (f *Facade) GenerateImageWithGemini(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	return f.gen.GenerateImageWithGemini(ctx, prompt)
}

// GenerateImageWithNanoBananaPro は opts を省略すると 2K・1:1・参照画像なしで生成します。
func (f *Facade) GenerateImageWithNanoBananaPro(ctx context.Context, prompt string, opts ...domain.ProOptions) (*domain.GeneratedImage, error) {
	return f.gen.GenerateImageWithNanoBananaPro(ctx, prompt, first(opts))
}

// first は可変長引数の先頭を返します。空ならゼロ値です。
func first[T any](values []T) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	return values[0]
}
