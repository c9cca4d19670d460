package generator

import (
	"context"

	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/gemini-skill-kit/pkg/transport"
)

// Poster は JSON を1回 POST してレスポンス本文を返す通信層です。
// *transport.Client がこれを満たします。
type Poster interface {
	Post(ctx context.Context, model string, method transport.Method, apiKey string, body any) ([]byte, error)
}

// TextGenerator はテキスト系の操作です。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateHTML(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, messages []domain.ChatMessage, systemPrompt string) (string, error)
}

// ImageGenerator は画像生成の3つのバリエーションです。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, opts domain.ImageOptions) (*domain.GeneratedImage, error)
	GenerateImageWithGemini(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
	GenerateImageWithNanoBananaPro(ctx context.Context, prompt string, opts domain.ProOptions) (*domain.GeneratedImage, error)
}

// Generator はビジネスロジック層が利用する統合窓口です。
type Generator interface {
	TextGenerator
	ImageGenerator
}
