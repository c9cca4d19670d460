package generator

import (
	"context"
	"fmt"

	"github.com/shouni/gemini-skill-kit/pkg/config"
	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/gemini-skill-kit/pkg/transport"
	"go.uber.org/zap"
)

// Option は Client の設定を変更します。
type Option func(*Client)

// WithLogger はログ出力先を設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client は Gemini API の各操作を1メソッド1リクエストで提供します。
// 生成後は状態を変更しないため、複数の goroutine から同時に使えます。
type Client struct {
	poster Poster
	cfg    config.Config
	logger *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient は設定と通信層を注入して Client を初期化します。
func NewClient(cfg config.Config, poster Poster, opts ...Option) (*Client, error) {
	if poster == nil {
		return nil, fmt.Errorf("poster is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("client: %w", config.ErrMissingAPIKey)
	}

	c := &Client{
		poster: poster,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateText はプロンプトからテキストを生成します。
// テキストが取り出せない場合もエラーにはせず NoResponse を返します。
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generateContent(ctx, c.cfg.TextModel, buildTextRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}
	return ExtractText(resp), nil
}

// GenerateHTML は HTML 生成用の指示を付けてテキストを生成し、コードフェンスを取り除いて返します。
func (c *Client) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generateContent(ctx, c.cfg.TextModel, buildHTMLRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("HTML generation failed: %w", err)
	}
	return ExtractHTML(resp), nil
}

// Chat は会話履歴を付けて最後のメッセージに対する応答を返します。
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage, systemPrompt string) (string, error) {
	body, err := buildChatRequest(messages, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}

	resp, err := c.generateContent(ctx, c.cfg.TextModel, body)
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	return ExtractText(resp), nil
}

// GenerateImage は Imagen (predict) で画像を生成します。
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts domain.ImageOptions) (*domain.GeneratedImage, error) {
	body := buildPredictRequest(prompt, opts)
	c.logger.Debug("Imagen で画像を生成します",
		zap.String("model", c.cfg.ImageModel),
		zap.Int("sample_count", body.Parameters.SampleCount),
		zap.String("aspect_ratio", body.Parameters.AspectRatio),
	)

	raw, err := c.poster.Post(ctx, c.cfg.ImageModel, transport.MethodPredict, c.cfg.APIKey, body)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	resp, err := DecodePredictions(raw)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	out, err := ExtractPredictions(resp, prompt)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	return out, nil
}

// GenerateImageWithGemini は Gemini Flash の画像生成モデルで画像を生成します。
func (c *Client) GenerateImageWithGemini(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	c.logger.Debug("Gemini Flash で画像を生成します", zap.String("model", c.cfg.FlashImageModel))

	resp, err := c.generateContent(ctx, c.cfg.FlashImageModel, buildFlashImageRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini image generation failed: %w", err)
	}

	out, err := ExtractInlineImages(resp, prompt)
	if err != nil {
		return nil, fmt.Errorf("Gemini image generation failed: %w", err)
	}
	return out, nil
}

// GenerateImageWithNanoBananaPro は Nano Banana Pro (Gemini 3 Pro Image) で画像を生成します。
// 参照画像は最大 MaxReferenceImages 枚まで、指定順のままプロンプトの前に送ります。
func (c *Client) GenerateImageWithNanoBananaPro(ctx context.Context, prompt string, opts domain.ProOptions) (*domain.GeneratedImage, error) {
	body, err := buildProRequest(prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("Nano Banana Pro image generation failed: %w", err)
	}

	if len(opts.ReferenceImages) > MaxReferenceImages {
		c.logger.Warn("参照画像が上限を超えたため一部を無視します",
			zap.Int("given", len(opts.ReferenceImages)),
			zap.Int("used", MaxReferenceImages),
		)
	}
	c.logger.Debug("Nano Banana Pro で画像を生成します",
		zap.String("model", c.cfg.NanoBananaProModel),
		zap.Int("total_parts", len(body.Contents[0].Parts)),
		zap.String("image_size", body.GenerationConfig.ImageConfig.ImageSize),
	)

	resp, err := c.generateContent(ctx, c.cfg.NanoBananaProModel, body)
	if err != nil {
		return nil, fmt.Errorf("Nano Banana Pro image generation failed: %w", err)
	}

	out, err := ExtractInlineImages(resp, prompt)
	if err != nil {
		return nil, fmt.Errorf("Nano Banana Pro image generation failed: %w", err)
	}
	return out, nil
}

// generateContent は generateContent を呼び出してレスポンスをデコードします。ラップは呼び出し元で行います。
func (c *Client) generateContent(ctx context.Context, model string, body *generateContentRequest) (*CandidatesResponse, error) {
	raw, err := c.poster.Post(ctx, model, transport.MethodGenerateContent, c.cfg.APIKey, body)
	if err != nil {
		return nil, err
	}
	return DecodeCandidates(raw)
}
