package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"

	// errorPreviewLength はエラーに含めるレスポンス本文の最大文字数です。
	errorPreviewLength = 200
)

// Method は models/{model}:{method} のメソッド部分です。
type Method string

const (
	MethodGenerateContent Method = "generateContent"
	MethodPredict         Method = "predict"
)

// Option は Client の設定を変更します。
type Option func(*Client)

// WithBaseURL は API のベース URL を差し替えます。
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient は通信に使う *http.Client を差し替えます。
// タイムアウトを設けたい場合はここで設定済みのクライアントを渡します。
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger はログ出力先を設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client は JSON を POST して JSON を受け取るだけの薄い HTTP クライアントです。
// リトライもタイムアウトも行いません。
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New は Client を生成します。
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint はモデル名を埋め込んだ URL を組み立てます。API キーはクエリパラメータで渡します。
func (c *Client) Endpoint(model string, method Method, apiKey string) string {
	return fmt.Sprintf("%s/%s/models/%s:%s?key=%s", c.baseURL, apiVersion, model, method, url.QueryEscape(apiKey))
}

// Post は body を JSON にして1回だけ POST し、2xx のレスポンス本文を返します。
func (c *Client) Post(ctx context.Context, model string, method Method, apiKey string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("リクエストの JSON 化に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(model, method, apiKey), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := c.logger.With(zap.String("model", model), zap.String("method", string(method)))
	log.Debug("Gemini API にリクエストします", zap.Int("body_bytes", len(payload)))

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("リクエストに失敗しました", zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	log.Debug("Gemini API のリクエストが完了しました",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: errorMessage(respBody, resp.Status)}
	}
	if readErr != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("レスポンスの読み込みに失敗しました: %w", readErr)}
	}

	return respBody, nil
}

// apiErrorBody は Google API のエラーレスポンスの形です。
type apiErrorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// errorMessage はエラー本文から message を取り出し、取れなければ本文の先頭だけを返します。
func errorMessage(body []byte, status string) string {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	return Truncate(text, errorPreviewLength)
}

// Truncate は s を最大 n 文字（rune 単位）に切り詰めます。
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
