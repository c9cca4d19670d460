package imgutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"go.uber.org/zap"
)

const (
	// maxImageBytes は1枚の参照画像として読み込む上限です。
	maxImageBytes = 20 << 20
	// DefaultFetchTimeout は参照画像の URL 取得に使う既定のタイムアウトです。
	DefaultFetchTimeout = 30 * time.Second
)

// HTTPClient は URL から画像データを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// NewHTTPClient は参照画像の取得用に SSRF 対策済みの HTTP クライアントを作成します。
// 接続時にも宛先 IP を検証するため、リダイレクト先や DNS の再解決でも内部ネットワークには繋がりません。
// 失敗はリトライせず、そのまま呼び出し元に返します。
func NewHTTPClient(timeout time.Duration) *httpkit.Client {
	return httpkit.New(timeout, httpkit.WithMaxRetries(0))
}

// LoaderOption は Loader の設定を変更します。
type LoaderOption func(*Loader)

// WithJPEGQuality を指定すると、読み込んだ画像を JPEG に再圧縮します。
func WithJPEGQuality(quality int) LoaderOption {
	return func(l *Loader) {
		l.quality = quality
	}
}

// WithLoaderLogger はログ出力先を設定します。
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader はローカルファイル、gs:// / s3:// のオブジェクト、http(s) の URL から参照画像を読み込みます。
type Loader struct {
	reader     remoteio.InputReader
	httpClient HTTPClient
	quality    int
	logger     *zap.Logger
}

// NewLoader は依存関係を注入して Loader を初期化します。既定では再圧縮しません。
func NewLoader(reader remoteio.InputReader, httpClient HTTPClient, opts ...LoaderOption) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}

	l := &Loader{
		reader:     reader,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// NewDefaultLoader はクラウドストレージのクライアントを持たない Loader を作成します。
// ローカルファイルと http(s) の URL だけを読み込めます。
func NewDefaultLoader(opts ...LoaderOption) *Loader {
	l, _ := NewLoader(remoteio.NewUniversalInputReader(nil, nil), NewHTTPClient(DefaultFetchTimeout), opts...)
	return l
}

// LoadAll は sources を順番に読み込みます。1件でも失敗したらエラーを返します。
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([]domain.ImageData, error) {
	images := make([]domain.ImageData, 0, len(sources))
	for _, src := range sources {
		img, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// Load は1件の参照画像を読み込み、base64 の ImageData にします。
func (l *Loader) Load(ctx context.Context, source string) (domain.ImageData, error) {
	data, err := l.fetchImageData(ctx, source)
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("参照画像の読み込みに失敗しました (%s): %w", source, err)
	}
	if len(data) > maxImageBytes {
		return domain.ImageData{}, fmt.Errorf("参照画像が大きすぎます (%s): 上限 %d bytes", source, maxImageBytes)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.ImageData{}, fmt.Errorf("参照画像ではありません (%s): detected %s", source, mimeType)
	}

	if l.quality > 0 {
		compressed, err := CompressToJPEG(data, l.quality)
		if err != nil {
			return domain.ImageData{}, fmt.Errorf("参照画像の圧縮に失敗しました (%s): %w", source, err)
		}
		l.logger.Debug("参照画像を JPEG に再圧縮しました",
			zap.String("source", source),
			zap.Int("before", len(data)),
			zap.Int("after", len(compressed)),
		)
		data, mimeType = compressed, jpegMimeType
	}

	return domain.ImageData{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

func (l *Loader) fetchImageData(ctx context.Context, source string) ([]byte, error) {
	if isHTTPURL(source) {
		data, err := l.httpClient.FetchBytes(ctx, source)
		if err != nil {
			l.logger.Warn("参照画像の URL を取得できませんでした", zap.String("url", source), zap.Error(err))
			return nil, err
		}
		return data, nil
	}

	rc, err := l.reader.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readLimited(rc)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("画像が大きすぎます (上限 %d bytes)", maxImageBytes)
	}
	return data, nil
}

func isHTTPURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
