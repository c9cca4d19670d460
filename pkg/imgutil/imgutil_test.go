package imgutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/netarmor/securenet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミー画像（10x10の赤い正方形）を作成するヘルパー
func createDummyImageData(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("PNG を JPEG に圧縮できるのだ", func(t *testing.T) {
		got, err := CompressToJPEG(createDummyImageData(t, "png"), 75)
		require.NoError(t, err)

		_, format, err := image.Decode(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("画像でないデータはエラーなのだ", func(t *testing.T) {
		_, err := CompressToJPEG([]byte("this is not an image"), 75)
		assert.Error(t, err)
	})

	t.Run("品質が低いほど小さくなるのだ", func(t *testing.T) {
		input := createDummyImageData(t, "png")
		high, err := CompressToJPEG(input, 100)
		require.NoError(t, err)
		low, err := CompressToJPEG(input, 10)
		require.NoError(t, err)
		assert.Less(t, len(low), len(high))
	})

	t.Run("範囲外の品質は丸めるのだ", func(t *testing.T) {
		assert.Equal(t, 1, clampQuality(-5))
		assert.Equal(t, 100, clampQuality(500))
		assert.Equal(t, 60, clampQuality(60))
	})
}

func TestNewLoader(t *testing.T) {
	t.Run("reader が無ければエラーなのだ", func(t *testing.T) {
		_, err := NewLoader(nil, &mockHTTPClient{})
		assert.EqualError(t, err, "reader is required")
	})

	t.Run("httpClient が無ければエラーなのだ", func(t *testing.T) {
		_, err := NewLoader(&mockReader{}, nil)
		assert.EqualError(t, err, "httpClient is required")
	})
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	pngData := createDummyImageData(t, "png")

	t.Run("ローカルファイルをそのまま base64 にするのだ", func(t *testing.T) {
		path := writeTempFile(t, "ref.png", pngData)

		img, err := NewDefaultLoader().Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(pngData), img.Base64)
	})

	t.Run("品質を指定すると JPEG に再圧縮するのだ", func(t *testing.T) {
		path := writeTempFile(t, "ref.png", pngData)

		img, err := NewDefaultLoader(WithJPEGQuality(50)).Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MimeType)

		raw, err := img.Bytes()
		require.NoError(t, err)
		_, format, err := image.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("存在しないファイルはエラーなのだ", func(t *testing.T) {
		_, err := NewDefaultLoader().Load(ctx, filepath.Join(t.TempDir(), "missing.png"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("画像でないファイルはエラーなのだ", func(t *testing.T) {
		path := writeTempFile(t, "note.txt", []byte("hello, world"))
		_, err := NewDefaultLoader().Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "text/plain")
	})

	t.Run("gs:// と s3:// は reader から読むのだ", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{
			"gs://bucket/ref.png": pngData,
			"s3://bucket/ref.png": pngData,
		}}
		httpClient := &mockHTTPClient{}
		loader, err := NewLoader(reader, httpClient)
		require.NoError(t, err)

		images, err := loader.LoadAll(ctx, []string{"gs://bucket/ref.png", "s3://bucket/ref.png"})
		require.NoError(t, err)
		require.Len(t, images, 2)
		assert.Equal(t, []string{"gs://bucket/ref.png", "s3://bucket/ref.png"}, reader.opened)
		assert.Empty(t, httpClient.fetched)
	})

	t.Run("http(s) の URL は httpClient から取得するのだ", func(t *testing.T) {
		reader := &mockReader{}
		httpClient := &mockHTTPClient{data: pngData}
		loader, err := NewLoader(reader, httpClient)
		require.NoError(t, err)

		img, err := loader.Load(ctx, "HTTPS://example.com/ref.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MimeType)
		assert.Equal(t, []string{"HTTPS://example.com/ref.png"}, httpClient.fetched)
		assert.Empty(t, reader.opened)
	})

	t.Run("クラウドのクライアントが無ければ gs:// はエラーなのだ", func(t *testing.T) {
		_, err := NewDefaultLoader().Load(ctx, "gs://bucket/ref.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GCSクライアントが未初期化です")
	})

	t.Run("上限を超える画像はエラーなのだ", func(t *testing.T) {
		loader, err := NewLoader(&mockReader{}, &mockHTTPClient{data: make([]byte, maxImageBytes+1)})
		require.NoError(t, err)

		_, err = loader.Load(ctx, "https://example.com/huge.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "大きすぎます")
	})

	t.Run("URL から取得できるのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(pngData)
		}))
		defer srv.Close()

		loader, err := NewLoader(remoteio.NewUniversalInputReader(nil, nil), newLoopbackHTTPClient())
		require.NoError(t, err)

		img, err := loader.Load(ctx, srv.URL+"/ref.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MimeType)
	})

	t.Run("既定ではループバックの URL を取得しないのだ", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		_, err := NewDefaultLoader().Load(ctx, srv.URL+"/ref.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SSRF")
		assert.Zero(t, hits.Load())
	})

	t.Run("事前検証を通っても接続時に内部アドレスを拒否するのだ", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		client := httpkit.New(5*time.Second,
			httpkit.WithHTTPClient(securenet.NewSafeHTTPClient(5*time.Second)),
			httpkit.WithSkipNetworkValidation(true),
			httpkit.WithMaxRetries(0),
			httpkit.WithInitialInterval(time.Millisecond),
		)
		loader, err := NewLoader(remoteio.NewUniversalInputReader(nil, nil), client)
		require.NoError(t, err)

		_, err = loader.Load(ctx, srv.URL+"/ref.png")
		require.Error(t, err)
		assert.Zero(t, hits.Load())
	})

	t.Run("リダイレクト先が内部アドレスなら接続しないのだ", func(t *testing.T) {
		var internalHits atomic.Int32
		internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			internalHits.Add(1)
			_, _ = w.Write(pngData)
		}))
		defer internal.Close()

		redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, internal.URL+"/secret.png", http.StatusFound)
		}))
		defer redirector.Close()

		// 最初のホストだけを素通しし、それ以外の接続は SSRF 対策済みクライアントに任せる
		redirectorURL, err := url.Parse(redirector.URL)
		require.NoError(t, err)
		doer := &http.Client{Transport: hostRouter{
			trusted:  redirectorURL.Host,
			direct:   http.DefaultTransport,
			fallback: securenet.NewSafeHTTPClient(5 * time.Second),
		}}
		client := httpkit.New(5*time.Second,
			httpkit.WithHTTPClient(doer),
			httpkit.WithSkipNetworkValidation(true),
			httpkit.WithMaxRetries(0),
			httpkit.WithInitialInterval(time.Millisecond),
		)
		loader, err := NewLoader(remoteio.NewUniversalInputReader(nil, nil), client)
		require.NoError(t, err)

		_, err = loader.Load(ctx, redirector.URL+"/a.png")
		require.Error(t, err)
		assert.Zero(t, internalHits.Load())
	})

	t.Run("4xx のステータスはリトライせずにエラーなのだ", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		loader, err := NewLoader(remoteio.NewUniversalInputReader(nil, nil), newLoopbackHTTPClient())
		require.NoError(t, err)

		_, err = loader.Load(ctx, srv.URL+"/missing.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestLoader_LoadAll(t *testing.T) {
	ctx := context.Background()
	pngPath := writeTempFile(t, "a.png", createDummyImageData(t, "png"))
	jpegPath := writeTempFile(t, "b.jpg", createDummyImageData(t, "jpeg"))

	t.Run("順番どおりに読み込むのだ", func(t *testing.T) {
		images, err := NewDefaultLoader().LoadAll(ctx, []string{jpegPath, pngPath})
		require.NoError(t, err)
		require.Len(t, images, 2)
		assert.Equal(t, "image/jpeg", images[0].MimeType)
		assert.Equal(t, "image/png", images[1].MimeType)
	})

	t.Run("1件でも失敗すればエラーなのだ", func(t *testing.T) {
		_, err := NewDefaultLoader().LoadAll(ctx, []string{pngPath, "nope.png"})
		assert.Error(t, err)
	})

	t.Run("空なら空のスライスなのだ", func(t *testing.T) {
		images, err := NewDefaultLoader().LoadAll(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, images)
	})
}
