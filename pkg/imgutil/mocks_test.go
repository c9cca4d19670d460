package imgutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// --- Mocks ---

type mockReader struct {
	files  map[string][]byte
	opened []string
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.opened = append(m.opened, uri)
	data, ok := m.files[uri]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return nil
}

type mockHTTPClient struct {
	data    []byte
	err     error
	fetched []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetched = append(m.fetched, url)
	return m.data, m.err
}

// hostRouter は trusted のホストだけ direct で送り、それ以外は fallback に任せます。
type hostRouter struct {
	trusted  string
	direct   http.RoundTripper
	fallback httpkit.Doer
}

func (h hostRouter) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host == h.trusted {
		return h.direct.RoundTrip(req)
	}
	return h.fallback.Do(req)
}

// newLoopbackHTTPClient は httptest サーバーに届くように SSRF 検証を外したクライアントです。
func newLoopbackHTTPClient() *httpkit.Client {
	return httpkit.New(5*time.Second,
		httpkit.WithSkipNetworkValidation(true),
		httpkit.WithMaxRetries(0),
		httpkit.WithInitialInterval(time.Millisecond),
	)
}
