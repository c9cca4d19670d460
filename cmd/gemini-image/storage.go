package main

import (
	"context"
	"io"
	"slices"

	"github.com/shouni/gemini-skill-kit/pkg/imgutil"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"
	"go.uber.org/zap"
)

// schemeReader は gs:// と s3:// をそれぞれのクライアントに振り分け、それ以外はローカルファイルとして開きます。
type schemeReader struct {
	local remoteio.InputReader
	gcs   remoteio.InputReader
	s3    remoteio.InputReader
}

func (r *schemeReader) pick(path string) remoteio.InputReader {
	switch {
	case remoteio.IsGCSURI(path) && r.gcs != nil:
		return r.gcs
	case remoteio.IsS3URI(path) && r.s3 != nil:
		return r.s3
	default:
		return r.local
	}
}

func (r *schemeReader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.pick(path).Open(ctx, path)
}

func (r *schemeReader) List(ctx context.Context, path string, callback func(string) error) error {
	return r.pick(path).List(ctx, path, callback)
}

// newLoader は参照画像の Loader を作ります。
// クラウドストレージのクライアントは、そのスキームの参照画像があるときだけ初期化します。
func newLoader(ctx context.Context, log *zap.Logger, quality int, sources []string) (*imgutil.Loader, func(), error) {
	reader := &schemeReader{local: remoteio.NewUniversalInputReader(nil, nil)}
	var factories []remoteio.IOFactory
	cleanup := func() {
		for _, f := range factories {
			if err := f.Close(); err != nil {
				log.Warn("ストレージクライアントのクローズに失敗しました", zap.Error(err))
			}
		}
	}

	type backend struct {
		match  func(string) bool
		create func(context.Context) (remoteio.IOFactory, error)
		target *remoteio.InputReader
	}
	backends := []backend{
		{match: remoteio.IsGCSURI, create: gcsfactory.New, target: &reader.gcs},
		{match: remoteio.IsS3URI, create: s3factory.New, target: &reader.s3},
	}
	for _, b := range backends {
		if !slices.ContainsFunc(sources, b.match) {
			continue
		}
		factory, err := b.create(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		factories = append(factories, factory)
		r, err := factory.InputReader()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		*b.target = r
	}

	loader, err := imgutil.NewLoader(reader, imgutil.NewHTTPClient(imgutil.DefaultFetchTimeout),
		imgutil.WithLoaderLogger(log),
		imgutil.WithJPEGQuality(quality),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return loader, cleanup, nil
}
