package domain

import (
	"encoding/base64"
	"fmt"
)

// DefaultImageMimeType は API が mimeType を返さなかった場合に使う値です。
const DefaultImageMimeType = "image/png"

// ImageData は base64 エンコードされた画像1枚とその MIME タイプです。
// 生成結果と参照画像の両方で使います。
type ImageData struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// Bytes は base64 をデコードした生データを返します。
func (d ImageData) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(d.Base64)
	if err != nil {
		return nil, fmt.Errorf("base64 デコードに失敗しました: %w", err)
	}
	return b, nil
}

// GeneratedImage は画像生成の結果です。
// 成功時の Images は必ず1枚以上で、Prompt は呼び出し元が渡した文字列そのものです。
type GeneratedImage struct {
	Images []ImageData `json:"images"`
	Prompt string      `json:"prompt"`
}

// ImageOptions は Imagen (predict) 向けの生成オプションです。
type ImageOptions struct {
	NumberOfImages int    // 0 の場合は 1
	AspectRatio    string // 空の場合は "1:1"
	NegativePrompt string
}

// ProOptions は Nano Banana Pro 向けの生成オプションです。
type ProOptions struct {
	Resolution      string // "1k" | "2k" | "4k"。空の場合は "2k"
	AspectRatio     string // 空の場合は "1:1"
	ReferenceImages []ImageData
	Style           string
	NegativePrompt  string
}
