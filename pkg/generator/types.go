package generator

import "google.golang.org/genai"

const (
	// NoResponse はテキストが取り出せなかったときに返す固定文字列です。
	NoResponse = "No response"

	// MaxReferenceImages は Nano Banana Pro に渡せる参照画像の上限です。超過分は黙って捨てます。
	MaxReferenceImages = 14

	// textPreviewLength はエラーに含めるテキストの最大文字数です。
	textPreviewLength = 200

	defaultAspectRatio = "1:1"
	defaultImageSize   = "2K"
)

// imageSizes は解像度指定と API の imageSize の対応表です。
var imageSizes = map[string]string{
	"1k": "1K",
	"2k": "2K",
	"4k": "4K",
}

// Shape はレスポンスの形の種類です。
type Shape string

const (
	ShapeCandidates  Shape = "candidates"
	ShapePredictions Shape = "predictions"
	ShapeInlineData  Shape = "inline_data"
)

// CandidatesResponse は generateContent のレスポンスです。
// テキスト・HTML・インライン画像（flash / pro）の抽出はすべてこの形から行います。
type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      *CandidateContent  `json:"content,omitempty"`
	FinishReason genai.FinishReason `json:"finishReason,omitempty"`
}

type CandidateContent struct {
	Parts []ResponsePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

// ResponsePart はテキストかインラインデータのどちらかを持ちます。
type ResponsePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData の Data は base64 文字列のまま保持します。
type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

// PredictResponse は Imagen の predict のレスポンスです。
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type Prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
}
