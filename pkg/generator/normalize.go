package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/gemini-skill-kit/pkg/transport"
	"google.golang.org/genai"
)

var (
	htmlFenceOpen  = regexp.MustCompile("(?i)^```(?:html)?\\n?")
	htmlFenceClose = regexp.MustCompile("\\n?```$")
)

// DecodeCandidates は generateContent のレスポンス本文をデコードします。
// 型の合わないフィールドは空のまま読み飛ばすので、欠けた階層と同じ扱いになります。
// JSON として壊れている場合だけ ErrMalformedResponse を返します。
func DecodeCandidates(raw []byte) (*CandidatesResponse, error) {
	return decode[CandidatesResponse](raw, ShapeCandidates, true)
}

// DecodePredictions は predict のレスポンス本文をデコードします。
func DecodePredictions(raw []byte) (*PredictResponse, error) {
	return decode[PredictResponse](raw, ShapePredictions, false)
}

func decode[T any](raw []byte, shape Shape, skipTypeErrors bool) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		// encoding/json は型の合わないフィールドを飛ばして残りを埋めたうえで UnmarshalTypeError を返す
		var typeErr *json.UnmarshalTypeError
		if skipTypeErrors && errors.As(err, &typeErr) {
			return &v, nil
		}
		return nil, &NormalizationError{Shape: shape, Detail: err.Error(), Err: ErrMalformedResponse}
	}
	return &v, nil
}

// ExtractText は最初の候補の最初のパートのテキストを返します。
// どの階層が欠けていても失敗せず、NoResponse を返します。
func ExtractText(resp *CandidatesResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return NoResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return NoResponse
	}
	if text := content.Parts[0].Text; text != "" {
		return text
	}
	return NoResponse
}

// ExtractHTML は ExtractText の結果からコードフェンスを取り除きます。
func ExtractHTML(resp *CandidatesResponse) string {
	return CleanHTML(ExtractText(resp))
}

// CleanHTML は先頭の "```html" / "```" と末尾の "```" をそれぞれ1回だけ取り除きます。
// 途中に出てくる "```" には触れません。
func CleanHTML(s string) string {
	s = htmlFenceOpen.ReplaceAllString(s, "")
	return htmlFenceClose.ReplaceAllString(s, "")
}

// ExtractPredictions は predictions を GeneratedImage に変換します。
func ExtractPredictions(resp *PredictResponse, prompt string) (*domain.GeneratedImage, error) {
	if resp == nil || len(resp.Predictions) == 0 {
		return nil, &NormalizationError{Shape: ShapePredictions, Detail: "the response contained no predictions", Err: ErrNoImages}
	}

	images := make([]domain.ImageData, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		images = append(images, domain.ImageData{
			Base64:   p.BytesBase64Encoded,
			MimeType: mimeTypeOrDefault(p.MimeType),
		})
	}
	return &domain.GeneratedImage{Images: images, Prompt: prompt}, nil
}

// ExtractInlineImages はすべての候補・すべてのパートから inlineData を出現順に集めます。
// 1枚も無い場合は、レスポンス中のテキストの先頭をエラーに含めます。
func ExtractInlineImages(resp *CandidatesResponse, prompt string) (*domain.GeneratedImage, error) {
	var (
		images []domain.ImageData
		texts  []string
		reason genai.FinishReason
	)

	if resp != nil {
		for _, candidate := range resp.Candidates {
			if reason == "" && !isNormalFinish(candidate.FinishReason) {
				reason = candidate.FinishReason
			}
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.InlineData != nil {
					images = append(images, domain.ImageData{
						Base64:   part.InlineData.Data,
						MimeType: mimeTypeOrDefault(part.InlineData.MimeType),
					})
					continue
				}
				if part.Text != "" {
					texts = append(texts, part.Text)
				}
			}
		}
	}

	if len(images) == 0 {
		return nil, &NormalizationError{Shape: ShapeInlineData, Detail: noImagesDetail(strings.Join(texts, ""), reason), Err: ErrNoImages}
	}
	return &domain.GeneratedImage{Images: images, Prompt: prompt}, nil
}

func noImagesDetail(text string, reason genai.FinishReason) string {
	var detail string
	if strings.TrimSpace(text) != "" {
		detail = "No images in response. Model returned: " + transport.Truncate(text, textPreviewLength)
	} else {
		detail = "No images were generated. The model may have returned text instead."
	}
	if reason != "" {
		detail += fmt.Sprintf(" (finishReason: %s)", reason)
	}
	return detail
}

// isNormalFinish は安全フィルター等で止められていない終了理由かどうかを返します。
func isNormalFinish(r genai.FinishReason) bool {
	return r == "" || r == genai.FinishReasonUnspecified || r == genai.FinishReasonStop
}

func mimeTypeOrDefault(mimeType string) string {
	if mimeType == "" {
		return domain.DefaultImageMimeType
	}
	return mimeType
}
