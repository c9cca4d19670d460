package generator

import (
	"fmt"

	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"google.golang.org/genai"
)

const htmlInstruction = `Generate clean, valid HTML code for the following request.
Only output the HTML code, no explanations or markdown code blocks.
If CSS is needed, include it in a <style> tag within the HTML.
If JavaScript is needed, include it in a <script> tag.

Request: `

// generateContentRequest は generateContent の JSON ボディです。
type generateContentRequest struct {
	Contents          []*genai.Content  `json:"contents"`
	SystemInstruction *genai.Content    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

// predictRequest は Imagen の predict の JSON ボディです。
type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

func buildTextRequest(prompt string) *generateContentRequest {
	return &generateContentRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
	}
}

func buildHTMLRequest(prompt string) *generateContentRequest {
	return buildTextRequest(htmlInstruction + prompt)
}

func buildPredictRequest(prompt string, opts domain.ImageOptions) *predictRequest {
	count := opts.NumberOfImages
	if count <= 0 {
		count = 1
	}
	return &predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:    count,
			AspectRatio:    orDefault(opts.AspectRatio, defaultAspectRatio),
			NegativePrompt: opts.NegativePrompt,
		},
	}
}

func buildFlashImageRequest(prompt string) *generateContentRequest {
	return &generateContentRequest{
		Contents:         []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		GenerationConfig: &generationConfig{ResponseModalities: imageModalities()},
	}
}

// buildProRequest は参照画像（最大 MaxReferenceImages 枚）を先頭に、プロンプトを最後に並べます。
func buildProRequest(prompt string, opts domain.ProOptions) (*generateContentRequest, error) {
	refs := opts.ReferenceImages
	if len(refs) > MaxReferenceImages {
		refs = refs[:MaxReferenceImages]
	}

	parts := make([]*genai.Part, 0, len(refs)+1)
	for i, ref := range refs {
		data, err := ref.Bytes()
		if err != nil {
			return nil, fmt.Errorf("reference image %d: %w", i, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, ref.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(ComposeProPrompt(prompt, opts.Style, opts.NegativePrompt)))

	return &generateContentRequest{
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		GenerationConfig: &generationConfig{
			ResponseModalities: imageModalities(),
			ImageConfig: &imageConfig{
				AspectRatio: orDefault(opts.AspectRatio, defaultAspectRatio),
				ImageSize:   ResolveImageSize(opts.Resolution),
			},
		},
	}, nil
}

// buildChatRequest は最後のメッセージを今回の発話、それ以前を履歴として並べます。
func buildChatRequest(messages []domain.ChatMessage, systemPrompt string) (*generateContentRequest, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}

	for i, msg := range messages {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("message %d: %w: %q", i, ErrInvalidRole, msg.Role)
		}
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages[:len(messages)-1] {
		contents = append(contents, genai.NewContentFromText(msg.Content, chatRole(msg.Role)))
	}
	last := messages[len(messages)-1]
	contents = append(contents, genai.NewContentFromText(last.Content, genai.RoleUser))

	req := &generateContentRequest{Contents: contents}
	if systemPrompt != "" {
		req.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)}}
	}
	return req, nil
}

// ComposeProPrompt はスタイルを前置し、避けたい要素を後置したプロンプトを返します。
func ComposeProPrompt(prompt, style, negativePrompt string) string {
	full := prompt
	if style != "" {
		full = fmt.Sprintf("Style: %s\n\n%s", style, full)
	}
	if negativePrompt != "" {
		full += "\n\nAvoid: " + negativePrompt
	}
	return full
}

// ResolveImageSize は "1k" / "2k" / "4k" を API の表記に変換します。未知の値は "2K" になります。
func ResolveImageSize(resolution string) string {
	if size, ok := imageSizes[resolution]; ok {
		return size
	}
	return defaultImageSize
}

func chatRole(role domain.Role) genai.Role {
	if role == domain.RoleUser {
		return genai.RoleUser
	}
	return genai.RoleModel
}

func imageModalities() []string {
	return []string{string(genai.ModalityText), string(genai.ModalityImage)}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
