// gemini-image は Imagen / Gemini Flash / Nano Banana Pro で画像を生成し、結果を JSON で標準出力に書くコマンドです。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/gemini-skill-kit/internal/cli"
	"github.com/shouni/gemini-skill-kit/pkg/domain"
	"github.com/shouni/gemini-skill-kit/pkg/facade"
	"github.com/shouni/gemini-skill-kit/pkg/imgutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const usage = "Usage: gemini-image [flags] <prompt>"

const longDesc = `Generate images and print the result as JSON.

Variants:
  imagen  Imagen predict endpoint (default)
  flash   Gemini Flash image model
  pro     Nano Banana Pro, supports --style, --resolution and --ref

The output is {"images":[{"base64":...,"mimeType":...}],"prompt":...}.
Nothing is written to disk.

Flags must come before the prompt. Everything from the first prompt word on
is part of the prompt. Put -- before a prompt that starts with "-".

Examples:
  gemini-image --count 2 --aspect-ratio 16:9 a lighthouse at dusk
  gemini-image --variant pro --resolution 4k --ref ./sketch.png a clean line drawing
  gemini-image --variant flash -- -40 degrees on a frozen lake`

const (
	variantImagen = "imagen"
	variantFlash  = "flash"
	variantPro    = "pro"
)

type bootstrapFunc func(debug bool) (*facade.Facade, *zap.Logger, error)

type imageCommander struct {
	variant        string
	aspectRatio    string
	count          int
	negativePrompt string
	style          string
	resolution     string
	refs           []string
	refQuality     int
	debug          bool

	bootstrap bootstrapFunc
	loader    loaderFunc
}

type loaderFunc func(ctx context.Context, log *zap.Logger, quality int, sources []string) (*imgutil.Loader, func(), error)

func newRootCmd(bootstrap bootstrapFunc) *cobra.Command {
	cmder := &imageCommander{
		bootstrap: bootstrap,
		loader:    newLoader,
	}

	cmd := &cobra.Command{
		Use:   "gemini-image [flags] <prompt...>",
		Short: "Generate images with Gemini",
		Long:  longDesc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&cmder.variant, "variant", variantImagen, "imagen, flash or pro")
	cmd.Flags().StringVar(&cmder.aspectRatio, "aspect-ratio", "", "Aspect ratio such as 1:1 or 16:9 (imagen, pro)")
	cmd.Flags().IntVar(&cmder.count, "count", 1, "Number of images (imagen)")
	cmd.Flags().StringVar(&cmder.negativePrompt, "negative", "", "Things to avoid (imagen, pro)")
	cmd.Flags().StringVar(&cmder.style, "style", "", "Style prefix (pro)")
	cmd.Flags().StringVar(&cmder.resolution, "resolution", "", "1k, 2k or 4k (pro)")
	cmd.Flags().StringArrayVar(&cmder.refs, "ref", nil, "Reference image: local path, gs://, s3:// or http(s) URL, repeatable (pro)")
	cmd.Flags().IntVar(&cmder.refQuality, "ref-quality", 0, "Re-encode reference images as JPEG with this quality (0 keeps the original)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Write debug logs to stderr")

	return cmd
}

func (c *imageCommander) run(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if prompt == "" {
		return &cli.UsageError{Usage: usage}
	}
	switch c.variant {
	case variantImagen, variantFlash, variantPro:
	default:
		return fmt.Errorf("unknown variant %q (want imagen, flash or pro)", c.variant)
	}
	if len(c.refs) > 0 && c.variant != variantPro {
		return fmt.Errorf("--ref is only supported with --variant pro")
	}

	f, log, err := c.bootstrap(c.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	var result *domain.GeneratedImage
	switch c.variant {
	case variantImagen:
		result, err = f.GenerateImage(ctx, prompt, domain.ImageOptions{
			NumberOfImages: c.count,
			AspectRatio:    c.aspectRatio,
			NegativePrompt: c.negativePrompt,
		})
	case variantFlash:
		result, err = f.GenerateImageWithGemini(ctx, prompt)
	case variantPro:
		result, err = c.generatePro(ctx, f, log, prompt)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (c *imageCommander) generatePro(ctx context.Context, f *facade.Facade, log *zap.Logger, prompt string) (*domain.GeneratedImage, error) {
	loader, cleanup, err := c.loader(ctx, log, c.refQuality, c.refs)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	refs, err := loader.LoadAll(ctx, c.refs)
	if err != nil {
		return nil, err
	}
	return f.GenerateImageWithNanoBananaPro(ctx, prompt, domain.ProOptions{
		Resolution:      c.resolution,
		AspectRatio:     c.aspectRatio,
		ReferenceImages: refs,
		Style:           c.style,
		NegativePrompt:  c.negativePrompt,
	})
}

func main() {
	os.Exit(cli.Run(context.Background(), newRootCmd(cli.Bootstrap), os.Args[1:], os.Stdout, os.Stderr))
}
