package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	// APIKeyEnv は API キーを読み取る環境変数名です。
	APIKeyEnv = "GEMINI_API_KEY"

	DefaultTextModel          = "gemini-2.0-flash-exp"
	DefaultImageModel         = "imagen-3.0-generate-001"
	DefaultFlashImageModel    = "gemini-2.0-flash-exp-image-generation"
	DefaultNanoBananaProModel = "gemini-3-pro-image-preview"
	DefaultBaseURL            = "https://generativelanguage.googleapis.com"

	// DefaultDotfile はカレントディレクトリで探す dotfile 名です。
	DefaultDotfile = ".env"
)

// Config は解決済みの設定値です。一度 Resolve したら変更しません。
type Config struct {
	APIKey             string        `env:"GEMINI_API_KEY"`
	TextModel          string        `env:"GEMINI_MODEL"`
	ImageModel         string        `env:"IMAGEN_MODEL"`
	FlashImageModel    string        `env:"GEMINI_IMAGE_MODEL"`
	NanoBananaProModel string        `env:"NANO_BANANA_PRO_MODEL"`
	BaseURL            string        `env:"GEMINI_BASE_URL"`
	RequestTimeout     time.Duration `env:"GEMINI_REQUEST_TIMEOUT"` // 0 はタイムアウトなし
	Debug              bool          `env:"GEMINI_DEBUG"`
}

// Resolve はキー・値のソースから Config を組み立てます。
// API キーが無い場合は *ConfigError を返します。モデル名は未設定（空文字を含む）ならデフォルト値になり、
// 形式の検証はしません。
func Resolve(source map[string]string) (Config, error) {
	var cfg Config
	if source == nil {
		source = map[string]string{}
	}
	if err := env.Parse(&cfg, env.Options{Environment: source}); err != nil {
		return Config{}, &ConfigError{Key: "environment", Hint: err.Error(), Err: err}
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return Config{}, missingAPIKey()
	}

	cfg.TextModel = orDefault(cfg.TextModel, DefaultTextModel)
	cfg.ImageModel = orDefault(cfg.ImageModel, DefaultImageModel)
	cfg.FlashImageModel = orDefault(cfg.FlashImageModel, DefaultFlashImageModel)
	cfg.NanoBananaProModel = orDefault(cfg.NanoBananaProModel, DefaultNanoBananaProModel)
	cfg.BaseURL = strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/")

	return cfg, nil
}

// Load はプロセスの環境変数と dotfile をマージして Resolve します。
// 同じキーがある場合は環境変数が優先されます。dotfile が無い、または読めない場合は単に無視します。
func Load(dotfile string) (Config, error) {
	return Resolve(merge(ReadDotfile(dotfile), Environ()))
}

// ReadDotfile は NAME=value 形式の dotfile を読み込みます。
// 存在しない・壊れているファイルは空のマップとして扱います。
func ReadDotfile(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return map[string]string{}
	}
	return values
}

// Environ は os.Environ をマップに変換します。
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// merge は後ろのソースほど優先してマップを結合します。
func merge(sources ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			out[k] = v
		}
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
