package config

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey は API キーが設定されていないことを示します。
var ErrMissingAPIKey = errors.New("missing API key")

const apiKeyHint = "Get your API key from: https://aistudio.google.com/app/apikey\n" +
	"Then set it in your .env file or export it: export " + APIKeyEnv + "=your_key"

// ConfigError は設定の解決に失敗したことを表します。Hint はユーザー向けの対処方法です。
type ConfigError struct {
	Key  string
	Hint string
	Err  error
}

func (e *ConfigError) Error() string {
	if errors.Is(e.Err, ErrMissingAPIKey) {
		return fmt.Sprintf("%s environment variable is required.\n%s", e.Key, e.Hint)
	}
	return fmt.Sprintf("invalid configuration (%s): %s", e.Key, e.Hint)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missingAPIKey() *ConfigError {
	return &ConfigError{Key: APIKeyEnv, Hint: apiKeyHint, Err: ErrMissingAPIKey}
}
