package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImages は画像が1枚も得られなかったことを示します。
	ErrNoImages = errors.New("no images generated")
	// ErrMalformedResponse はレスポンスが JSON として解釈できなかったことを示します。
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyConversation は Chat にメッセージが1件も渡されなかったことを示します。
	ErrEmptyConversation = errors.New("conversation has no messages")
	// ErrInvalidRole は user / assistant 以外の話者が含まれていたことを示します。
	ErrInvalidRole = errors.New("invalid message role")
)

// NormalizationError はレスポンスは受け取れたが、期待した形のデータが含まれていなかったことを表します。
type NormalizationError struct {
	Shape  Shape
	Detail string
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *NormalizationError) Unwrap() error { return e.Err }
