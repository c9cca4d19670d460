package transport

import "fmt"

// TransportError は HTTP ステータスが 2xx 以外だったか、通信自体に失敗したことを表します。
// 通信失敗の場合 StatusCode は 0 で、Err に原因が入ります。
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("API returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }
