package domain

// Role は会話メッセージの話者です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage は会話の1ターンです。
// 会話は ChatMessage の順序付きスライスで、最後の要素が今回の発話、それ以前が履歴になります。
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid は Role が既知の値かどうかを返します。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}
