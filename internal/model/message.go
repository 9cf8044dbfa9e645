// Package model 定义了服务端与客户端共用的数据结构
package model

// Role 消息角色
type Role string

// 消息角色常量
const (
	RoleUser      Role = "user"      // 用户消息
	RoleAssistant Role = "assistant" // AI 助手响应
	RoleSystem    Role = "system"    // 系统指令，仅由转发服务在调用上游时附加
)

// Valid 判断角色是否允许出现在对话记录中
// 对话记录只允许 user 和 assistant 两种角色
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message 对话中的一轮消息
// 创建后不可修改（不支持编辑或流式更新）
type Message struct {
	// Role 消息角色
	// user: 用户发送的消息
	// assistant: AI 助手的响应
	Role Role `json:"role" binding:"required,oneof=user assistant"`

	// Content 消息内容
	Content string `json:"content"`
}

// NewUserMessage 创建用户消息
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage 创建助手消息
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
