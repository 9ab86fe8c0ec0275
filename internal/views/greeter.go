// Package views 提供视图对象（VO）与 HTTP 响应体之间的转换辅助函数。
// 负责将 Service 层返回的 VO 渲染为 JSON 响应，保持 Controller 层的精简。
package views

import "github.com/bionicotaku/lingo-services-greeter/internal/models/vo"

// GreetReply 是 greet 的响应体。
type GreetReply struct {
	Token         string `json:"token"`
	GreetingCount uint32 `json:"greeting_count"`
	UserCount     uint32 `json:"user_count"`
}

// CounterReply 携带一个计数值。
type CounterReply struct {
	Count uint32 `json:"count"`
}

// UserCounterReply 携带某个用户的计数值。
type UserCounterReply struct {
	User  string `json:"user"`
	Count uint32 `json:"count"`
}

// LimitReply 携带字符上限。
type LimitReply struct {
	Limit uint32 `json:"limit"`
}

// LastGreetingReply 携带用户最近一次问候；Found 为 false 时 Text 为空。
type LastGreetingReply struct {
	User  string `json:"user"`
	Text  string `json:"text"`
	Found bool   `json:"found"`
}

// AdminReply 携带当前管理员。
type AdminReply struct {
	Admin       string `json:"admin"`
	Initialized bool   `json:"initialized"`
}

// RestoreReply 携带本次恢复的归档条目数量。
type RestoreReply struct {
	User     string `json:"user,omitempty"`
	Restored int    `json:"restored"`
}

// AckReply 表示写操作成功。
type AckReply struct {
	OK bool `json:"ok"`
}

// NewGreetReply 将 Greeting 视图对象转换为响应体。nil 时返回空响应以避免 panic。
func NewGreetReply(greeting *vo.Greeting) *GreetReply {
	if greeting == nil {
		return &GreetReply{}
	}
	return &GreetReply{
		Token:         greeting.Token,
		GreetingCount: greeting.GreetingCount,
		UserCount:     greeting.UserCount,
	}
}

// NewLastGreetingReply 转换 LastGreeting。
func NewLastGreetingReply(last *vo.LastGreeting) *LastGreetingReply {
	if last == nil {
		return &LastGreetingReply{}
	}
	return &LastGreetingReply{User: last.User, Text: last.Text, Found: last.Found}
}

// NewAdminReply 转换 Admin。
func NewAdminReply(admin *vo.Admin) *AdminReply {
	if admin == nil {
		return &AdminReply{}
	}
	return &AdminReply{Admin: admin.Address, Initialized: admin.Initialized}
}

// NewRestoreReply 转换 Restored。
func NewRestoreReply(restored *vo.Restored) *RestoreReply {
	if restored == nil {
		return &RestoreReply{}
	}
	return &RestoreReply{User: restored.User, Restored: restored.Restored}
}

// NewSnapshotReply 直接复用 ContractSnapshot 的 JSON 形态。
func NewSnapshotReply(snap *vo.ContractSnapshot) *vo.ContractSnapshot {
	if snap == nil {
		return &vo.ContractSnapshot{}
	}
	return snap
}
