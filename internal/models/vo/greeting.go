// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Views 层转换为 API 响应，隔离内部数据结构。
package vo

import "github.com/bionicotaku/lingo-services-greeter/internal/contract"

// Greeting is the result of a successful greet.
type Greeting struct {
	Token         string `json:"token"`
	Caller        string `json:"caller"`
	GreetingCount uint32 `json:"greeting_count"`
	UserCount     uint32 `json:"user_count"`
}

// LastGreeting wraps the optional last text of a user.
type LastGreeting struct {
	User  string `json:"user"`
	Text  string `json:"text,omitempty"`
	Found bool   `json:"found"`
}

// Admin wraps the optional current admin.
type Admin struct {
	Address     string `json:"address,omitempty"`
	Initialized bool   `json:"initialized"`
}

// Restored reports how many archived entries a restore revived.
type Restored struct {
	User     string `json:"user,omitempty"`
	Restored int    `json:"restored"`
}

// ContractSnapshot aggregates the contract state for a single read.
type ContractSnapshot struct {
	Initialized     bool   `json:"initialized"`
	Admin           string `json:"admin,omitempty"`
	GreetingCount   uint32 `json:"greeting_count"`
	CharacterLimit  uint32 `json:"character_limit"`
	User            string `json:"user,omitempty"`
	UserCount       uint32 `json:"user_count"`
	LastGreeting    string `json:"last_greeting,omitempty"`
	HasLastGreeting bool   `json:"has_last_greeting"`
}

// NewContractSnapshot converts a contract snapshot into its view object.
func NewContractSnapshot(snap contract.Snapshot) *ContractSnapshot {
	return &ContractSnapshot{
		Initialized:     snap.Initialized,
		Admin:           string(snap.Admin),
		GreetingCount:   snap.GreetingCount,
		CharacterLimit:  snap.CharacterLimit,
		User:            string(snap.User),
		UserCount:       snap.UserCount,
		LastGreeting:    snap.LastGreeting,
		HasLastGreeting: snap.HasLastGreeting,
	}
}
