// Package dto 定义 HTTP 请求体，负责 JSON 解码后的基本规整。
package dto

// InitializeRequest 对应 POST /v1/contract/initialize。
type InitializeRequest struct {
	Admin string `json:"admin"`
}

// GreetRequest 对应 POST /v1/contract/greet。Caller 为空时回退到请求头。
type GreetRequest struct {
	Caller string `json:"caller"`
	Text   string `json:"text"`
}

// CallerRequest 对应只需调用者身份的管理操作。
type CallerRequest struct {
	Caller string `json:"caller"`
}

// TransferAdminRequest 对应 POST /v1/contract/transfer-admin。
type TransferAdminRequest struct {
	Caller   string `json:"caller"`
	NewAdmin string `json:"new_admin"`
}

// SetLimitRequest 对应 POST /v1/contract/limit。Limit 必填，缺省时请求被拒绝；
// 显式传入 0 合法。
type SetLimitRequest struct {
	Caller string  `json:"caller"`
	Limit  *uint32 `json:"limit"`
}

// RestoreRequest 对应 POST /v1/contract/restore。User 为空时只恢复单例条目。
type RestoreRequest struct {
	User string `json:"user"`
}
