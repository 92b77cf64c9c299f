package response

import "logmein/internal/status"

// 业务错误码定义
const (
	// 成功（含“已登录”）
	CodeSuccess = 0

	// 客户端错误 (400xx)
	CodeBadRequest         = 40000 // 请求参数错误
	CodeCredentialsMissing = 40001 // 用户名或密码为空

	// 认证错误 (401xx)
	CodeAuthenticationFailed = 40103 // 网关拒绝了用户名或密码

	// 业务冲突 (409xx)
	CodeMultipleSessions = 40901 // 账号已在其他设备登录
	CodeNotLoggedIn      = 40902 // 登出时当前未登录

	// 限流 (429xx)
	CodeTooManyRequests = 42900

	// 服务端错误 (500xx)
	CodeInternalServerError = 50000 // 服务器内部错误
	CodePreferenceError     = 50003 // 偏好存储错误
	CodeGatewayUnreachable  = 50201 // 无法连接网关
	CodeGatewayUnrecognized = 50202 // 网关响应无法识别
)

// CodeMessage 错误信息映射
var CodeMessage = map[int]string{
	CodeSuccess:              "OK",
	CodeBadRequest:           "invalid request",
	CodeCredentialsMissing:   "username or password is empty",
	CodeAuthenticationFailed: "authentication failed",
	CodeMultipleSessions:     "another session is active",
	CodeNotLoggedIn:          "not logged in",
	CodeTooManyRequests:      "too many requests",
	CodeInternalServerError:  "internal server error",
	CodePreferenceError:      "preference store error",
	CodeGatewayUnreachable:   "gateway unreachable",
	CodeGatewayUnrecognized:  "gateway response not recognized",
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// FromStatus 把网关结果码映射为业务码
func FromStatus(code status.Code) int {
	switch code {
	case status.LoginSuccess, status.LogoutSuccess, status.LoggedIn:
		return CodeSuccess
	case status.CredentialsMissing:
		return CodeCredentialsMissing
	case status.AuthenticationFailed:
		return CodeAuthenticationFailed
	case status.MultipleSessions:
		return CodeMultipleSessions
	case status.NotLoggedIn:
		return CodeNotLoggedIn
	case status.ConnectionError:
		return CodeGatewayUnreachable
	default:
		return CodeGatewayUnrecognized
	}
}
