package status

// Code 网关操作的结果码
//
// 零值 None 表示“未能确定结果”：响应已读完但没有命中任何标记，
// 调用方必须把它当作未知结果处理，而不是成功。
type Code int

const (
	None Code = iota
	LoginSuccess
	AuthenticationFailed
	MultipleSessions
	CredentialsMissing
	LogoutSuccess
	NotLoggedIn
	LoggedIn
	ConnectionError
)

var codeNames = map[Code]string{
	None:                 "none",
	LoginSuccess:         "login_success",
	AuthenticationFailed: "authentication_failed",
	MultipleSessions:     "multiple_sessions",
	CredentialsMissing:   "credentials_missing",
	LogoutSuccess:        "logout_success",
	NotLoggedIn:          "not_logged_in",
	LoggedIn:             "logged_in",
	ConnectionError:      "connection_error",
}

// String 返回稳定的标识符，用于日志和 HTTP 接口
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Determined 是否得到了明确的结果
func (c Code) Determined() bool {
	return c != None
}

// OK 对调用方来说操作是否达成目的（已在线也算）
func (c Code) OK() bool {
	switch c {
	case LoginSuccess, LogoutSuccess, LoggedIn:
		return true
	default:
		return false
	}
}

// Codes 返回所有已定义的结果码（含 None）
func Codes() []Code {
	return []Code{
		None,
		LoginSuccess,
		AuthenticationFailed,
		MultipleSessions,
		CredentialsMissing,
		LogoutSuccess,
		NotLoggedIn,
		LoggedIn,
		ConnectionError,
	}
}
