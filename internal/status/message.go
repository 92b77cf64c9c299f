package status

// 结果提示文案
var codeMessage = map[Code]string{
	LoginSuccess:         "Login Successful",
	CredentialsMissing:   "Either username or password in empty",
	AuthenticationFailed: "Authentication Failed",
	MultipleSessions:     "Only one user login session is allowed",
	LoggedIn:             "You're already logged in",
	ConnectionError:      "There was a connection error",
	LogoutSuccess:        "Logout Successful",
	NotLoggedIn:          "You're not logged in",
	None:                 "Unable to perform the operation",
}

const unknownMessage = "Unknown operation status"

// Describe 获取结果码对应的提示文案，任何输入都返回非空字符串
func Describe(code Code) string {
	if msg, ok := codeMessage[code]; ok {
		return msg
	}
	return unknownMessage
}
