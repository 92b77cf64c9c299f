package gateway

import "errors"

var (
	ErrCredentialsAbsent = errors.New("未提供登录凭据")
	ErrUsernameMissing   = errors.New("用户名为空")
	ErrPasswordMissing   = errors.New("密码为空")
)

// Credentials 登录凭据，nil 表示调用方根本没有提供
type Credentials struct {
	Username string
	Password string
}

// Validate 只做存在性检查，不校验格式
func (c *Credentials) Validate() error {
	if c == nil {
		return ErrCredentialsAbsent
	}
	if c.Username == "" {
		return ErrUsernameMissing
	}
	if c.Password == "" {
		return ErrPasswordMissing
	}
	return nil
}

// formBody 拼接登录表单。网关只认原样拼接的参数，这里刻意不做 URL 编码。
func (c *Credentials) formBody() string {
	return "user=" + c.Username + "&password=" + c.Password
}
