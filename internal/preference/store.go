package preference

import "context"

const (
	// KeyCurrentUsername 当前选中用户名的键
	KeyCurrentUsername = "current_username"

	// DefaultCurrentUsername 未设置时的默认值。
	// 空用户名会让登录直接返回 CredentialsMissing。
	DefaultCurrentUsername = ""
)

// Store 持久化的用户偏好，只保存用户名，不保存密码
type Store interface {
	// CurrentUsername 获取当前选中的用户名，未设置时返回默认值
	CurrentUsername(ctx context.Context) (string, error)

	// SetCurrentUsername 保存当前选中的用户名，空字符串表示清除
	SetCurrentUsername(ctx context.Context, username string) error
}
