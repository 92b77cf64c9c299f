package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"logmein/internal/gateway"
	"logmein/internal/notify"
	"logmein/internal/preference"
	"logmein/internal/status"
	log "logmein/pkg/logger"
)

const (
	OpLogin  = "login"
	OpLogout = "logout"
)

// Gateway 执行网关交互的一方，*gateway.Client 实现了它
type Gateway interface {
	Login(ctx context.Context, creds *gateway.Credentials) status.Code
	Logout(ctx context.Context) status.Code
}

// Result 一次后台操作的结果
type Result struct {
	ID      string
	Op      string
	Code    status.Code
	Message string
}

// Runner 在独立 goroutine 中执行网关操作，完成后把结果文案交给 Notifier。
// 同一操作的并发调用共用一次网关交互。
type Runner struct {
	gateway  Gateway
	store    preference.Store
	notifier notify.Notifier
	group    singleflight.Group
}

// NewRunner 创建 Runner，store 和 notifier 可以为 nil
func NewRunner(gw Gateway, store preference.Store, notifier notify.Notifier) *Runner {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &Runner{gateway: gw, store: store, notifier: notifier}
}

// Login 在后台登录，返回的通道恰好收到一个结果后关闭
func (r *Runner) Login(ctx context.Context, creds *gateway.Credentials) <-chan Result {
	return r.spawn(ctx, OpLogin, func(ctx context.Context) status.Code {
		return r.login(ctx, creds)
	})
}

// LoginSelected 使用偏好中选中的用户名登录
func (r *Runner) LoginSelected(ctx context.Context, password string) <-chan Result {
	return r.spawn(ctx, OpLogin, func(ctx context.Context) status.Code {
		creds := &gateway.Credentials{Username: r.SelectedUsername(ctx), Password: password}
		return r.login(ctx, creds)
	})
}

// Logout 在后台登出
func (r *Runner) Logout(ctx context.Context) <-chan Result {
	return r.spawn(ctx, OpLogout, func(ctx context.Context) status.Code {
		return r.shared(ctx, OpLogout, r.gateway.Logout)
	})
}

// SelectedUsername 读取偏好中的用户名，读取失败时返回默认值
func (r *Runner) SelectedUsername(ctx context.Context) string {
	if r.store == nil {
		return preference.DefaultCurrentUsername
	}
	username, err := r.store.CurrentUsername(ctx)
	if err != nil {
		log.Warn("读取当前用户名失败，使用默认值", zap.Error(err))
		return preference.DefaultCurrentUsername
	}
	return username
}

func (r *Runner) login(ctx context.Context, creds *gateway.Credentials) status.Code {
	return r.shared(ctx, loginKey(creds), func(ctx context.Context) status.Code {
		return r.gateway.Login(ctx, creds)
	})
}

// shared 让同一 key 的并发调用共用一次网关交互。
// 交互本身不随任何调用方取消，只受网关客户端自身超时约束；
// 调用方的 ctx 结束时只有该调用方返回 status.ConnectionError。
func (r *Runner) shared(ctx context.Context, key string, fn func(context.Context) status.Code) status.Code {
	if ctx.Err() != nil {
		return status.ConnectionError
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (v interface{}, err error) {
		// DoChan 会在新的 goroutine 中重新抛出 panic，这里先收住
		defer func() {
			if p := recover(); p != nil {
				log.Error("网关交互panic", zap.String("op", opOf(key)), zap.String("panic", fmt.Sprint(p)))
				v = status.None
			}
		}()
		return fn(flightCtx), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("复用进行中的网关请求", zap.String("op", opOf(key)))
		}
		return res.Val.(status.Code)
	case <-ctx.Done():
		log.Warn("调用方已取消，不再等待网关响应", zap.String("op", opOf(key)), zap.Error(ctx.Err()))
		return status.ConnectionError
	}
}

// opOf 从 singleflight key 中取出操作名，避免把凭据写进日志
func opOf(key string) string {
	if i := strings.IndexByte(key, 0); i >= 0 {
		return key[:i]
	}
	return key
}

// loginKey 相同凭据的并发登录才合并，键只保存在内存中
func loginKey(creds *gateway.Credentials) string {
	if creds == nil {
		return OpLogin
	}
	return OpLogin + "\x00" + creds.Username + "\x00" + creds.Password
}

func (r *Runner) spawn(ctx context.Context, op string, fn func(context.Context) status.Code) <-chan Result {
	id := uuid.NewString()
	out := make(chan Result, 1)

	go func() {
		defer close(out)
		logger := log.With(zap.String("task_id", id), zap.String("op", op))
		logger.Debug("任务开始")

		code := r.call(ctx, logger, fn)
		result := Result{ID: id, Op: op, Code: code, Message: status.Describe(code)}
		logger.Debug("任务结束", zap.String("status", code.String()))

		r.notifier.Notify(ctx, notify.Notification{
			TaskID:  result.ID,
			Op:      result.Op,
			Code:    result.Code,
			Message: result.Message,
		})
		out <- result
	}()
	return out
}

// call 执行 fn，panic 时记录日志并返回 status.None
func (r *Runner) call(ctx context.Context, logger *zap.Logger, fn func(context.Context) status.Code) (code status.Code) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("任务panic", zap.String("panic", fmt.Sprint(p)))
			code = status.None
		}
	}()
	return fn(ctx)
}
