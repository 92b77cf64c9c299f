package container

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"logmein/config"
	"logmein/internal/gateway"
	"logmein/internal/handler"
	"logmein/internal/notify"
	"logmein/internal/preference"
	"logmein/internal/task"
	"logmein/pkg/redis"

	log "logmein/pkg/logger"
)

// Container 全局依赖注入容器
var Container *dig.Container

// closers 容器创建的需要在退出时释放的资源
var closers []io.Closer

// Init 初始化依赖注入容器。notifiers 会追加在日志提示之后。
func Init(cfg *config.Config, notifiers ...notify.Notifier) error {
	Container = dig.New()
	closers = nil

	if err := Container.Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}
	if err := Container.Provide(func() notify.Notifier {
		return append(notify.Multi{notify.Log{}}, notifiers...)
	}); err != nil {
		return err
	}

	// 注册所有依赖
	return registerProviders()
}

// registerProviders 注册所有提供者
func registerProviders() error {
	providers := []interface{}{
		newGatewayClient,
		newPreferenceStore,
		newRunner,
		handler.NewGatewayHandler,
	}
	for _, p := range providers {
		if err := Container.Provide(p); err != nil {
			return err
		}
	}
	return nil
}

func newGatewayClient(cfg *config.Config) (*gateway.Client, error) {
	return gateway.New(cfg.Gateway.BaseURL, gateway.Options{
		Timeout:   cfg.Gateway.GetTimeout(),
		UserAgent: cfg.Gateway.UserAgent,
	})
}

// newPreferenceStore 按配置选择偏好存储，redis 后端只在这里建立连接
func newPreferenceStore(cfg *config.Config) (preference.Store, error) {
	fallback := cfg.Preference.DefaultUsername
	if cfg.Preference.Backend != "redis" {
		return preference.NewFileStore(cfg.Preference.FilePath, fallback), nil
	}

	client, err := redis.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	closers = append(closers, client)
	log.Info("偏好存储使用 Redis", zap.String("addr", cfg.Redis.GetAddr()))
	return preference.NewRedisStore(client, fallback), nil
}

func newRunner(client *gateway.Client, store preference.Store, notifier notify.Notifier) *task.Runner {
	return task.NewRunner(client, store, notifier)
}

// Invoke 调用函数，自动注入依赖
func Invoke(function interface{}) error {
	return Container.Invoke(function)
}

// Close 释放容器创建的连接
func Close() {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn("释放资源失败", zap.Error(err))
		}
	}
	closers = nil
}
