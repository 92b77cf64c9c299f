package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"logmein/config"
	"logmein/internal/gateway"
	"logmein/internal/handler"
	"logmein/internal/notify"
	"logmein/internal/preference"
	"logmein/internal/router"
	"logmein/internal/task"
	"logmein/pkg/container"

	log "logmein/pkg/logger"
)

const passwordEnv = "LOGMEIN_PASSWORD"

var (
	configPath = flag.String("config", "logmein.yaml", "配置文件路径，文件不存在时使用默认配置")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `用法: logmein [-config path] <command> [args]

命令:
  login [-u user] [-p password]  登录网关（密码也可以通过 %s 提供）
  logout                         登出网关
  use <username>                 设置默认用户名
  whoami                         显示默认用户名
  serve                          启动本地 HTTP 接口
`, passwordEnv)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// 1. 加载配置
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(2)
	}

	// 2. 初始化日志
	logConfig := &log.Config{
		Level:    cfg.Log.Level,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	}
	if err := log.Init(logConfig); err != nil {
		fmt.Fprintln(os.Stderr, "初始化日志失败:", err)
		os.Exit(2)
	}

	code := run(cfg, flag.Arg(0), flag.Args()[1:])
	log.Sync()
	os.Exit(code)
}

// loadConfig 配置文件不存在时退回默认配置
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		config.Set(cfg)
		return cfg, nil
	}
	return config.Load(path)
}

func run(cfg *config.Config, command string, args []string) int {
	// 命令行下结果文案直接打印到标准输出，serve 只写日志
	var extra []notify.Notifier
	if command != "serve" {
		extra = append(extra, notify.NewWriter(os.Stdout))
	}
	if err := container.Init(cfg, extra...); err != nil {
		log.Error("初始化容器失败", zap.Error(err))
		return 1
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "login":
		return runLogin(ctx, args)
	case "logout":
		return runLogout(ctx)
	case "use":
		return runUse(ctx, args)
	case "whoami":
		return runWhoami(ctx)
	case "serve":
		return runServe(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "未知命令: %s\n", command)
		usage()
		return 2
	}
}

func runLogin(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "用户名，缺省时使用 use 设置的用户名")
	password := fs.String("p", "", "密码")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}

	var result task.Result
	err := container.Invoke(func(r *task.Runner) {
		if *username == "" {
			result = <-r.LoginSelected(ctx, *password)
			return
		}
		result = <-r.Login(ctx, &gateway.Credentials{Username: *username, Password: *password})
	})
	if err != nil {
		log.Error("获取 Runner 失败", zap.Error(err))
		return 1
	}
	return exitCode(result)
}

func runLogout(ctx context.Context) int {
	var result task.Result
	if err := container.Invoke(func(r *task.Runner) {
		result = <-r.Logout(ctx)
	}); err != nil {
		log.Error("获取 Runner 失败", zap.Error(err))
		return 1
	}
	return exitCode(result)
}

func runUse(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "用法: logmein use <username>")
		return 2
	}
	var setErr error
	if err := container.Invoke(func(s preference.Store) {
		setErr = s.SetCurrentUsername(ctx, args[0])
	}); err != nil {
		log.Error("获取偏好存储失败", zap.Error(err))
		return 1
	}
	if setErr != nil {
		log.Error("保存用户名失败", zap.Error(setErr))
		return 1
	}
	return 0
}

func runWhoami(ctx context.Context) int {
	var (
		username string
		getErr   error
	)
	if err := container.Invoke(func(s preference.Store) {
		username, getErr = s.CurrentUsername(ctx)
	}); err != nil {
		log.Error("获取偏好存储失败", zap.Error(err))
		return 1
	}
	if getErr != nil {
		log.Error("读取用户名失败", zap.Error(getErr))
		return 1
	}
	fmt.Println(username)
	return 0
}

func runServe(ctx context.Context, cfg *config.Config) int {
	if _, err := maxprocs.Set(maxprocs.Logger(log.Sugar.Infof)); err != nil {
		log.Warn("设置 GOMAXPROCS 失败", zap.Error(err))
	}
	gin.SetMode(cfg.Server.Mode)

	var gatewayHandler *handler.GatewayHandler
	if err := container.Invoke(func(h *handler.GatewayHandler) {
		gatewayHandler = h
	}); err != nil {
		log.Error("获取 Handler 失败", zap.Error(err))
		return 1
	}

	r := router.SetupRouter(gatewayHandler, &cfg.Server)
	srv := &http.Server{
		Addr:              cfg.Server.GetHTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP Server 启动成功",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("gateway", cfg.Gateway.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("启动 HTTP Server 失败", zap.Error(err))
		return 1
	case <-ctx.Done():
	}

	log.Info("收到退出信号，开始优雅关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("关闭 HTTP Server 失败", zap.Error(err))
		return 1
	}
	log.Info("HTTP Server 已关闭")
	return 0
}

// exitCode 登录成功、登出成功、已登录返回 0
func exitCode(result task.Result) int {
	if result.Code.OK() {
		return 0
	}
	return 1
}
