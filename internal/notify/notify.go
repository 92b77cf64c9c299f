package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"logmein/internal/status"
	log "logmein/pkg/logger"
)

// Notification 一次操作完成后的提示
type Notification struct {
	TaskID  string
	Op      string
	Code    status.Code
	Message string
}

// Notifier 宿主环境提供的提示通道
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func 把普通函数适配为 Notifier
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Writer 把提示文案逐行写到 io.Writer（命令行下的“toast”）
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Notify(_ context.Context, n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.w, n.Message)
}

// Log 把提示写入结构化日志
type Log struct{}

func (Log) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("task_id", n.TaskID),
		zap.String("op", n.Op),
		zap.String("status", n.Code.String()),
		zap.String("message", n.Message),
	}
	if n.Code.OK() {
		log.Info("操作完成", fields...)
		return
	}
	log.Warn("操作未成功", fields...)
}

// Multi 依次通知多个 Notifier
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Nop 丢弃所有提示
var Nop Notifier = Func(func(context.Context, Notification) {})
