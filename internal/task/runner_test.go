package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"logmein/internal/gateway"
	"logmein/internal/notify"
	"logmein/internal/status"
	"logmein/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(&logger.Config{Level: "fatal", Output: "stdout"}); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	m.Run()
}

// ============================================================================
// Mock 定义
// ============================================================================

// MockGateway 模拟网关客户端
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds *gateway.Credentials) status.Code {
	args := m.Called(ctx, creds)
	return args.Get(0).(status.Code)
}

func (m *MockGateway) Logout(ctx context.Context) status.Code {
	args := m.Called(ctx)
	return args.Get(0).(status.Code)
}

// MockStore 模拟偏好存储
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CurrentUsername(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SetCurrentUsername(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

// recorder 记录收到的通知
type recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.items...)
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "通道提前关闭")
		_, more := <-ch
		assert.False(t, more, "通道应只收到一个结果")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("等待结果超时")
		return Result{}
	}
}

// ============================================================================
// 测试
// ============================================================================

func TestRunner_Login(t *testing.T) {
	ctx := context.Background()
	creds := &gateway.Credentials{Username: "alice", Password: "secret"}

	gw := new(MockGateway)
	gw.On("Login", mock.Anything, creds).Return(status.LoginSuccess)
	rec := &recorder{}

	res := receive(t, NewRunner(gw, nil, rec).Login(ctx, creds))

	assert.Equal(t, OpLogin, res.Op)
	assert.Equal(t, status.LoginSuccess, res.Code)
	assert.Equal(t, "Login Successful", res.Message)
	assert.NotEmpty(t, res.ID)

	items := rec.all()
	require.Len(t, items, 1)
	assert.Equal(t, res.ID, items[0].TaskID)
	assert.Equal(t, "Login Successful", items[0].Message)
	gw.AssertExpectations(t)
}

func TestRunner_LoginMissingCredentials(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("Login", mock.Anything, (*gateway.Credentials)(nil)).Return(status.CredentialsMissing)

	res := receive(t, NewRunner(gw, nil, nil).Login(ctx, nil))

	assert.Equal(t, status.CredentialsMissing, res.Code)
	assert.Equal(t, "Either username or password in empty", res.Message)
}

func TestRunner_Logout(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("Logout", mock.Anything).Return(status.NotLoggedIn)

	res := receive(t, NewRunner(gw, nil, nil).Logout(ctx))

	assert.Equal(t, OpLogout, res.Op)
	assert.Equal(t, status.NotLoggedIn, res.Code)
	assert.Equal(t, "You're not logged in", res.Message)
}

func TestRunner_UnclassifiedIsNotSuccess(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("Logout", mock.Anything).Return(status.None)

	res := receive(t, NewRunner(gw, nil, nil).Logout(ctx))

	assert.Equal(t, status.None, res.Code)
	assert.Equal(t, "Unable to perform the operation", res.Message)
}

func TestRunner_LoginSelected(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("CurrentUsername", ctx).Return("bob", nil)

	gw := new(MockGateway)
	gw.On("Login", mock.Anything, &gateway.Credentials{Username: "bob", Password: "pw"}).Return(status.MultipleSessions)

	res := receive(t, NewRunner(gw, store, nil).LoginSelected(ctx, "pw"))

	assert.Equal(t, status.MultipleSessions, res.Code)
	store.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestRunner_LoginSelectedStoreError(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("CurrentUsername", ctx).Return("", errors.New("redis down"))

	gw := new(MockGateway)
	gw.On("Login", mock.Anything, &gateway.Credentials{Username: "", Password: "pw"}).Return(status.CredentialsMissing)

	res := receive(t, NewRunner(gw, store, nil).LoginSelected(ctx, "pw"))
	assert.Equal(t, status.CredentialsMissing, res.Code)
}

func TestRunner_ReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	gw := &blockingGateway{release: release, entered: make(chan struct{}, 4)}

	start := time.Now()
	ch := NewRunner(gw, nil, nil).Logout(context.Background())
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	<-gw.entered
	close(release)
	assert.Equal(t, status.LogoutSuccess, receive(t, ch).Code)
}

func TestRunner_DeduplicatesConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	gw := &blockingGateway{release: release, entered: make(chan struct{}, 4)}
	rec := &recorder{}
	runner := NewRunner(gw, nil, rec)
	ctx := context.Background()

	first := runner.Logout(ctx)
	<-gw.entered
	second := runner.Logout(ctx)
	// 等待第二次调用进入 singleflight
	time.Sleep(100 * time.Millisecond)
	close(release)

	a, b := receive(t, first), receive(t, second)
	assert.Equal(t, status.LogoutSuccess, a.Code)
	assert.Equal(t, status.LogoutSuccess, b.Code)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int32(1), gw.calls.Load())
	assert.Len(t, rec.all(), 2)
}

func TestRunner_CancelledCallerDoesNotAffectOthers(t *testing.T) {
	release := make(chan struct{})
	gw := &blockingGateway{release: release, entered: make(chan struct{}, 4)}
	runner := NewRunner(gw, nil, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	first := runner.Logout(ctxA)
	<-gw.entered
	second := runner.Logout(context.Background())
	// 等待第二次调用进入 singleflight
	time.Sleep(100 * time.Millisecond)

	cancelA()
	assert.Equal(t, status.ConnectionError, receive(t, first).Code)

	close(release)
	assert.Equal(t, status.LogoutSuccess, receive(t, second).Code)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	gw := &countingGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := receive(t, NewRunner(gw, nil, nil).Logout(ctx))

	assert.Equal(t, status.ConnectionError, res.Code)
	assert.Equal(t, int32(0), gw.calls.Load())
}

func TestRunner_DifferentCredentialsNotMerged(t *testing.T) {
	gw := &countingGateway{}
	runner := NewRunner(gw, nil, nil)
	ctx := context.Background()

	a := runner.Login(ctx, &gateway.Credentials{Username: "alice", Password: "1"})
	b := runner.Login(ctx, &gateway.Credentials{Username: "bob", Password: "2"})
	receive(t, a)
	receive(t, b)

	assert.Equal(t, int32(2), gw.calls.Load())
}

func TestRunner_PanicBecomesUnknown(t *testing.T) {
	rec := &recorder{}
	res := receive(t, NewRunner(panicGateway{}, nil, rec).Logout(context.Background()))

	assert.Equal(t, status.None, res.Code)
	assert.Len(t, rec.all(), 1)

	res = receive(t, NewRunner(panicGateway{}, nil, nil).Login(context.Background(), &gateway.Credentials{Username: "a", Password: "b"}))
	assert.Equal(t, status.None, res.Code)
}

// ============================================================================
// 测试用网关
// ============================================================================

type blockingGateway struct {
	release chan struct{}
	entered chan struct{}
	calls   atomic.Int32
}

func (g *blockingGateway) Login(ctx context.Context, _ *gateway.Credentials) status.Code {
	return g.Logout(ctx)
}

func (g *blockingGateway) Logout(ctx context.Context) status.Code {
	g.calls.Add(1)
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return status.LogoutSuccess
	case <-ctx.Done():
		return status.ConnectionError
	}
}

type countingGateway struct {
	calls atomic.Int32
}

func (g *countingGateway) Login(context.Context, *gateway.Credentials) status.Code {
	g.calls.Add(1)
	return status.AuthenticationFailed
}

func (g *countingGateway) Logout(context.Context) status.Code {
	g.calls.Add(1)
	return status.LogoutSuccess
}

type panicGateway struct{}

func (panicGateway) Login(context.Context, *gateway.Credentials) status.Code { panic("boom") }
func (panicGateway) Logout(context.Context) status.Code { panic("boom") }
