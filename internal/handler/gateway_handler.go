package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"logmein/internal/gateway"
	"logmein/internal/preference"
	"logmein/internal/task"
	"logmein/pkg/response"

	log "logmein/pkg/logger"
)

// ============================================================================
// Handler 结构体
// ============================================================================

type GatewayHandler struct {
	runner  *task.Runner
	store   preference.Store
	baseURL string
}

// NewGatewayHandler 创建 GatewayHandler 实例
func NewGatewayHandler(runner *task.Runner, store preference.Store, client *gateway.Client) *GatewayHandler {
	return &GatewayHandler{
		runner:  runner,
		store:   store,
		baseURL: client.BaseURL(),
	}
}

// ============================================================================
// 请求结构体
// ============================================================================

// LoginRequest 用户名为空时使用偏好中选中的用户名
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

// ============================================================================
// Handler 方法
// ============================================================================

// Login 登录网关
func (h *GatewayHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "")
		return
	}

	ctx := c.Request.Context()
	var results <-chan task.Result
	if req.Username == "" {
		results = h.runner.LoginSelected(ctx, req.Password)
	} else {
		results = h.runner.Login(ctx, &gateway.Credentials{Username: req.Username, Password: req.Password})
	}

	result := <-results
	response.Outcome(c, result.ID, result.Code)
}

// Logout 登出网关
func (h *GatewayHandler) Logout(c *gin.Context) {
	result := <-h.runner.Logout(c.Request.Context())
	response.Outcome(c, result.ID, result.Code)
}

// GetUsername 获取当前选中的用户名
func (h *GatewayHandler) GetUsername(c *gin.Context) {
	username, err := h.store.CurrentUsername(c.Request.Context())
	if err != nil {
		log.Error("读取当前用户名失败", zap.Error(err))
		response.Error(c, response.CodePreferenceError, "")
		return
	}
	response.Success(c, gin.H{"username": username})
}

// SetUsername 设置当前选中的用户名，空用户名表示清除
func (h *GatewayHandler) SetUsername(c *gin.Context) {
	var req UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "")
		return
	}

	if err := h.store.SetCurrentUsername(c.Request.Context(), req.Username); err != nil {
		log.Error("保存当前用户名失败", zap.Error(err), zap.String("username", req.Username))
		response.Error(c, response.CodePreferenceError, "")
		return
	}
	log.Info("当前用户名已更新", zap.String("username", req.Username))
	response.Success(c, gin.H{"username": req.Username})
}

// Health 健康检查
func (h *GatewayHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"gateway": h.baseURL})
}
