package tasks

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/taskforge/internal/apperror"
	"github.com/yourusername/taskforge/internal/requestctx"
	"github.com/yourusername/taskforge/internal/response"
	"github.com/yourusername/taskforge/internal/storage"
)

// TaskService はハンドラーが利用するタスク操作です。
type TaskService interface {
	Create(ctx context.Context, userID string, in CreateInput) (*storage.Task, error)
	List(ctx context.Context, userID string) ([]storage.Task, error)
	Get(ctx context.Context, taskID, userID string) (*storage.Task, error)
	Update(ctx context.Context, taskID, userID string, in UpdateInput) (*storage.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
}

// Handler は /tasks のハンドラーをまとめた構造体です。
type Handler struct {
	svc TaskService
}

// NewHandler はハンドラーを作成します。
func NewHandler(svc TaskService) *Handler {
	return &Handler{svc: svc}
}

// Register は認証済みのルートグループにタスクのルートを登録します。
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updateRequest struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	IsCompleted *bool          `json:"isCompleted"`
	Completed   *bool          `json:"completed"`
}

// Create は POST /tasks のハンドラーです。
func (h *Handler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	task, err := h.svc.Create(c.Request.Context(), userID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, task, "Task created successfully")
}

// List は GET /tasks のハンドラーです。
func (h *Handler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, list, "Tasks retrieved successfully")
}

// Get は GET /tasks/:id のハンドラーです。
func (h *Handler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, task, "Task retrieved successfully")
}

// Update は PUT /tasks/:id のハンドラーです。
func (h *Handler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	task, err := h.svc.Update(c.Request.Context(), c.Param("id"), userID, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Completed:   req.Completed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, task, "Task updated successfully")
}

// Delete は DELETE /tasks/:id のハンドラーです。
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "Task deleted successfully")
}

// currentUser は認証ミドルウェアが格納したユーザーIDを取り出します。
func currentUser(c *gin.Context) (string, bool) {
	userID := requestctx.UserIDFromContext(c.Request.Context())
	if userID == "" {
		response.Error(c, apperror.New(apperror.KindUnauthorized, apperror.MsgUnauthorized))
		return "", false
	}
	return userID, true
}
