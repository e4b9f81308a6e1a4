package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskbuddy/backend/api/transport"
	"github.com/taskbuddy/backend/domain"
	"github.com/taskbuddy/backend/pkg/httpcontext"
	taskUC "github.com/taskbuddy/backend/usecase/task"
)

// maxDescriptionLen mirrors the limit the editing surface shows to users.
const maxDescriptionLen = 300

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks, optionally narrowed by search/category/due bucket
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	spec := domain.FilterSpec{
		Search:    string(ctx.QueryArgs().Peek("search")),
		Category:  string(ctx.QueryArgs().Peek("category")),
		DueBucket: string(ctx.QueryArgs().Peek("due")),
	}
	tasks = domain.FilterTasks(tasks, spec, time.Now())

	// The status partition is independent of the filter and composes with it.
	if status := string(ctx.QueryArgs().Peek("status")); status != "" {
		partition := tasks[:0]
		for _, t := range tasks {
			if t.Status == status {
				partition = append(partition, t)
			}
		}
		tasks = partition
	}

	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.Title == "" {
		h.respondInvalid(ctx, "title is required")
		return
	}
	if len(req.Description) > maxDescriptionLen {
		h.respondInvalid(ctx, "description too long")
		return
	}
	if req.Category != "" && !domain.ValidCategory(req.Category) {
		h.respondInvalid(ctx, "unknown category")
		return
	}
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		h.respondInvalid(ctx, "unknown status")
		return
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Status:      req.Status,
		UserID:      userID,
		Attachment:  req.Attachment,
	}
	if task.Category == "" {
		task.Category = domain.CategoryPersonal
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Apply a partial update to a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	patch, ok := h.parsePatch(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.UpdateTask(stdCtx, id, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Move several tasks to one status, best effort
// @Tags tasks
// @Router /api/v1/tasks/bulk/status [post]
func (h *TaskHandler) BulkUpdateStatus(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.BulkStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.IDs) == 0 {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if !domain.ValidStatus(req.Status) {
		h.respondInvalid(ctx, "unknown status")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	failed, err := h.uc.BulkUpdateStatus(stdCtx, req.IDs, req.Status)
	if err != nil {
		h.logger.Warn("bulk status update finished with failures",
			zap.Int("failed", len(failed)),
			zap.Error(err))
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"updated": len(req.IDs) - len(failed),
		"failed":  failed,
	})
}

// @Summary Per-status task counts
// @Tags tasks
// @Router /api/v1/tasks/stats [get]
func (h *TaskHandler) Stats(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

func (h *TaskHandler) parsePatch(ctx *fasthttp.RequestCtx) (domain.TaskPatch, bool) {
	body := ctx.PostBody()

	var req transport.TaskPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return domain.TaskPatch{}, false
	}
	if req.Title != nil && *req.Title == "" {
		h.respondInvalid(ctx, "title is required")
		return domain.TaskPatch{}, false
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		h.respondInvalid(ctx, "description too long")
		return domain.TaskPatch{}, false
	}
	if req.Category != nil && !domain.ValidCategory(*req.Category) {
		h.respondInvalid(ctx, "unknown category")
		return domain.TaskPatch{}, false
	}
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		h.respondInvalid(ctx, "unknown status")
		return domain.TaskPatch{}, false
	}

	return domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Status:      req.Status,
		Attachment:  req.Attachment,
		Fields:      transport.TopLevelKeys(body),
	}, true
}
