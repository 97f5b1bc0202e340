package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

type TaskHandler struct {
	svc service.TaskService
	log *zap.Logger
}

func NewTaskHandler(s service.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: s, log: log}
}

type TaskReq struct {
	Title       *string `json:"title" example:"Write the report"`
	Description *string `json:"description"`
	Status      *string `json:"status" example:"todo"`
	Priority    *string `json:"priority" example:"medium"`
	DueDate     *string `json:"due_date" example:"2024-04-01"`
}

func (r TaskReq) input(c *gin.Context) (service.TaskInput, bool) {
	user, ok := currentUser(c)
	if !ok {
		return service.TaskInput{}, false
	}
	return service.TaskInput{
		UserID:      user.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}, true
}

// CreateTask godoc
//
//	@Summary		Create task
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.TaskReq	true	"CreateTask payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Task}
//	@Failure		400	{object}	serializer.Response
//	@Router			/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	req := TaskReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	task, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: task})
}

type ListTasksReq struct {
	Status   string `form:"status" example:"todo"`
	Priority string `form:"priority" example:"high"`
	SortBy   string `form:"sortBy" example:"createdAt"`
	Order    string `form:"order" example:"desc"`
}

// ListTasks godoc
//
//	@Summary		List tasks
//	@Tags			task
//	@Produce		json
//	@Param			status		query	string	false	"todo, in-progress or completed"
//	@Param			priority	query	string	false	"low, medium or high"
//	@Param			sortBy		query	string	false	"createdAt, updatedAt, title, status, priority or dueDate"
//	@Param			order		query	string	false	"asc or desc (default desc)"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Task}
//	@Router			/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	req := ListTasksReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.svc.List(c.Request.Context(), service.ListTasksInput{
		UserID:    user.ID,
		Status:    req.Status,
		Priority:  req.Priority,
		SortBy:    req.SortBy,
		SortOrder: req.Order,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: tasks})
}

// GetTask godoc
//
//	@Summary		Get task
//	@Tags			task
//	@Produce		json
//	@Param			task_id	path	string	true	"Task ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Task}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tasks/{task_id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), user.ID, taskID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

// UpdateTask godoc
//
//	@Summary		Update task
//	@Description	Partial update. Moving to completed stamps completed_at, leaving it clears the stamp.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			task_id	path	string			true	"Task ID"	format(uuid)
//	@Param			payload	body	handler.TaskReq	true	"UpdateTask payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Task}
//	@Router			/tasks/{task_id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	req := TaskReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	task, err := h.svc.Update(c.Request.Context(), taskID, in)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

// DeleteTask godoc
//
//	@Summary		Delete task
//	@Tags			task
//	@Produce		json
//	@Param			task_id	path	string	true	"Task ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/tasks/{task_id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "Task deleted successfully"})
}

// GetTaskStats godoc
//
//	@Summary		Task statistics
//	@Description	Count of the caller's tasks per status
//	@Tags			task
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.TaskStats}
//	@Router			/tasks/stats [get]
func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), user.ID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: stats})
}
