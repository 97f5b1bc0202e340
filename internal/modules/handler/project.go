package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	svc   service.ProjectService
	stats service.StatsService
	log   *zap.Logger
}

func NewProjectHandler(s service.ProjectService, stats service.StatsService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		svc:   s,
		stats: stats,
		log:   log,
	}
}

type CreateProjectReq struct {
	Name        string   `json:"name" example:"Learn Go"`
	Description string   `json:"description" example:"Evenings and weekends"`
	TargetHours *float64 `json:"target_hours" example:"120"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project with a target number of hours (default 100)
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Failure		400	{object}	serializer.Response
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		TargetHours: req.TargetHours,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: project})
}

type ListProjectsReq struct {
	Status    string `form:"status" example:"active"`
	SortBy    string `form:"sortBy" example:"createdAt"`
	SortOrder string `form:"sortOrder" example:"desc"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the caller's projects, optionally filtered by status
//	@Tags			project
//	@Produce		json
//	@Param			status		query	string	false	"active, completed or abandoned"
//	@Param			sortBy		query	string	false	"createdAt, updatedAt, name, status, targetHours or totalHours"
//	@Param			sortOrder	query	string	false	"asc or desc (default desc)"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Project}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		UserID:    user.ID,
		Status:    req.Status,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: projects})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project")
	if !ok {
		return
	}

	project, err := h.svc.Get(c.Request.Context(), user.ID, projectID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

type UpdateProjectReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	TargetHours *float64 `json:"target_hours"`
	Status      *string  `json:"status" example:"completed"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Update name, description, target or status. Total hours follow the hour entries and cannot be set.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.UpdateProjectReq	true	"UpdateProject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{project_id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project")
	if !ok {
		return
	}

	project, err := h.svc.Update(c.Request.Context(), service.UpdateProjectInput{
		UserID:      user.ID,
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		TargetHours: req.TargetHours,
		Status:      req.Status,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project that has no hour entries
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		400	{object}	serializer.Response
//	@Router			/projects/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user.ID, projectID); err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "Project deleted successfully"})
}

// GetProjectStats godoc
//
//	@Summary		Project statistics
//	@Description	Time tracking totals, hours by month and the most recent entries of a project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ProjectStats}
//	@Router			/projects/{project_id}/stats [get]
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project")
	if !ok {
		return
	}

	stats, err := h.stats.ProjectStats(c.Request.Context(), user.ID, projectID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: stats})
}
