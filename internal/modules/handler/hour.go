package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

type HourHandler struct {
	svc   service.HourService
	stats service.StatsService
	log   *zap.Logger
}

func NewHourHandler(s service.HourService, stats service.StatsService, log *zap.Logger) *HourHandler {
	return &HourHandler{
		svc:   s,
		stats: stats,
		log:   log,
	}
}

type LogHoursReq struct {
	Hours       float64 `json:"hours" example:"2.5"`
	Description string  `json:"description" example:"Read the concurrency chapter"`
	Date        string  `json:"date" example:"2024-03-15"`
}

// LogHours godoc
//
//	@Summary		Log hours
//	@Description	Log hours against a project. The project total moves in the same transaction and a user can log at most 24 hours per day.
//	@Tags			hours
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string				true	"Project ID"	format(uuid)
//	@Param			payload		body	handler.LogHoursReq	true	"LogHours payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.LogHoursOutput}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{project_id}/hours [post]
func (h *HourHandler) LogHours(c *gin.Context) {
	req := LogHoursReq{}
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

	out, err := h.svc.Log(c.Request.Context(), service.LogHoursInput{
		UserID:      user.ID,
		ProjectID:   projectID,
		Hours:       req.Hours,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: out, Msg: "Hours logged successfully"})
}

type ListHoursReq struct {
	StartDate string `form:"start_date" example:"2024-03-01"`
	EndDate   string `form:"end_date" example:"2024-03-31"`
	ProjectID string `form:"project_id" format:"uuid"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=1000" example:"100"`
}

func (r ListHoursReq) input(userID uuid.UUID) (service.ListHourEntriesInput, error) {
	in := service.ListHourEntriesInput{
		UserID:    userID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Limit:     r.Limit,
	}
	if r.ProjectID != "" {
		id, err := uuid.Parse(r.ProjectID)
		if err != nil {
			return in, err
		}
		in.ProjectID = &id
	}
	return in, nil
}

// GetProjectHours godoc
//
//	@Summary		List project hours
//	@Description	Hour entries of one project, newest first (default limit 50)
//	@Tags			hours
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	format(uuid)
//	@Param			start_date	query	string	false	"First day, YYYY-MM-DD"
//	@Param			end_date	query	string	false	"Last day, YYYY-MM-DD"
//	@Param			limit		query	integer	false	"Max entries, default 50"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.HourEntry}
//	@Router			/projects/{project_id}/hours [get]
func (h *HourHandler) GetProjectHours(c *gin.Context) {
	req := ListHoursReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
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
	req.ProjectID = ""
	in, _ := req.input(user.ID)
	in.ProjectID = &projectID

	entries, err := h.svc.ListByProject(c.Request.Context(), in)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entries})
}

// ListHours godoc
//
//	@Summary		List hour entries
//	@Description	The caller's hour entries, newest first (default limit 100)
//	@Tags			hours
//	@Produce		json
//	@Param			start_date	query	string	false	"First day, YYYY-MM-DD"
//	@Param			end_date	query	string	false	"Last day, YYYY-MM-DD"
//	@Param			project_id	query	string	false	"Project ID"	format(uuid)
//	@Param			limit		query	integer	false	"Max entries, default 100"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.HourEntry}
//	@Router			/hours [get]
func (h *HourHandler) ListHours(c *gin.Context) {
	req := ListHoursReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, err := req.input(user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	entries, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entries})
}

// GetHourEntry godoc
//
//	@Summary		Get hour entry
//	@Tags			hours
//	@Produce		json
//	@Param			entry_id	path	string	true	"Hour entry ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.HourEntry}
//	@Failure		404	{object}	serializer.Response
//	@Router			/hours/{entry_id} [get]
func (h *HourHandler) GetHourEntry(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := uuidParam(c, "entry_id", "hour entry")
	if !ok {
		return
	}

	entry, err := h.svc.Get(c.Request.Context(), user.ID, entryID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entry})
}

type UpdateHourEntryReq struct {
	Hours       *float64 `json:"hours" example:"3"`
	Description *string  `json:"description"`
	Date        *string  `json:"date" example:"2024-03-15"`
}

// UpdateHourEntry godoc
//
//	@Summary		Update hour entry
//	@Description	Change hours, description or date. A change of hours moves the project total by the difference.
//	@Tags			hours
//	@Accept			json
//	@Produce		json
//	@Param			entry_id	path	string						true	"Hour entry ID"	format(uuid)
//	@Param			payload		body	handler.UpdateHourEntryReq	true	"UpdateHourEntry payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.HourEntry}
//	@Failure		400	{object}	serializer.Response
//	@Router			/hours/{entry_id} [put]
func (h *HourHandler) UpdateHourEntry(c *gin.Context) {
	req := UpdateHourEntryReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := uuidParam(c, "entry_id", "hour entry")
	if !ok {
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), service.UpdateHourEntryInput{
		UserID:      user.ID,
		EntryID:     entryID,
		Hours:       req.Hours,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entry, Msg: "Hour entry updated successfully"})
}

// DeleteHourEntry godoc
//
//	@Summary		Delete hour entry
//	@Description	Delete an entry and take its hours off the project total
//	@Tags			hours
//	@Produce		json
//	@Param			entry_id	path	string	true	"Hour entry ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.HourEntry}
//	@Failure		404	{object}	serializer.Response
//	@Router			/hours/{entry_id} [delete]
func (h *HourHandler) DeleteHourEntry(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := uuidParam(c, "entry_id", "hour entry")
	if !ok {
		return
	}

	entry, err := h.svc.Delete(c.Request.Context(), user.ID, entryID)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entry, Msg: "Hour entry deleted successfully"})
}

type HourStatsReq struct {
	Period string `form:"period,default=all" example:"month"`
}

// GetHourStats godoc
//
//	@Summary		Hour statistics
//	@Description	Per-project and overall totals for the period
//	@Tags			hours
//	@Produce		json
//	@Param			period	query	string	false	"all, week, month or year (default all)"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.HourStats}
//	@Router			/hours/stats [get]
func (h *HourHandler) GetHourStats(c *gin.Context) {
	req := HourStatsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.stats.HourStats(c.Request.Context(), user.ID, service.Period(req.Period))
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: stats})
}

// ExportHours godoc
//
//	@Summary		Export hour entries
//	@Description	Write the matching entries as JSON to object storage and return a pre-signed download URL
//	@Tags			hours
//	@Produce		json
//	@Param			start_date	query	string	false	"First day, YYYY-MM-DD"
//	@Param			end_date	query	string	false	"Last day, YYYY-MM-DD"
//	@Param			project_id	query	string	false	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.ExportHoursOutput}
//	@Failure		503	{object}	serializer.Response
//	@Router			/hours/export [post]
func (h *HourHandler) ExportHours(c *gin.Context) {
	req := ListHoursReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, err := req.input(user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return
	}

	out, err := h.svc.Export(c.Request.Context(), in)
	if err != nil {
		renderErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}
