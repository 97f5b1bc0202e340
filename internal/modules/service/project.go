package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"go.uber.org/zap"
)

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error)
	List(ctx context.Context, in ListProjectsInput) ([]*model.Project, error)
	Update(ctx context.Context, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error
}

type projectService struct {
	r   repo.ProjectRepo
	log *zap.Logger
	now func() time.Time
}

func NewProjectService(r repo.ProjectRepo, log *zap.Logger) ProjectService {
	return &projectService{r: r, log: log, now: time.Now}
}

// projectSortColumns maps accepted sortBy values to columns.
var projectSortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"updatedAt":    "updated_at",
	"updated_at":   "updated_at",
	"name":         "name",
	"status":       "status",
	"targetHours":  "target_hours",
	"target_hours": "target_hours",
	"totalHours":   "total_hours",
	"total_hours":  "total_hours",
}

func checkName(name string, fe *fieldErrors) {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		fe.add("Project name is required")
	case n > 100:
		fe.add("Project name cannot exceed 100 characters")
	}
}

func checkProjectDescription(d string, fe *fieldErrors) {
	if utf8.RuneCountInString(d) > 500 {
		fe.add("Description cannot exceed 500 characters")
	}
}

func checkTarget(t float64, fe *fieldErrors) {
	if t < model.MinTargetHours || t > model.MaxTargetHours {
		fe.add(fmt.Sprintf("Target hours must be between %d and %d", model.MinTargetHours, model.MaxTargetHours))
	}
}

type CreateProjectInput struct {
	UserID      uuid.UUID
	Name        string
	Description string
	TargetHours *float64
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	p := &model.Project{
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		TargetHours: model.DefaultTargetHours,
		Status:      model.ProjectActive,
	}
	if in.TargetHours != nil {
		p.TargetHours = *in.TargetHours
	}

	var fe fieldErrors
	checkName(p.Name, &fe)
	checkProjectDescription(p.Description, &fe)
	checkTarget(p.TargetHours, &fe)
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Sugar().Infow("project created", "user_id", in.UserID, "project_id", p.ID)
	return p, nil
}

func (s *projectService) Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.r.Get(ctx, userID, projectID)
	if err != nil {
		return nil, mapNotFound(err, "project")
	}
	return p, nil
}

type ListProjectsInput struct {
	UserID    uuid.UUID
	Status    string
	SortBy    string
	SortOrder string
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) ([]*model.Project, error) {
	f := repo.ProjectFilter{UserID: in.UserID, Desc: true}

	var fe fieldErrors
	if in.Status != "" {
		f.Status = model.ProjectStatus(in.Status)
		if !f.Status.Valid() {
			fe.add("Status must be one of: active, completed, abandoned")
		}
	}
	if in.SortBy != "" {
		col, ok := projectSortColumns[in.SortBy]
		if !ok {
			fe.add("Unsupported sortBy " + in.SortBy)
		}
		f.SortBy = col
	}
	switch strings.ToLower(in.SortOrder) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		fe.add("sortOrder must be asc or desc")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	return s.r.List(ctx, f)
}

type UpdateProjectInput struct {
	UserID      uuid.UUID
	ProjectID   uuid.UUID
	Name        *string
	Description *string
	TargetHours *float64
	Status      *string
}

func (s *projectService) Update(ctx context.Context, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.r.Get(ctx, in.UserID, in.ProjectID)
	if err != nil {
		return nil, mapNotFound(err, "project")
	}

	var fe fieldErrors
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		checkName(p.Name, &fe)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
		checkProjectDescription(p.Description, &fe)
	}
	if in.TargetHours != nil {
		p.TargetHours = *in.TargetHours
		checkTarget(p.TargetHours, &fe)
	}
	if in.Status != nil {
		st := model.ProjectStatus(*in.Status)
		if st.Valid() {
			p.SetStatus(st, s.now().UTC())
		} else {
			fe.add("Status must be one of: active, completed, abandoned")
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.r.Update(ctx, p); err != nil {
		return nil, mapNotFound(err, "project")
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	n, err := s.r.DeleteIfUnused(ctx, userID, projectID)
	if err != nil {
		return mapNotFound(err, "project")
	}
	if n > 0 {
		msg := fmt.Sprintf("Cannot delete project. It has %d hour entries. "+
			"Delete hour entries first or archive the project instead.", n)
		return &Error{Kind: ErrDependentRecords, Msg: msg}
	}
	s.log.Sugar().Infow("project deleted", "user_id", userID, "project_id", projectID)
	return nil
}
