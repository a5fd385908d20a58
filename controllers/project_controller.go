package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/middleware"
	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
	"teamcal/utils"
	"teamcal/workflow"
)

type ProjectController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	projects *store.ProjectStore
	flow     *workflow.Engine
}

func NewProjectController(db *gorm.DB, logger *logrus.Entry) *ProjectController {
	return &ProjectController{
		DB:       db,
		Logger:   logger,
		projects: store.NewProjectStore(db),
		flow:     workflow.New(db),
	}
}

type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Budget      *int64  `json:"budget" validate:"omitempty,min=0"`
	ClientName  *string `json:"clientName" validate:"omitempty,max=200"`
	MemberIDs   []uint  `json:"memberIds"`
}

// UpdateProjectRequest is sparse. An empty date string clears the date and
// a memberIds list, even an empty one, replaces the members.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Budget      *int64  `json:"budget" validate:"omitempty,min=0"`
	ClientName  *string `json:"clientName" validate:"omitempty,max=200"`
	MemberIDs   *[]uint `json:"memberIds"`
}

type dateInput struct {
	value time.Time
	clear bool
}

// parseProjectDate returns the parsed date and whether the field asks for
// the stored date to be cleared.
func parseProjectDate(field string, value *string) (*dateInput, error) {
	if value == nil {
		return nil, nil
	}
	if *value == "" {
		return &dateInput{clear: true}, nil
	}
	t, err := parseTime(field, *value)
	if err != nil {
		return nil, err
	}
	return &dateInput{value: t}, nil
}

func (pc *ProjectController) ListProjects(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)

	var filter store.ProjectFilter
	if !p.SeesAll() {
		filter.VisibleToUserID = &p.ID
	}

	projects, err := pc.projects.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to fetch projects")
	}
	return c.JSON(policy.FilterProjects(p, projects))
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	id, err := paramID(c, "project")
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to fetch project")
	}

	project, err := pc.projects.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to fetch project")
	}
	if !policy.CanAccess(middleware.CurrentPrincipal(c), policy.ActionRead, project) {
		return respondError(c, pc.Logger, forbidden(), "Failed to fetch project")
	}
	return c.JSON(project)
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	if !policy.CanAccess(p, policy.ActionCreate, (*models.Project)(nil)) {
		return respondError(c, pc.Logger, forbidden(), "Failed to create project")
	}

	var req CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, pc.Logger, err, "Failed to create project")
	}

	in := store.NewProject{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.Status(req.Status),
		Priority:    models.Priority(req.Priority),
		Budget:      req.Budget,
		ClientName:  req.ClientName,
		CreatedByID: p.ID,
	}
	start, err := parseProjectDate("startDate", req.StartDate)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to create project")
	}
	if start != nil && !start.clear {
		in.StartDate = &start.value
	}
	end, err := parseProjectDate("endDate", req.EndDate)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to create project")
	}
	if end != nil && !end.clear {
		in.EndDate = &end.value
	}

	project, err := pc.flow.CreateProject(c.UserContext(), in, req.MemberIDs)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to create project")
	}

	pc.Logger.WithFields(logrus.Fields{"project_id": project.ID, "created_by": p.ID}).Info("Project created")
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "project")
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}

	project, err := pc.projects.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}
	if !policy.CanAccess(p, policy.ActionUpdate, project) {
		return respondError(c, pc.Logger, forbidden(), "Failed to update project")
	}

	var req UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}

	patch := store.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
		ClientName:  req.ClientName,
	}
	if req.Status != nil {
		patch.Status = utils.Pointer(models.Status(*req.Status))
	}
	if req.Priority != nil {
		patch.Priority = utils.Pointer(models.Priority(*req.Priority))
	}
	start, err := parseProjectDate("startDate", req.StartDate)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}
	if start != nil {
		patch.ClearStartDate = start.clear
		if !start.clear {
			patch.StartDate = &start.value
		}
	}
	end, err := parseProjectDate("endDate", req.EndDate)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}
	if end != nil {
		patch.ClearEndDate = end.clear
		if !end.clear {
			patch.EndDate = &end.value
		}
	}

	updated, err := pc.flow.UpdateProject(c.UserContext(), id, patch, req.MemberIDs)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to update project")
	}
	return c.JSON(updated)
}

func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "project")
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to delete project")
	}

	project, err := pc.projects.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, pc.Logger, err, "Failed to delete project")
	}
	if !policy.CanAccess(p, policy.ActionDelete, project) {
		return respondError(c, pc.Logger, forbidden(), "Failed to delete project")
	}

	if err := pc.projects.Delete(c.UserContext(), id); err != nil {
		return respondError(c, pc.Logger, err, "Failed to delete project")
	}

	pc.Logger.WithFields(logrus.Fields{"project_id": id, "deleted_by": p.ID}).Info("Project deleted")
	return c.JSON(fiber.Map{"success": true})
}
