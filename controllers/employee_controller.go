package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/middleware"
	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
)

type EmployeeController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	users  *store.UserStore
}

func NewEmployeeController(db *gorm.DB, logger *logrus.Entry) *EmployeeController {
	return &EmployeeController{
		DB:     db,
		Logger: logger,
		users:  store.NewUserStore(db),
	}
}

type CreateEmployeeRequest struct {
	Email      string  `json:"email" validate:"required,mailbox"`
	Password   string  `json:"password" validate:"required,min=6"`
	Name       string  `json:"name" validate:"required,max=100"`
	Role       string  `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Position   *string `json:"position" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Avatar     *string `json:"avatar"`
}

// UpdateEmployeeRequest fields are all optional. Active and Role are only
// honored for admins.
type UpdateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Position   *string `json:"position" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Avatar     *string `json:"avatar"`
	Active     *bool   `json:"active"`
	Role       *string `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
}

// ListEmployees returns every user account
func (ec *EmployeeController) ListEmployees(c *fiber.Ctx) error {
	users, err := ec.users.List(c.UserContext())
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch employees")
	}
	return c.JSON(users)
}

func (ec *EmployeeController) GetEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "employee")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch employee")
	}

	user, err := ec.users.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to fetch employee")
	}
	return c.JSON(user)
}

func (ec *EmployeeController) CreateEmployee(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	if !policy.CanAccess(p, policy.ActionCreate, (*models.User)(nil)) {
		return respondError(c, ec.Logger, forbidden(), "Failed to create employee")
	}

	var req CreateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ec.Logger, err, "Failed to create employee")
	}

	user, err := ec.users.Create(c.UserContext(), store.NewUser{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       models.Role(req.Role),
		Position:   req.Position,
		Department: req.Department,
		Phone:      req.Phone,
		Avatar:     req.Avatar,
	})
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to create employee")
	}

	ec.Logger.WithFields(logrus.Fields{"user_id": user.ID, "created_by": p.ID}).Info("Employee created")
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (ec *EmployeeController) UpdateEmployee(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "employee")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update employee")
	}

	target, err := ec.users.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update employee")
	}
	if !policy.CanAccess(p, policy.ActionUpdate, target) {
		return respondError(c, ec.Logger, forbidden(), "Failed to update employee")
	}

	var req UpdateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ec.Logger, err, "Failed to update employee")
	}

	patch := store.UserPatch{
		Name:       req.Name,
		Position:   req.Position,
		Department: req.Department,
		Phone:      req.Phone,
		Avatar:     req.Avatar,
		Password:   req.Password,
	}
	// Only admins can change the active flag or the role
	if req.Active != nil && policy.CanAccess(p, policy.ActionSetActive, target) {
		patch.Active = req.Active
	}
	if req.Role != nil && policy.CanAccess(p, policy.ActionSetRole, target) {
		role := models.Role(*req.Role)
		patch.Role = &role
	}

	user, err := ec.users.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to update employee")
	}
	return c.JSON(user)
}

func (ec *EmployeeController) DeleteEmployee(c *fiber.Ctx) error {
	p := middleware.CurrentPrincipal(c)
	id, err := paramID(c, "employee")
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete employee")
	}

	target, err := ec.users.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete employee")
	}
	if !policy.CanAccess(p, policy.ActionDelete, target) {
		return respondError(c, ec.Logger, forbidden(), "Failed to delete employee")
	}

	if err := ec.users.Delete(c.UserContext(), id); err != nil {
		return respondError(c, ec.Logger, err, "Failed to delete employee")
	}

	ec.Logger.WithFields(logrus.Fields{"user_id": id, "deleted_by": p.ID}).Info("Employee deleted")
	return c.JSON(fiber.Map{"success": true})
}
