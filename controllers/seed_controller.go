package controller

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/config"
	"teamcal/store"
	"teamcal/utils"
)

type SeedController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	users  *store.UserStore
}

func NewSeedController(db *gorm.DB, logger *logrus.Entry) *SeedController {
	return &SeedController{
		DB:     db,
		Logger: logger,
		users:  store.NewUserStore(db),
	}
}

type SeedRequest struct {
	Secret string `json:"secret"`
}

// Seed creates the default accounts. It is guarded by SEED_SECRET and is
// disabled when no secret is configured.
func (sc *SeedController) Seed(c *fiber.Ctx) error {
	var req SeedRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	secret := config.AppConfig.SeedSecret
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(req.Secret)) != 1 {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Forbidden")
	}

	created, err := store.SeedDefaultUsers(c.UserContext(), sc.users)
	if err != nil {
		return respondError(c, sc.Logger, err, "Failed to seed database")
	}
	if created == 0 {
		return c.JSON(fiber.Map{"message": "Admin user already exists", "created": 0})
	}

	sc.Logger.WithField("created", created).Info("Database seeded")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Database seeded successfully",
		"created": created,
	})
}
