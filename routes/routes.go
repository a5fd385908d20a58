package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/config"
	controller "teamcal/controllers"
	"teamcal/middleware"
	"teamcal/utils"
)

// NewApp builds the Fiber application with its global middleware and every
// route registered.
func NewApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "teamcal",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CORS(middleware.CORSFromOrigins(config.AppConfig.CORSAllowedOrigins)))

	SetupRoutes(app, db)
	return app
}

// errorHandler renders errors that escape a handler, such as fiber's own
// 404 and 405, in the {"error": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	} else {
		utils.LogError("unhandled_error", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
	}
	return utils.ErrorResponse(c, status, message)
}

func accessLog() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	})
}

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db, logrus.WithField("component", "auth"))

	auth := app.Group("/auth", accessLog())

	// Public auth endpoints
	auth.Post("/login", middleware.LoginRateLimiter(), authController.Login)
	auth.Post("/refresh", authController.Refresh)

	// Protected auth endpoints
	protectedAuth := auth.Group("", middleware.Protected(db))
	protectedAuth.Get("/me", authController.Me)

	logrus.Info("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	employeeController := controller.NewEmployeeController(db, logrus.WithField("component", "employees"))
	eventController := controller.NewEventController(db, logrus.WithField("component", "events"))
	projectController := controller.NewProjectController(db, logrus.WithField("component", "projects"))
	invitationController := controller.NewInvitationController(db, logrus.WithField("component", "invitations"))
	seedController := controller.NewSeedController(db, logrus.WithField("component", "seed"))

	// Secret-guarded, registered ahead of the session check
	app.Post("/api/seed", accessLog(), seedController.Seed)

	api := app.Group("/api", accessLog(), middleware.Protected(db))

	employees := api.Group("/employees")
	employees.Get("/", employeeController.ListEmployees)
	employees.Post("/", employeeController.CreateEmployee)
	employees.Get("/:id", employeeController.GetEmployee)
	employees.Patch("/:id", employeeController.UpdateEmployee)
	employees.Delete("/:id", employeeController.DeleteEmployee)

	events := api.Group("/events")
	events.Get("/", eventController.ListEvents)
	events.Post("/", eventController.CreateEvent)
	events.Get("/:id", eventController.GetEvent)
	events.Patch("/:id", eventController.UpdateEvent)
	events.Delete("/:id", eventController.DeleteEvent)

	projects := api.Group("/projects")
	projects.Get("/", projectController.ListProjects)
	projects.Post("/", projectController.CreateProject)
	projects.Get("/:id", projectController.GetProject)
	projects.Patch("/:id", projectController.UpdateProject)
	projects.Delete("/:id", projectController.DeleteProject)

	invitations := api.Group("/invitations")
	invitations.Get("/", invitationController.ListInvitations)
	invitations.Post("/", invitationController.CreateInvitation)
	invitations.Patch("/:id", invitationController.RespondInvitation)

	logrus.Info("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	// 404 for anything unmatched
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not Found")
	})
}
