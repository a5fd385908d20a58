package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"teamcal/utils"
)

// respondError writes err as {"error": ...} with the status for its kind.
// Unexpected failures are logged and reported with the fallback text only.
func respondError(c *fiber.Ctx, log *logrus.Entry, err error, fallback string) error {
	status := utils.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		utils.LogError("request_failed", err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
	} else {
		log.WithError(err).WithField("status", status).Debug(fallback)
	}
	return utils.ErrorResponse(c, status, utils.ErrorMessage(err, fallback))
}

func paramID(c *fiber.Ctx, what string) (uint, error) {
	id, err := utils.ParseUint(c.Params("id"))
	if err != nil || id == 0 {
		return 0, utils.NewError(utils.ErrValidation, "invalid %s id", what)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.NewError(utils.ErrValidation, "invalid request body")
	}
	return utils.ValidateStruct(out)
}

func forbidden() error {
	return utils.NewError(utils.ErrForbidden, "forbidden")
}
