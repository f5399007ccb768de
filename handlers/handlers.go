package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"playlister/db"
	"playlister/models"
)

// Resource, bir kaynak için standart REST işlemlerini tanımlar.
// Update hem PUT (tam) hem PATCH (kısmi) isteklerini karşılar.
type Resource interface {
	List(c *fiber.Ctx) error
	Get(c *fiber.Ctx) error
	Create(c *fiber.Ctx) error
	Update(c *fiber.Ctx) error
	Delete(c *fiber.Ctx) error
}

// paramID, :id yol parametresini int64 olarak okur.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func isPartial(c *fiber.Ctx) bool {
	return c.Method() == fiber.MethodPatch
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func validationJSON(c *fiber.Ctx, verr *models.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Doğrulama hatası.",
		"fields": verr.Fields,
	})
}

// writeError, store ve doğrulama hatalarını HTTP yanıtına çevirir.
func writeError(c *fiber.Ctx, log *zap.Logger, err error, notFound, failed string) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationJSON(c, verr)
	case errors.Is(err, db.ErrPlaylistNotFound):
		return validationJSON(c, models.NewFieldError("playlist", "Belirtilen çalma listesi mevcut değil."))
	case errors.Is(err, db.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, notFound)
	default:
		log.Error(failed, zap.Error(err), zap.String("path", c.Path()), zap.String("method", c.Method()))
		return errorJSON(c, fiber.StatusInternalServerError, failed)
	}
}
