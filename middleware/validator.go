package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// PlaylistFilterKey, ValidateSongQuery'nin çözdüğü playlist ID'sini tuttuğu Locals anahtarıdır.
const PlaylistFilterKey = "playlistFilter"

// ValidateSongQuery, şarkı listeleme isteğinin "playlist" sorgu parametresini kontrol eder.
// Parametre verilmiş ve pozitif bir tam sayı değilse 400 Bad Request döndürür;
// geçerliyse değeri PlaylistFilterKey altında saklar.
func ValidateSongQuery(c *fiber.Ctx) error {
	raw := c.Query("playlist")
	if raw == "" {
		return c.Next()
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Doğrulama hatası.",
			"fields": fiber.Map{
				"playlist": []string{"Geçerli bir çalma listesi ID'si girin."},
			},
		})
	}

	c.Locals(PlaylistFilterKey, id)
	return c.Next()
}
