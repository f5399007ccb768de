package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"playlister/db"
	"playlister/middleware"
	"playlister/models"
)

type SongHandler struct {
	store db.Store
	log   *zap.Logger
}

var _ Resource = (*SongHandler)(nil)

func NewSongHandler(store db.Store, log *zap.Logger) *SongHandler {
	return &SongHandler{store: store, log: log}
}

// List, şarkıları playlist filtresi, arama ve sıralama parametreleriyle listeler.
// playlist filtresi middleware.ValidateSongQuery tarafından çözülür; mevcut olmayan
// bir çalma listesi 400 döner.
//
//	GET /songs/?playlist=1&search=queen&ordering=-title
func (h *SongHandler) List(c *fiber.Ctx) error {
	q := db.SongQuery{
		Search:   c.Query("search"),
		Ordering: db.ParseOrdering(c.Query("ordering")),
	}

	if playlistID, ok := c.Locals(middleware.PlaylistFilterKey).(int64); ok {
		exists, err := h.store.PlaylistExists(c.UserContext(), playlistID)
		if err != nil {
			return writeError(c, h.log, err, "", "Şarkılar listelenemedi.")
		}
		if !exists {
			return validationJSON(c, models.NewFieldError("playlist", "Geçerli bir seçim yapın. Belirtilen çalma listesi mevcut değil."))
		}
		q.PlaylistID = &playlistID
	}

	songs, err := h.store.ListSongs(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err, "", "Şarkılar listelenemedi.")
	}

	return c.JSON(songs)
}

func (h *SongHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz şarkı ID'si.")
	}

	song, err := h.store.GetSong(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err, "Şarkı bulunamadı.", "Şarkı bilgileri alınamadı.")
	}

	return c.JSON(song)
}

// Create, yeni bir şarkı ekler. Çalma listesi yoksa hiçbir şey kaydedilmez.
func (h *SongHandler) Create(c *fiber.Ctx) error {
	var input models.SongInput
	if err := c.BodyParser(&input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz istek gövdesi.")
	}

	var song models.Song
	if err := input.Apply(&song, false); err != nil {
		return writeError(c, h.log, err, "", "Şarkı eklenemedi.")
	}

	if err := h.store.CreateSong(c.UserContext(), &song); err != nil {
		return writeError(c, h.log, err, "", "Şarkı eklenemedi.")
	}

	return c.Status(fiber.StatusCreated).JSON(song)
}

func (h *SongHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz şarkı ID'si.")
	}

	var input models.SongInput
	if err := c.BodyParser(&input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz istek gövdesi.")
	}

	song, err := h.store.GetSong(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err, "Güncellenecek şarkı bulunamadı.", "Şarkı güncellenemedi.")
	}

	if err := input.Apply(&song, isPartial(c)); err != nil {
		return writeError(c, h.log, err, "", "Şarkı güncellenemedi.")
	}

	if err := h.store.UpdateSong(c.UserContext(), &song); err != nil {
		return writeError(c, h.log, err, "Güncellenecek şarkı bulunamadı.", "Şarkı güncellenemedi.")
	}

	return c.JSON(song)
}

func (h *SongHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz şarkı ID'si.")
	}

	if err := h.store.DeleteSong(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err, "Silinecek şarkı bulunamadı.", "Şarkı silinemedi.")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
