package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"playlister/db"
	"playlister/models"
)

type PlaylistHandler struct {
	store db.Store
	log   *zap.Logger
}

var _ Resource = (*PlaylistHandler)(nil)

func NewPlaylistHandler(store db.Store, log *zap.Logger) *PlaylistHandler {
	return &PlaylistHandler{store: store, log: log}
}

// List, tüm çalma listelerini şarkılarıyla birlikte döner.
func (h *PlaylistHandler) List(c *fiber.Ctx) error {
	playlists, err := h.store.ListPlaylists(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err, "", "Çalma listeleri alınamadı.")
	}

	return c.JSON(playlists)
}

func (h *PlaylistHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz çalma listesi ID'si.")
	}

	playlist, err := h.store.GetPlaylist(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err, "Çalma listesi bulunamadı.", "Çalma listesi alınamadı.")
	}

	return c.JSON(playlist)
}

func (h *PlaylistHandler) Create(c *fiber.Ctx) error {
	var input models.PlaylistInput
	if err := c.BodyParser(&input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz istek gövdesi.")
	}

	var playlist models.Playlist
	if err := input.Apply(&playlist, false); err != nil {
		return writeError(c, h.log, err, "", "Çalma listesi oluşturulamadı.")
	}

	if err := h.store.CreatePlaylist(c.UserContext(), &playlist); err != nil {
		return writeError(c, h.log, err, "", "Çalma listesi oluşturulamadı.")
	}

	return c.Status(fiber.StatusCreated).JSON(playlist)
}

// Update, PUT için tüm alanları, PATCH için sadece gönderilen alanları günceller.
func (h *PlaylistHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz çalma listesi ID'si.")
	}

	var input models.PlaylistInput
	if err := c.BodyParser(&input); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz istek gövdesi.")
	}

	playlist, err := h.store.GetPlaylist(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err, "Güncellenecek çalma listesi bulunamadı.", "Çalma listesi güncellenemedi.")
	}

	if err := input.Apply(&playlist, isPartial(c)); err != nil {
		return writeError(c, h.log, err, "", "Çalma listesi güncellenemedi.")
	}

	if err := h.store.UpdatePlaylist(c.UserContext(), &playlist); err != nil {
		return writeError(c, h.log, err, "Güncellenecek çalma listesi bulunamadı.", "Çalma listesi güncellenemedi.")
	}

	return c.JSON(playlist)
}

// Delete, çalma listesini ve ona ait tüm şarkıları siler.
func (h *PlaylistHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Geçersiz çalma listesi ID'si.")
	}

	if err := h.store.DeletePlaylist(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err, "Silinecek çalma listesi bulunamadı.", "Çalma listesi silinemedi.")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
