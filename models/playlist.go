package models

import (
	"strings"
	"time"
)

// Playlist modeli, playlists tablosunu temsil eder.
// Songs alanı sadece okunur; şarkılar SongInput üzerinden yönetilir.
type Playlist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required,nonul,max=100"`
	Description string    `json:"description" validate:"nonul"`
	Thumbnail   string    `json:"thumbnail" validate:"omitempty,nonul,url,max=200"`
	CreatedAt   time.Time `json:"created_at"`
	Songs       []Song    `json:"songs"`
}

// PlaylistInput, çalma listesi oluşturma ve güncelleme isteklerinin gövdesidir.
// Gönderilen "songs", "id" ve "created_at" değerleri yok sayılır.
type PlaylistInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
}

// Apply, gönderilen alanları p üzerine yazar ve sonucu doğrular.
// partial false ise (PUT) zorunlu alanlar gövdede bulunmalıdır; gönderilmeyen
// opsiyonel alanlar kayıtlı değerlerini korur.
func (in PlaylistInput) Apply(p *Playlist, partial bool) error {
	missing := &ValidationError{}
	if !partial {
		missing.require("name", in.Name != nil)
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Thumbnail != nil {
		p.Thumbnail = strings.TrimSpace(*in.Thumbnail)
	}

	return missing.merge(Validate(p))
}
