package models

import "strings"

// Song modeli, songs tablosunu temsil eder.
// Order, istemcinin belirlediği sıralama değeridir (varsayılan 0).
type Song struct {
	ID         int64  `json:"id"`
	PlaylistID int64  `json:"playlist" validate:"required,gt=0"`
	Title      string `json:"title" validate:"required,nonul,max=100"`
	Artist     string `json:"artist" validate:"required,nonul,max=100"`
	Album      string `json:"album" validate:"nonul,max=100"`
	Duration   string `json:"duration" validate:"required,nonul,max=10"` // mm:ss
	Genre      string `json:"genre" validate:"required,nonul,max=50"`
	Order      int    `json:"order" validate:"min=0,max=2147483647"`
}

// SongInput, şarkı oluşturma ve güncelleme isteklerinin gövdesidir.
type SongInput struct {
	PlaylistID *int64  `json:"playlist"`
	Title      *string `json:"title"`
	Artist     *string `json:"artist"`
	Album      *string `json:"album"`
	Duration   *string `json:"duration"`
	Genre      *string `json:"genre"`
	Order      *int    `json:"order"`
}

// Apply, gönderilen alanları s üzerine yazar ve sonucu doğrular.
// PUT için zorunlu alanlar gövdede bulunmalıdır; album ve order gönderilmezse korunur.
func (in SongInput) Apply(s *Song, partial bool) error {
	missing := &ValidationError{}
	if !partial {
		missing.require("playlist", in.PlaylistID != nil)
		missing.require("title", in.Title != nil)
		missing.require("artist", in.Artist != nil)
		missing.require("duration", in.Duration != nil)
		missing.require("genre", in.Genre != nil)
	}
	if in.PlaylistID != nil {
		s.PlaylistID = *in.PlaylistID
	}
	if in.Title != nil {
		s.Title = strings.TrimSpace(*in.Title)
	}
	if in.Artist != nil {
		s.Artist = strings.TrimSpace(*in.Artist)
	}
	if in.Album != nil {
		s.Album = strings.TrimSpace(*in.Album)
	}
	if in.Duration != nil {
		s.Duration = strings.TrimSpace(*in.Duration)
	}
	if in.Genre != nil {
		s.Genre = strings.TrimSpace(*in.Genre)
	}
	if in.Order != nil {
		s.Order = *in.Order
	}

	return missing.merge(Validate(s))
}
