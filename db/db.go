package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"playlister/models"
)

var (
	// ErrNotFound, istenen kayıt yoksa döner.
	ErrNotFound = errors.New("record not found")
	// ErrPlaylistNotFound, şarkının bağlandığı çalma listesi yoksa döner.
	ErrPlaylistNotFound = errors.New("referenced playlist does not exist")
)

// foreign_key_violation
const codeForeignKeyViolation = "23503"

type Store interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)
	CreatePlaylist(ctx context.Context, p *models.Playlist) error
	UpdatePlaylist(ctx context.Context, p *models.Playlist) error
	DeletePlaylist(ctx context.Context, id int64) error
	PlaylistExists(ctx context.Context, id int64) (bool, error)

	ListSongs(ctx context.Context, q SongQuery) ([]models.Song, error)
	GetSong(ctx context.Context, id int64) (models.Song, error)
	CreateSong(ctx context.Context, s *models.Song) error
	UpdateSong(ctx context.Context, s *models.Song) error
	DeleteSong(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close()
}

type db struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDatabase, verilen bağlantı dizesiyle bir pgx havuzu açar ve doğrular.
func NewDatabase(ctx context.Context, log *zap.Logger, connStr string) (Store, error) {
	pool, err := pgxpool.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &db{pool: pool, log: log}, nil
}

func (d *db) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *db) Close() {
	d.pool.Close()
}

func (d *db) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name, description, thumbnail, created_at FROM playlists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	ids := []int64{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Thumbnail, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		p.Songs = []models.Song{}
		playlists = append(playlists, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlists: %w", err)
	}
	if len(ids) == 0 {
		return playlists, nil
	}

	songs, err := d.querySongs(ctx, `SELECT `+songColumns+` FROM songs WHERE playlist_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(playlists))
	for i, p := range playlists {
		index[p.ID] = i
	}
	for _, s := range songs {
		if i, ok := index[s.PlaylistID]; ok {
			playlists[i].Songs = append(playlists[i].Songs, s)
		}
	}

	return playlists, nil
}

func (d *db) GetPlaylist(ctx context.Context, id int64) (models.Playlist, error) {
	var p models.Playlist
	err := d.pool.QueryRow(ctx, `SELECT id, name, description, thumbnail, created_at FROM playlists WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Thumbnail, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("failed to query playlist: %w", err)
	}

	p.Songs, err = d.querySongs(ctx, `SELECT `+songColumns+` FROM songs WHERE playlist_id = $1 ORDER BY id`, id)
	if err != nil {
		return p, err
	}

	return p, nil
}

func (d *db) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	query := `INSERT INTO playlists (name, description, thumbnail) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := d.pool.QueryRow(ctx, query, p.Name, p.Description, p.Thumbnail).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	p.Songs = []models.Song{}
	return nil
}

func (d *db) UpdatePlaylist(ctx context.Context, p *models.Playlist) error {
	query := `UPDATE playlists SET name = $1, description = $2, thumbnail = $3 WHERE id = $4 RETURNING created_at`
	err := d.pool.QueryRow(ctx, query, p.Name, p.Description, p.Thumbnail, p.ID).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return nil
}

// DeletePlaylist, çalma listesini siler; şarkılar ON DELETE CASCADE ile silinir.
func (d *db) DeletePlaylist(ctx context.Context, id int64) error {
	commandTag, err := d.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (d *db) PlaylistExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist: %w", err)
	}

	return exists, nil
}

func (d *db) ListSongs(ctx context.Context, q SongQuery) ([]models.Song, error) {
	query, args := BuildSongQuery(q)
	d.log.Debug("Şarkılar listeleniyor", zap.String("query", query), zap.Int("args", len(args)))

	return d.querySongs(ctx, query, args...)
}

func (d *db) GetSong(ctx context.Context, id int64) (models.Song, error) {
	var s models.Song
	err := d.pool.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id).
		Scan(&s.ID, &s.PlaylistID, &s.Title, &s.Artist, &s.Album, &s.Duration, &s.Genre, &s.Order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, ErrNotFound
		}
		return s, fmt.Errorf("failed to query song: %w", err)
	}

	return s, nil
}

func (d *db) CreateSong(ctx context.Context, s *models.Song) error {
	query := `INSERT INTO songs (playlist_id, title, artist, album, duration, genre, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := d.pool.QueryRow(ctx, query, s.PlaylistID, s.Title, s.Artist, s.Album, s.Duration, s.Genre, s.Order).Scan(&s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPlaylistNotFound
		}
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

func (d *db) UpdateSong(ctx context.Context, s *models.Song) error {
	query := `UPDATE songs SET playlist_id = $1, title = $2, artist = $3, album = $4, duration = $5, genre = $6, sort_order = $7
		WHERE id = $8`
	commandTag, err := d.pool.Exec(ctx, query, s.PlaylistID, s.Title, s.Artist, s.Album, s.Duration, s.Genre, s.Order, s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPlaylistNotFound
		}
		return fmt.Errorf("failed to update song: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (d *db) DeleteSong(ctx context.Context, id int64) error {
	commandTag, err := d.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (d *db) querySongs(ctx context.Context, query string, args ...interface{}) ([]models.Song, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.Title, &s.Artist, &s.Album, &s.Duration, &s.Genre, &s.Order); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return songs, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
