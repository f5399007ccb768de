package db

import (
	"strconv"
	"strings"
)

// Sıralamada kullanılabilecek alanlar ve karşılık gelen kolonlar.
var orderingColumns = map[string]string{
	"title":    "title",
	"artist":   "artist",
	"duration": "duration",
	"order":    "sort_order",
}

// Aramanın yapıldığı kolonlar.
var searchColumns = []string{"title", "artist", "album", "genre"}

// DefaultOrdering, ordering parametresi verilmediğinde kullanılır.
var DefaultOrdering = []OrderTerm{{Field: "order"}, {Field: "title"}}

const songColumns = `id, playlist_id, title, artist, album, duration, genre, sort_order`

// OrderTerm, tek bir sıralama alanıdır.
type OrderTerm struct {
	Field string
	Desc  bool
}

// SongQuery, şarkı listeleme için filtre, arama ve sıralama seçenekleridir.
type SongQuery struct {
	PlaylistID *int64
	Search     string
	Ordering   []OrderTerm
}

// ParseOrdering, "title,-artist" biçimindeki ordering parametresini çözer.
// Bilinmeyen alanlar atlanır; geçerli alan kalmazsa DefaultOrdering döner.
func ParseOrdering(raw string) []OrderTerm {
	var terms []OrderTerm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if _, ok := orderingColumns[field]; !ok {
			continue
		}
		terms = append(terms, OrderTerm{Field: field, Desc: desc})
	}

	if len(terms) == 0 {
		return DefaultOrdering
	}
	return terms
}

// SearchTerms, arama metnini boşluk ve virgüllerden böler. NUL karakterleri atılır.
func SearchTerms(search string) []string {
	search = strings.ReplaceAll(search, "\x00", "")
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// BuildSongQuery, q için tek bir SELECT sorgusu ve argümanlarını üretir.
// Her arama terimi dört kolondan en az birinde geçmelidir.
func BuildSongQuery(q SongQuery) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)

	if q.PlaylistID != nil {
		args = append(args, *q.PlaylistID)
		where = append(where, `playlist_id = $`+strconv.Itoa(len(args)))
	}

	for _, term := range SearchTerms(q.Search) {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := `$` + strconv.Itoa(len(args))

		ors := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			ors = append(ors, col+` ILIKE `+placeholder)
		}
		where = append(where, `(`+strings.Join(ors, ` OR `)+`)`)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + songColumns + ` FROM songs`)
	if len(where) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(where, ` AND `))
	}

	ordering := q.Ordering
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	order := make([]string, 0, len(ordering)+1)
	for _, term := range ordering {
		col, ok := orderingColumns[term.Field]
		if !ok {
			continue
		}
		if term.Desc {
			col += ` DESC`
		}
		order = append(order, col)
	}
	order = append(order, `id`)
	sb.WriteString(` ORDER BY ` + strings.Join(order, `, `))

	return sb.String(), args
}

// escapeLike, LIKE desenindeki özel karakterleri kaçırır.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
