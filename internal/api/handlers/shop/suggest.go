package shop

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
)

// suggestItem is one autocomplete hit, either a book or an author.
// Trigram scores are internal ranking only.
type suggestItem struct {
	Type  string  `json:"type"` // "book" | "author"
	Score float64 `json:"-"`

	ID    int64  `json:"id"`
	Label string `json:"label"`

	Title      string `json:"title,omitempty"`
	AuthorName string `json:"authorName,omitempty"`

	Name       string `json:"name,omitempty"`
	BooksCount int    `json:"booksCount,omitempty"`
}

// GET /api/books/suggest?q=&limit=
//
// Trigram autocomplete over active books and their authors. Matching runs
// on unaccented lowercase text so Vietnamese queries hit with or without
// diacritics.
func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < 2 {
		httpx.OK(w, []suggestItem{})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	// Short queries are noisier, so they get a lower threshold.
	minSim := 0.12
	if len([]rune(q)) <= 3 {
		minSim = 0.08
	}

	items, err := h.suggestBooks(r, q, minSim, limit)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	authors, err := h.suggestAuthors(r, q, minSim, limit)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	items = append(items, authors...)

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > limit {
		items = items[:limit]
	}
	httpx.OK(w, items)
}

func (h *Handler) suggestBooks(r *http.Request, q string, minSim float64, limit int) ([]suggestItem, error) {
	rows, err := h.Store.DB.QueryContext(r.Context(), `
	WITH iq AS (SELECT unaccent(lower($1)) AS q)
	SELECT b.id, b.title, a.name,
	  GREATEST(
	    similarity(unaccent(lower(b.title)), (SELECT q FROM iq)),
	    word_similarity((SELECT q FROM iq), unaccent(lower(b.title)))
	  ) AS score
	FROM books b
	JOIN authors a ON a.id = b.author_id
	WHERE b.active = true
	  AND GREATEST(
	    similarity(unaccent(lower(b.title)), (SELECT q FROM iq)),
	    word_similarity((SELECT q FROM iq), unaccent(lower(b.title)))
	  ) >= $2
	ORDER BY score DESC, b.title ASC
	LIMIT $3`, q, minSim, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []suggestItem
	for rows.Next() {
		it := suggestItem{Type: "book"}
		if err := rows.Scan(&it.ID, &it.Title, &it.AuthorName, &it.Score); err != nil {
			return nil, err
		}
		it.Label = it.Title + " — " + it.AuthorName
		out = append(out, it)
	}
	return out, rows.Err()
}

func (h *Handler) suggestAuthors(r *http.Request, q string, minSim float64, limit int) ([]suggestItem, error) {
	rows, err := h.Store.DB.QueryContext(r.Context(), `
	WITH iq AS (SELECT unaccent(lower($1)) AS q)
	SELECT a.id, a.name, COUNT(b.id) FILTER (WHERE b.active) AS books_count,
	  GREATEST(
	    similarity(unaccent(lower(a.name)), (SELECT q FROM iq)),
	    word_similarity((SELECT q FROM iq), unaccent(lower(a.name)))
	  ) AS score
	FROM authors a
	LEFT JOIN books b ON b.author_id = a.id
	WHERE a.active = true
	GROUP BY a.id
	HAVING GREATEST(
	    similarity(unaccent(lower(a.name)), (SELECT q FROM iq)),
	    word_similarity((SELECT q FROM iq), unaccent(lower(a.name)))
	  ) >= $2
	ORDER BY score DESC, a.name ASC
	LIMIT $3`, q, minSim, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []suggestItem
	for rows.Next() {
		it := suggestItem{Type: "author"}
		if err := rows.Scan(&it.ID, &it.Name, &it.BooksCount, &it.Score); err != nil {
			return nil, err
		}
		it.Label = it.Name
		out = append(out, it)
	}
	return out, rows.Err()
}
