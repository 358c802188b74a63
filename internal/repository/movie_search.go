package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// sortColumns whitelists ORDER BY targets.
var sortColumns = map[model.MovieSortField]string{
	model.SortByName:           "LOWER(m.name)",
	model.SortByAgeRestriction: "m.age_restriction",
	model.SortByCreatedAt:      "m.created_at",
}

// FindAll lists movies matching f with their sessions attached.
func (r *MovieRepo) FindAll(ctx context.Context, f model.MovieFilter) ([]*model.Movie, error) {
	where := []string{}
	args := []any{}

	if f.Name != "" {
		where = append(where, "LOWER(m.name) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(f.Name))+"%")
	}
	if f.MinAge != nil {
		where = append(where, "m.age_restriction >= ?")
		args = append(args, *f.MinAge)
	}
	if f.MaxAge != nil {
		where = append(where, "m.age_restriction <= ?")
		args = append(args, *f.MaxAge)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[model.SortByCreatedAt]
	}
	dir := "ASC"
	if f.SortOrder == model.SortDesc {
		dir = "DESC"
	}

	q := `SELECT m.id, m.name, m.age_restriction, m.created_at
		FROM movies m
		WHERE ` + cond + `
		ORDER BY ` + col + ` ` + dir + `, m.created_at ` + dir + `, m.id ` + dir

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Movie, 0)
	for rows.Next() {
		var (
			m   model.Movie
			age int
		)
		if err := rows.Scan(&m.ID, &m.Name, &age, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.AgeRestriction = model.AgeRestriction(age)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSessions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
