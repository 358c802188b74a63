package model

import "strings"

// MovieSortField is a column the movie list can be ordered by.
type MovieSortField string

const (
	SortByName           MovieSortField = "name"
	SortByAgeRestriction MovieSortField = "ageRestriction"
	SortByCreatedAt      MovieSortField = "createdAt"
)

// SortOrder is ASC or DESC.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// MovieFilter narrows and orders a movie listing. Nil bounds are unset.
// Name matches as a case-insensitive substring.
type MovieFilter struct {
	Name      string
	MinAge    *int
	MaxAge    *int
	SortBy    MovieSortField
	SortOrder SortOrder
}

// ParseMovieSortField accepts the sort field names case-insensitively. An
// empty string selects createdAt.
func ParseMovieSortField(s string) (MovieSortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortByCreatedAt, nil
	case "name":
		return SortByName, nil
	case "agerestriction", "age_restriction":
		return SortByAgeRestriction, nil
	case "createdat", "created_at":
		return SortByCreatedAt, nil
	}
	return "", NewValidationError("sortBy", "must be one of name, ageRestriction, createdAt", ErrOutOfRange)
}

// ParseSortOrder defaults to ASC.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return SortAsc, nil
	case "DESC":
		return SortDesc, nil
	}
	return "", NewValidationError("sortOrder", "must be ASC or DESC", ErrOutOfRange)
}

// Normalize fills defaults and rejects negative bounds.
func (f MovieFilter) Normalize() (MovieFilter, error) {
	if f.MinAge != nil && *f.MinAge < 0 {
		return f, NewValidationError("minAge", "must not be negative", ErrOutOfRange)
	}
	if f.MaxAge != nil && *f.MaxAge < 0 {
		return f, NewValidationError("maxAge", "must not be negative", ErrOutOfRange)
	}
	by, err := ParseMovieSortField(string(f.SortBy))
	if err != nil {
		return f, err
	}
	order, err := ParseSortOrder(string(f.SortOrder))
	if err != nil {
		return f, err
	}
	f.SortBy, f.SortOrder = by, order
	f.Name = strings.TrimSpace(f.Name)
	return f, nil
}

// ClampMaxAge lowers MaxAge to age when it is unset or larger.
func (f MovieFilter) ClampMaxAge(age int) MovieFilter {
	if f.MaxAge == nil || *f.MaxAge > age {
		a := age
		f.MaxAge = &a
	}
	return f
}

// Matches applies the name and age bounds to m.
func (f MovieFilter) Matches(m *Movie) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.MinAge != nil && m.AgeRestriction.Int() < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && m.AgeRestriction.Int() > *f.MaxAge {
		return false
	}
	return true
}
