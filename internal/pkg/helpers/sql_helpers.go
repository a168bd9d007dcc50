package helpers

import "database/sql"

// NullStringFromPtr converts a string pointer to sql.NullString.
func NullStringFromPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt64FromPtr converts an int pointer to sql.NullInt64.
func NullInt64FromPtr(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// PtrFromNullString converts a sql.NullString back to a string pointer.
func PtrFromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// PtrFromNullInt64 converts a sql.NullInt64 back to an int pointer.
func PtrFromNullInt64(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}
