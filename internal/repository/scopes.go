package repository

import "gorm.io/gorm"

type scope = func(db *gorm.DB) *gorm.DB

// whereIf returns a scope filtering on column only when value is non-empty.
func whereIf[T ~string](column string, value T) scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func limitIf(n int) scope {
	return func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	}
}
