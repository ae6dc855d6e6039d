package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the GORM connection shared by the record repositories.
type Base struct {
	conn *gorm.DB
}

// NewBase wraps the provided connection.
func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the connection bound to ctx so request deadlines and cancellation
// flow into queries.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}
