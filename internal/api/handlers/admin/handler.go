// Package admin serves the back-office dashboard: headline stats and the
// staff action audit trail.
package admin

import (
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	RDB *redis.Client
	Sto Store
}

func NewHandler(rdb *redis.Client, store Store) *Handler {
	return &Handler{RDB: rdb, Sto: store}
}
