package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/redis"
)

// HealthController answers liveness and readiness probes.
type HealthController struct {
	db    *db.Client
	redis *redis.Client
	logg  *logger.Logger
}

func NewHealthController(dbc *db.Client, rdb *redis.Client, logg *logger.Logger) *HealthController {
	return &HealthController{db: dbc, redis: rdb, logg: logg}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			responses.WriteError(ctx, w, c.logg,
				pkgerrors.Wrap(err, pkgerrors.CodeDependency, "database unreachable"))
			return
		}
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx); err != nil {
			responses.WriteError(ctx, w, c.logg,
				pkgerrors.Wrap(err, pkgerrors.CodeDependency, "redis unreachable"))
			return
		}
	}
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
