package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
)

var errNoRoute = errors.New("route not found")

type RouterConfig struct {
	Log             *logging.Logger
	HealthHandler   *HealthHandler
	ScheduleHandler *ScheduleHandler
	ImportHandler   *ImportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AttachRequestID())
	r.Use(RequestLogger(cfg.Log))
	r.NoRoute(func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, codeNotFound, errNoRoute)
	})

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ImportHandler != nil {
			api.POST("/learners/import", cfg.ImportHandler.ImportLearner)
		}

		if cfg.ScheduleHandler != nil {
			learner := api.Group("/learners/:id")
			learner.GET("/schedule", cfg.ScheduleHandler.GetSchedule)
			learner.POST("/schedule", cfg.ScheduleHandler.GenerateSchedule)
			learner.GET("/schedule/slice", cfg.ScheduleHandler.SliceSchedule)
			learner.POST("/schedule/adjust", cfg.ScheduleHandler.AdjustSchedule)
			learner.POST("/schedule/complete", cfg.ScheduleHandler.CompleteItem)
		}
	}

	return r
}
