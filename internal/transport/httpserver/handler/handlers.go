package handler

import (
	"github.com/google/uuid"

	"bandly-go/internal/domain/dashboard"
	"bandly-go/internal/domain/roster"
	"bandly-go/pkg/logger"
)

type Handlers struct {
	Store     *roster.Store
	Dashboard *dashboard.Service
	log       logger.Logger
	newID     func() string
}

func New(store *roster.Store, dashboardService *dashboard.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Store:     store,
		Dashboard: dashboardService,
		log:       log.With("component", "http"),
		newID:     uuid.NewString,
	}
}
