package server

import (
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/saferstays/internal/app/middleware"
	"github.com/FACorreiaa/saferstays/internal/routes"
)

const serviceName = "saferstays"

// SetupRouter configures and returns the Gin router with all middleware and routes
func (s *Server) SetupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.OTELGinMiddleware(serviceName))
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.HTTPMetrics())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	err := routes.Setup(r, routes.Dependencies{
		Config: s.cfg,
		DB:     s.dbPool,
		Redis:  s.redis,
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.router = r
	return r, nil
}
