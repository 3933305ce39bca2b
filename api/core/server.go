package core

import (
	"net/http"
)

// NewServer 创建 http.Server
func NewServer(deps *RouterDependencies) *http.Server {
	cfg := deps.Config
	router := SetupRouter(deps)

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
}
