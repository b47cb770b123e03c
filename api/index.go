package handler

import (
	"net/http"
	"sync"

	"driveease/config"
	"driveease/di"
	"driveease/shared/logger"
	transport "driveease/transport/http"
)

var (
	service *transport.HTTP
	once    sync.Once
)

// Handler is the serverless entry point. The service graph is built on the
// first invocation and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		service = di.InitializeService()
	})

	service.ServeHTTP(w, r)
}
