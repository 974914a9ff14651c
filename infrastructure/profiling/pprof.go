// Package profiling starts optional pprof and Pyroscope profilers. Both are
// off unless enabled through the environment.
package profiling

import (
	"net/http"
	_ "net/http/pprof" //nolint:gosec // bound to localhost only
	"os"
	"time"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
)

const pprofReadHeaderTimeout = 5 * time.Second

// StartPprofServer serves /debug/pprof on localhost:$PPROF_PORT (default
// 6060) when ENABLE_PROFILING=true.
func StartPprofServer(log logger.Logger) {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = "6060"
	}
	addr := "localhost:" + port

	go func() {
		log.Info("Starting pprof server", logger.String("address", addr))
		srv := &http.Server{Addr: addr, Handler: http.DefaultServeMux, ReadHeaderTimeout: pprofReadHeaderTimeout}
		if err := srv.ListenAndServe(); err != nil {
			log.Warn("pprof server stopped", logger.Error(err))
		}
	}()
}
