package server

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newPprofRouter() *gin.Engine {
	r := gin.New()
	pprof.Register(r)
	return r
}

// StartPprofServer serves the pprof handlers on their own port. The port is
// never exposed publicly; reach it over an SSH tunnel.
func StartPprofServer(port string, logger *zap.Logger) {
	r := newPprofRouter()
	go func() {
		logger.Info("Starting pprof server", zap.String("port", port))
		if err := r.Run(port); err != nil {
			logger.Error("Pprof server stopped", zap.Error(err))
		}
	}()
}
