package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/server/handlers/dl"
	"github.com/stopperw/modsync/internal/server/handlers/modpack"
	"github.com/stopperw/modsync/internal/server/middlewares"
	"github.com/stopperw/modsync/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20 // 8 MiB

	modpackH := modpack.New(svc.Modpack, svc.Blob)
	dlH := dl.New(svc.Modpack, svc.Blob)

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())
	r.Use(maxBodySize(config.MaxBodySize))

	r.GET("/", IndexHandler)

	// Download is keyed by digest and intentionally outside bearer auth.
	r.GET("/dl/hash/:hash", gzip.Gzip(gzip.BestSpeed), dlH.DownloadByHash)

	authed := r.Group("/")
	authed.Use(middlewares.BearerAuth(config.Auth.MasterKey))
	{
		authed.POST("/hello", HelloHandler)
		authed.POST("/modpack/create", modpackH.Create)
		authed.GET("/modpack/:modpack_id", modpackH.Get)
		authed.POST("/modpack/:modpack_id/filesync", modpackH.FileSync)
		authed.POST("/modpack/:modpack_id/upload", modpackH.Upload)
		authed.POST("/modpack/:modpack_id/delete", modpackH.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, &api.Error{
			Code:    api.CodeNotFound,
			Message: "not found",
		})
	})

	return r.Handler()
}

func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, "Modsync server - https://github.com/stopperw/modsync")
}

func HelloHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, &api.HelloResponse{
		Version:       version.Version,
		VersionNumber: version.Number,
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
