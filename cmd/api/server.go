package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/core/notify/events"
	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/middleware/redis"
	"github.com/scienceol/cellbank/pkg/middleware/trace"
	"github.com/scienceol/cellbank/pkg/utils"
	"github.com/scienceol/cellbank/pkg/web"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the inventory API server and dashboard",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:   fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:       conf.Trace.Version,
		Env:           conf.Server.Env,
		TraceEndpoint: conf.Trace.TraceEndpoint,
		Insecure:      conf.Trace.Insecure,
		SampleRatio:   conf.Trace.SampleRatio,
	})
	InitBackends(cmd.Context())
	return nil
}

// InitBackends connects postgres only for the db usage log and redis only
// when enabled; the csv deployment needs neither.
func InitBackends(ctx context.Context) {
	conf := config.Global()
	if conf.Inventory.UsageLogBackend == config.LogBackendDB {
		initPostgres(ctx)
	}
	if conf.Redis.Enabled {
		redis.InitRedis(ctx, &redis.Redis{
			Host: conf.Redis.Host, Port: conf.Redis.Port,
			Password: conf.Redis.Password, DB: conf.Redis.DB,
		})
	}
}

func initPostgres(ctx context.Context) {
	conf := config.Global()
	db.InitPostgres(ctx, &db.Config{
		Host: conf.Database.Host, Port: conf.Database.Port,
		User: conf.Database.User, PW: conf.Database.Password,
		DBName: conf.Database.Name, LogConf: db.LogConf{Level: conf.Log.LogLevel},
	})
}

func newRouter(cmd *cobra.Command, _ []string) error {
	if config.Global().Server.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	release := web.NewRouter(cmd.Root().Context(), router)
	defer release()

	port := config.Global().Server.Port
	addr := ":" + strconv.Itoa(port)

	httpServer := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("API Server starting on http://0.0.0.0:%d\n", port)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	if err := events.NewEvents().Close(cmd.Context()); err != nil {
		logger.Warnf(cmd.Context(), "close events err: %+v", err)
	}
	CloseBackends(cmd.Context())
	trace.CloseTrace()
	return nil
}

func CloseBackends(ctx context.Context) {
	redis.CloseRedis(ctx)
	db.ClosePostgres(ctx)
}
