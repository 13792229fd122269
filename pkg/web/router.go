package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	iImpl "github.com/scienceol/cellbank/pkg/core/inventory/inventory"
	"github.com/scienceol/cellbank/pkg/core/lineage"
	lImpl "github.com/scienceol/cellbank/pkg/core/lineage/lineage"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/core/notify/events"
	"github.com/scienceol/cellbank/pkg/core/stats"
	sImpl "github.com/scienceol/cellbank/pkg/core/stats/stats"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/web/views/dashboard"
	feedView "github.com/scienceol/cellbank/pkg/web/views/feed"
	"github.com/scienceol/cellbank/pkg/web/views/health"
	inventoryView "github.com/scienceol/cellbank/pkg/web/views/inventory"
	lineageView "github.com/scienceol/cellbank/pkg/web/views/lineage"
	statsView "github.com/scienceol/cellbank/pkg/web/views/stats"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Services struct {
	Inventory inventory.Service
	Lineage   lineage.Service
	Stats     stats.Service
	MsgCenter notify.MsgCenter
}

func NewServices() *Services {
	inv := iImpl.NewInventory()
	return &Services{
		Inventory: inv,
		Lineage:   lImpl.NewLineage(),
		Stats:     sImpl.New(inv),
		MsgCenter: events.NewEvents(),
	}
}

// NewRouter installs the default services; the returned func releases them.
func NewRouter(ctx context.Context, g *gin.Engine) func() {
	return Install(ctx, g, NewServices())
}

func Install(ctx context.Context, g *gin.Engine, svc *Services) func() {
	installMiddleware(g)
	return installURL(ctx, g, svc)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(ctx context.Context, g *gin.Engine, svc *Services) func() {
	g.GET("/", dashboard.Index)

	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)

	iHandle := inventoryView.NewInventoryHandle(svc.Inventory)
	lHandle := lineageView.NewLineageHandle(svc.Lineage)
	sHandle := statsView.NewStatsHandle(svc.Stats)
	fHandle := feedView.NewFeedHandle(ctx, svc.Inventory, svc.MsgCenter)

	v1 := api.Group("/v1")

	// Workbook browsing
	{
		sheetRouter := v1.Group("/sheets")
		sheetRouter.GET("", iHandle.Sheets)
		sheetRouter.GET("/:sheet/cells", iHandle.CellNames)
		sheetRouter.GET("/:sheet/tubes", iHandle.Tubes)
	}

	// Tubes
	{
		v1.GET("/recommend", iHandle.Recommend)
		v1.GET("/cellosaurus", iHandle.Cellosaurus)
		tubeRouter := v1.Group("/tubes")
		tubeRouter.GET("/available", iHandle.Available)
		tubeRouter.POST("", iHandle.CreateTube)
	}

	// Usage log
	{
		usageRouter := v1.Group("/usage")
		usageRouter.POST("", iHandle.RegisterUsage)
		usageRouter.GET("", iHandle.ListUsage)
		usageRouter.PUT("/:index", iHandle.UpdateUsage)
		usageRouter.DELETE("/:index", iHandle.DeleteUsage)
	}

	// Lineage
	{
		lineageRouter := v1.Group("/lineage")
		lineageRouter.GET("/groups", lHandle.Groups)
		lineageRouter.GET("/tree", lHandle.Tree)
	}

	// Statistics and charts
	{
		v1.GET("/stats/cell-lines", iHandle.CellLineStats)
		v1.GET("/stats/usage", sHandle.Usage)
		v1.GET("/charts", sHandle.Charts)
		v1.GET("/charts/:name", sHandle.Chart)
	}

	// Realtime
	{
		v1.GET("/ws/inventory", fHandle.Inventory)
		v1.GET("/notify/sse", fHandle.Notify)
	}

	return func() {
		if err := fHandle.Close(); err != nil {
			logger.Warnf(ctx, "close ws client err: %+v", err)
		}
		svc.Stats.Close()
	}
}
