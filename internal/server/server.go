package server

import (
	"context"
	"net/http"
	"time"

	"veritext/internal/config"
	"veritext/internal/explain"
	"veritext/internal/handler"
	"veritext/internal/middleware"
	"veritext/internal/model"
	"veritext/internal/service"
	"veritext/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	cfg     *config.Config
	adapter *model.Adapter
	history *store.HistoryStore
	logger  *zap.Logger
	log     *logrus.Logger
}

// NewServer wires the prediction pipeline, history store and handlers into
// a gin router.
func NewServer(cfg *config.Config, adapter *model.Adapter, history *store.HistoryStore, logger *zap.Logger, log *logrus.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	s := &Server{
		router:  router,
		cfg:     cfg,
		adapter: adapter,
		history: history,
		logger:  logger,
		log:     log,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	estimator := model.NewConfidenceEstimator(s.logger)
	predictor := service.NewPredictor(s.adapter, estimator, s.logger)
	attributor := explain.NewAttributor(s.adapter, s.logger)

	predictHandler := handler.NewPredictHandler(predictor, attributor, s.history, s.adapter, s.cfg.Validation.MaxTextLength, s.logger)
	historyHandler := handler.NewHistoryHandler(s.history, s.cfg.History.PageSize, s.cfg.History.SearchLimit, s.logger)
	insightsHandler := handler.NewInsightsHandler(s.history, s.cfg.Insights.Limit, s.cfg.Insights.MinCount, s.logger)

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Misinformation detection server is running!",
		})
	})
	s.router.GET("/health", predictHandler.Health)

	s.router.POST("/predict", predictHandler.Predict)

	history := s.router.Group("/history")
	{
		history.GET("", historyHandler.List)
		history.GET("/stats/summary", historyHandler.Stats)
		history.GET("/search/:query", historyHandler.Search)
		history.GET("/:id", historyHandler.GetByID)
		history.PUT("/:id/feedback", historyHandler.UpdateFeedback)
		history.DELETE("/:id", historyHandler.Delete)
		history.DELETE("", historyHandler.ClearAll)
	}

	s.router.GET("/insights/distinct-words", insightsHandler.DistinctWords)
	s.router.GET("/visual-data", insightsHandler.VisualData)
}

// Router exposes the assembled gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Server starting on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.log.Errorf("Server failed: %v", err)
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
