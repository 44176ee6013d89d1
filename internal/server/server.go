package server

import (
	"context"
	"net/http"
	"time"

	"github.com/altibbe/hedamo/internal/assessment"
	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	"github.com/altibbe/hedamo/internal/config"
	"github.com/altibbe/hedamo/internal/observability"
	obsmiddleware "github.com/altibbe/hedamo/internal/observability/logger"
	obsmetrics "github.com/altibbe/hedamo/internal/observability/metrics"
	obstracing "github.com/altibbe/hedamo/internal/observability/tracing"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	"github.com/altibbe/hedamo/internal/ratelimit"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	authSvc     authdomain.Service
	productSvc  productdomain.Service
	questionSvc questiondomain.Service
	reportSvc   reportdomain.Service
	assessment  assessment.Client
	store       *storage.Store
	limiter     ratelimit.Limiter
	metrics     *obsmetrics.Metrics
}

type Params struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	AuthSvc     authdomain.Service
	ProductSvc  productdomain.Service
	QuestionSvc questiondomain.Service
	ReportSvc   reportdomain.Service
	Assessment  assessment.Client
	Store       *storage.Store
	Limiter     ratelimit.Limiter
	Metrics     *obsmetrics.Metrics
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		authSvc:     p.AuthSvc,
		productSvc:  p.ProductSvc,
		questionSvc: p.QuestionSvc,
		reportSvc:   p.ReportSvc,
		assessment:  p.Assessment,
		store:       p.Store,
		limiter:     p.Limiter,
		metrics:     p.Metrics,
	}

	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.Static("/uploads", s.store.Dir())

	api := s.engine.Group("/api/v1")
	api.Use(s.ResolveIdentity(), s.Admission())

	auth := api.Group("/auth")
	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)

	products := api.Group("/products", s.AuthRequired())
	products.GET("", s.ListProducts)
	products.POST("", s.CreateProduct)
	products.GET("/:id", s.GetProduct)
	products.PUT("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)
	products.POST("/:id/image", s.UploadProductImage)
	products.POST("/:id/submit", s.SubmitProduct)

	questions := api.Group("/questions", s.AuthRequired())
	questions.GET("/product/:productId", s.ListQuestions)
	questions.GET("/product/:productId/answers", s.ListAnswers)
	questions.POST("/product/:productId/generate", s.GenerateAdditionalQuestions)
	questions.POST("/:questionId/answer", s.SubmitAnswer)
	questions.PUT("/:questionId/answer", s.UpdateAnswer)
	questions.DELETE("/:questionId/answer", s.DeleteAnswer)

	reports := api.Group("/reports", s.AuthRequired())
	reports.GET("", s.ListReports)
	reports.POST("/product/:productId/generate", s.GenerateReport)
	reports.GET("/product/:productId", s.ListProductReports)
	reports.GET("/:reportId/download", s.DownloadReport)

	ai := api.Group("/ai", s.AuthRequired())
	ai.POST("/generate-questions", s.AIGenerateQuestions)
	ai.POST("/transparency-score", s.AITransparencyScore)
	ai.GET("/health", s.AIHealth)
}
