package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/game"
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

// Options configures a Server.
type Options struct {
	Rules  game.Rules // defaults for new games
	Logger *zap.Logger

	// ActionRate and ActionBurst limit actions per client (HTTP) and per
	// websocket connection.
	ActionRate  float64
	ActionBurst int

	// NewSeed picks a seed when a create request gives none.
	NewSeed func() uint64

	Debug bool
}

// Server is the regicide HTTP and websocket host.
type Server struct {
	opts   Options
	games  *Store
	limits *limiterSet
	router *gin.Engine
	log    *zap.Logger
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rules.Players == 0 {
		opts.Rules = game.SoloRules()
	}
	if opts.ActionRate <= 0 {
		opts.ActionRate = 5
	}
	if opts.ActionBurst < 1 {
		opts.ActionBurst = 10
	}
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		opts:   opts,
		games:  NewStore(opts.Logger),
		limits: newLimiterSet(opts.ActionRate, opts.ActionBurst),
		log:    opts.Logger.Named("web"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	s.initRouter(r)
	s.router = r
	return s
}

func (s *Server) initRouter(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "games": s.games.Len()})
	})

	api := r.Group("/api")
	{
		api.GET("/rules", s.handleRules)
		api.POST("/rules/check", s.handleCheckRules)

		api.POST("/games", s.handleCreateGame)
		api.GET("/games/:id", s.handleGetGame)
		api.DELETE("/games/:id", s.handleDeleteGame)
		api.GET("/games/:id/log", s.handleGameLog)
		api.GET("/games/:id/ws", s.handleWebSocket)
	}

	actions := api.Group("/games/:id", s.rateLimit())
	{
		actions.POST("/play", s.handleAction(rnet.MsgPlay))
		actions.POST("/discard", s.handleAction(rnet.MsgDiscard))
		actions.POST("/jester", s.handleAction(rnet.MsgJester))
		actions.POST("/yield", s.handleAction(rnet.MsgYield))
		actions.POST("/nominate", s.handleAction(rnet.MsgNominate))
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Games returns the game store.
func (s *Server) Games() *Store {
	return s.games
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
