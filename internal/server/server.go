package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	v1 "bsrqc/internal/api/v1"
	"bsrqc/internal/config"
	"bsrqc/internal/service/qcrun"
	"bsrqc/internal/store"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	v1      *v1.Handler
	sweeper *Sweeper
	http    *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, rules *config.Rules, version string) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}
	uploads := filepath.Join(dataDir, config.UploadsDir)
	exports := filepath.Join(dataDir, config.ExportsDir)

	// 运行日志可关闭
	var sqliteStore *store.Store
	if cfg.Data.RunLog {
		sqliteStore, err = store.New(filepath.Join(dataDir, store.DBFile))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	runner := qcrun.NewRunner(qcrun.Options{
		Rules:      rules,
		Store:      sqliteStore,
		ExportsDir: exports,
		Timeout:    time.Duration(cfg.QC.TimeoutSeconds) * time.Second,
	})

	handler := v1.NewHandler(v1.Options{
		Runner:      runner,
		Store:       sqliteStore,
		UploadsDir:  uploads,
		DownloadTTL: time.Duration(cfg.Data.RetentionMinutes) * time.Minute,
		MaxUploadMB: cfg.QC.MaxUploadMB,
		RulesPath:   cfg.QC.RulesPath,
		Version:     version,
	})

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		v1:     handler,
		sweeper: &Sweeper{
			Dirs:      []string{uploads, exports},
			MaxAge:    time.Duration(cfg.Data.RetentionMinutes) * time.Minute,
			Interval:  time.Duration(cfg.Data.SweepIntervalMinutes) * time.Minute,
			Downloads: handler,
			Store:     sqliteStore,
		},
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api/v1")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器并在 ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweeper.Start(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
	return s.Close()
}

// Close 释放数据库连接
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
