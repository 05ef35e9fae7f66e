package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"bsrqc/internal/service/qcrun"
	"bsrqc/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	runner      *qcrun.Runner
	store       *store.Store
	uploadsDir  string
	downloads   *reportDownloadStore
	downloadTTL time.Duration
	maxUpload   int64
	rulesPath   string
	version     string
	startedAt   time.Time
}

// Options 处理器选项
type Options struct {
	Runner      *qcrun.Runner
	Store       *store.Store // 可为 nil：运行日志关闭
	UploadsDir  string
	DownloadTTL time.Duration
	MaxUploadMB int
	RulesPath   string
	Version     string
}

// NewHandler 创建 V1 API 处理器
func NewHandler(opts Options) *Handler {
	ttl := opts.DownloadTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	maxUpload := int64(opts.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	return &Handler{
		runner:      opts.Runner,
		store:       opts.Store,
		uploadsDir:  opts.UploadsDir,
		downloads:   newReportDownloadStore(),
		downloadTTL: ttl,
		maxUpload:   maxUpload,
		rulesPath:   opts.RulesPath,
		version:     opts.Version,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// 生效规则
	router.GET("/rules", h.GetRules)

	// 质检
	router.POST("/qc/general", h.RunGeneral)
	router.POST("/qc/league", h.RunLeague)
	router.GET("/qc/download/:token", h.DownloadReport)

	// 运行日志
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
}

// PurgeExpiredDownloads 清理过期的下载令牌，返回失效的报告路径
func (h *Handler) PurgeExpiredDownloads(now time.Time) []string {
	return h.downloads.purgeExpired(now)
}
