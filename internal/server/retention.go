package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"bsrqc/internal/store"
)

// DownloadPurger 清理过期下载令牌
type DownloadPurger interface {
	PurgeExpiredDownloads(now time.Time) []string
}

// Sweeper 定期清理上传与导出目录中的过期文件
type Sweeper struct {
	Dirs      []string
	MaxAge    time.Duration
	Interval  time.Duration
	Downloads DownloadPurger
	Store     *store.Store // 可为 nil
}

// Start 按间隔执行清理，直到 ctx 结束
func (s *Sweeper) Start(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.Printf("清理过期文件 %d 个", n)
			}
		}
	}
}

// Sweep 执行一次清理，返回删除的文件数
func (s *Sweeper) Sweep(now time.Time) int {
	removed := 0

	if s.Downloads != nil {
		for _, path := range s.Downloads.PurgeExpiredDownloads(now) {
			if err := os.Remove(path); err == nil {
				removed++
			} else if !os.IsNotExist(err) {
				log.Printf("删除过期报告失败 %s: %v", path, err)
			}
			s.clearReport(path)
		}
	}

	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	cutoff := now.Add(-maxAge)

	for _, dir := range s.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("读取目录失败 %s: %v", dir, err)
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("删除过期文件失败 %s: %v", path, err)
				continue
			}
			removed++
			s.clearReport(path)
		}
	}
	return removed
}

func (s *Sweeper) clearReport(path string) {
	if s.Store == nil {
		return
	}
	if err := s.Store.ClearReport(filepath.Base(path)); err != nil {
		log.Printf("更新运行记录失败: %v", err)
	}
}
