package v1

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type reportDownload struct {
	filePath  string
	fileName  string
	runID     string
	expiresAt time.Time
}

// reportDownloadStore 报告下载令牌（一次性，带过期时间）
type reportDownloadStore struct {
	mu    sync.Mutex
	items map[string]reportDownload
}

func newReportDownloadStore() *reportDownloadStore {
	return &reportDownloadStore{
		items: make(map[string]reportDownload),
	}
}

func (s *reportDownloadStore) put(item reportDownload, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	item.expiresAt = time.Now().Add(ttl)
	s.items[token] = item
	return token
}

func (s *reportDownloadStore) get(token string) (reportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[token]
	if !ok {
		return reportDownload{}, false
	}
	if time.Now().After(v.expiresAt) {
		delete(s.items, token)
		return reportDownload{}, false
	}
	return v, true
}

func (s *reportDownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// purgeExpired 清理过期令牌，返回对应的文件路径
func (s *reportDownloadStore) purgeExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeExpiredLocked(now)
}

func (s *reportDownloadStore) purgeExpiredLocked(now time.Time) []string {
	var paths []string
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			paths = append(paths, v.filePath)
			delete(s.items, k)
		}
	}
	return paths
}

func (s *reportDownloadStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
