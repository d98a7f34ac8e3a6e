package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fredoxntz/store-automation/config"
	"github.com/fredoxntz/store-automation/model"
)

// Store keeps workflow sessions and generated downloads in memory.
// Both tables are bounded; the oldest entries are evicted first so an
// unattended instance cannot grow without limit.
type Store struct {
	workflows    map[string]*model.Workflow
	downloads    map[string]*model.Download
	mu           sync.RWMutex
	maxWorkflows int // 0 = unlimited
	maxDownloads int
}

var (
	globalStore *Store
	storeOnce   sync.Once
)

// InitStore initializes the global store with configuration
func InitStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		globalStore = newStore(cfg.MaxWorkflows, cfg.MaxDownloads)
		slog.Info("store initialized",
			"max_workflows", cfg.MaxWorkflows,
			"max_downloads", cfg.MaxDownloads,
		)
	})
}

// GetStore returns the global store
func GetStore() *Store {
	if globalStore == nil {
		globalStore = newStore(100, 100)
	}
	return globalStore
}

func newStore(maxWorkflows, maxDownloads int) *Store {
	if maxWorkflows < 0 {
		maxWorkflows = 0
	}
	if maxDownloads < 0 {
		maxDownloads = 0
	}
	return &Store{
		workflows:    make(map[string]*model.Workflow),
		downloads:    make(map[string]*model.Download),
		maxWorkflows: maxWorkflows,
		maxDownloads: maxDownloads,
	}
}

func (s *Store) SaveWorkflow(wf *model.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf.UpdatedAt = time.Now()
	s.workflows[wf.ID] = wf
	s.cleanupWorkflows()
}

func (s *Store) GetWorkflow(id string) *model.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workflows[id]
}

func (s *Store) DeleteWorkflow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
}

func (s *Store) SaveDownload(d *model.Download) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads[d.ID] = d
	s.cleanupDownloads()
}

func (s *Store) GetDownload(id string) *model.Download {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.downloads[id]
}

func (s *Store) DeleteDownload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.downloads, id)
}

func (s *Store) WorkflowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workflows)
}

func (s *Store) DownloadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.downloads)
}

// cleanupWorkflows removes the oldest workflows beyond the limit.
// Must be called with lock held.
func (s *Store) cleanupWorkflows() {
	if s.maxWorkflows <= 0 || len(s.workflows) <= s.maxWorkflows {
		return
	}

	all := make([]*model.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		all = append(all, wf)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	removeCount := len(all) - s.maxWorkflows
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old workflow",
			"workflow_id", all[i].ID,
			"created_at", all[i].CreatedAt,
		)
		delete(s.workflows, all[i].ID)
	}
}

// cleanupDownloads removes the oldest downloads beyond the limit.
// Must be called with lock held.
func (s *Store) cleanupDownloads() {
	if s.maxDownloads <= 0 || len(s.downloads) <= s.maxDownloads {
		return
	}

	all := make([]*model.Download, 0, len(s.downloads))
	for _, d := range s.downloads {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	removeCount := len(all) - s.maxDownloads
	for i := 0; i < removeCount; i++ {
		delete(s.downloads, all[i].ID)
	}
}
