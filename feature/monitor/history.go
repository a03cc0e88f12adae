package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// DefaultHistorySize bounds the in-memory history.
const DefaultHistorySize = 1000

// History records executed monitor commands.
type History interface {
	Append(ctx context.Context, session, line string) error
	// Recent returns up to n commands, oldest first.
	Recent(ctx context.Context, n int) ([]string, error)
}

// Entry is a persisted monitor command.
type Entry struct {
	ID        uint   `gorm:"primaryKey"`
	Session   string `gorm:"size:36;index"`
	Command   string `gorm:"size:1024"`
	CreatedAt time.Time
}

// TableName overrides the table name used by Entry.
func (Entry) TableName() string {
	return "monitor_history"
}

// GormHistory stores history in a database.
type GormHistory struct {
	db *gorm.DB
}

// NewGormHistory migrates the history table and returns the store.
func NewGormHistory(db *gorm.DB) (*GormHistory, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &GormHistory{db: db}, nil
}

func (h *GormHistory) Append(ctx context.Context, session, line string) error {
	return h.db.WithContext(ctx).Create(&Entry{Session: session, Command: line}).Error
}

func (h *GormHistory) Recent(ctx context.Context, n int) ([]string, error) {
	var entries []Entry
	if err := h.db.WithContext(ctx).Order("id desc").Limit(n).Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.Command
	}
	return out, nil
}

// MemoryHistory is a bounded in-process history.
type MemoryHistory struct {
	mu    sync.Mutex
	limit int
	lines []string
}

// NewMemoryHistory creates a history that keeps the last limit commands.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &MemoryHistory{limit: limit}
}

func (h *MemoryHistory) Append(_ context.Context, _, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = append(h.lines[:0:0], h.lines[over:]...)
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, n int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := len(h.lines) - n
	if start < 0 {
		start = 0
	}
	return append([]string(nil), h.lines[start:]...), nil
}
