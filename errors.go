package fswatch

import "github.com/cockroachdb/errors"

// 包级哨兵错误，调用方通过 errors.Is 判断
var (
	ErrInvalidPattern        = errors.New("invalid exclude pattern")
	ErrMalformedExcludesPath = errors.New("malformed excludes file path")
	ErrListProjects          = errors.New("failed to list projects")
	ErrTrackerStarted        = errors.New("excludes file tracker already started")
	ErrTrackerStopped        = errors.New("excludes file tracker stopped")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrWatcherStarted        = errors.New("watcher already started")
	ErrWatcherStopped        = errors.New("watcher stopped")
)
