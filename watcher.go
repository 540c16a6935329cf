package fswatch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// EventKind 是分发给订阅者的事件类型
type EventKind int

const (
	EventNone EventKind = iota
	EventCreate
	EventModify
	EventDelete
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "none"
	}
}

// registration 是一次 RegisterByMatcher 订阅
type registration struct {
	matcher  PathMatcher
	onCreate func(string)
	onModify func(string)
	onDelete func(string)
}

// Watcher 负责监控文件系统变化，并把未被 Registry 排除的事件分发给订阅者
//
// mu：对 regs 与 nextID 的读写上锁
// fsWatcher：底层使用github.com/fsnotify/fsnotify进行文件系统事件捕捉
// registry：决定哪些路径的事件被屏蔽
// stopChan：用于停止所有后台goroutine
// aggChan, aggMap, aggMu, aggTicker：用于事件合并（Debounce）
// workerPool：并发处理文件变更的令牌池
type Watcher struct {
	mu       sync.RWMutex
	cfg      ConfigWatcher
	registry *Registry
	log      *log.Logger

	fsWatcher *fsnotify.Watcher

	stateMu  sync.Mutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	loops    sync.WaitGroup

	regs   map[RegistrationID]*registration
	nextID RegistrationID

	// 事件合并(防抖)
	aggChan   chan fsnotify.Event
	aggMap    map[string]fsnotify.Op
	aggMu     sync.Mutex
	aggTicker *time.Ticker

	// 事件处理并发控制
	workerPool chan struct{}
	workers    sync.WaitGroup
}

// WatcherOption 定制 Watcher
type WatcherOption func(*Watcher)

// WithWatcherLogger 指定日志记录器
func WithWatcherLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWatcher 根据给定配置创建一个新的 Watcher
//
// 若 cfg.Debounce <= 0，则默认使用 10ms
// 若 cfg.WorkerCount <= 0，则默认使用 32
// registry 为 nil 时不屏蔽任何事件
func NewWatcher(cfg ConfigWatcher, registry *Registry, opts ...WatcherOption) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if registry == nil {
		registry = NewRegistry()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		cfg:       cfg,
		registry:  registry,
		log:       log.Default().With("component", "watcher"),
		fsWatcher: fsw,
		stopChan:  make(chan struct{}),

		regs:   make(map[RegistrationID]*registration),
		nextID: 1,

		aggChan:   make(chan fsnotify.Event, 100000),
		aggMap:    make(map[string]fsnotify.Op),
		aggTicker: time.NewTicker(cfg.Debounce),

		workerPool: make(chan struct{}, cfg.WorkerCount),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// RegisterByMatcher 订阅匹配路径的创建/修改/删除事件，nil 回调表示不关心该类事件
func (w *Watcher) RegisterByMatcher(matcher PathMatcher, onCreate, onModify, onDelete func(path string)) RegistrationID {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.regs[id] = &registration{
		matcher:  matcher,
		onCreate: onCreate,
		onModify: onModify,
		onDelete: onDelete,
	}
	return id
}

// UnregisterByMatcher 取消订阅，未知 ID 无操作
func (w *Watcher) UnregisterByMatcher(id RegistrationID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.regs, id)
}

// Start 启动文件监控
//
// 会递归扫描 cfg.WatchPaths 中的所有目录(跳过被排除的目录)，并将它们加到 fsnotify.Watcher 中
// 然后启动2个后台goroutine：
//  1. runAggregator()：负责事件合并
//  2. runFsNotify()：读取 fsnotify 事件并投递到合并队列
//
// 重复调用返回 ErrWatcherStarted，Stop 之后返回 ErrWatcherStopped
func (w *Watcher) Start() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	switch {
	case w.stopped:
		return ErrWatcherStopped
	case w.started:
		return ErrWatcherStarted
	}

	for _, root := range w.cfg.WatchPaths {
		abs, err := filepath.Abs(root)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve watch path %s", root)
		}
		if err := w.addTree(abs); err != nil {
			return errors.Wrapf(err, "failed to walk watch path %s", abs)
		}
	}

	w.started = true
	w.loops.Add(2)
	go w.runAggregator()
	go w.runFsNotify()

	w.log.Info("watcher started", "paths", w.cfg.WatchPaths, "debounce", w.cfg.Debounce)
	return nil
}

// Stop 停止监控，可重复调用
//
// 关闭 stopChan 与底层 fsnotify.Watcher，停止ticker，
// 退出前flush一次合并队列中的事件，并等待正在执行的回调结束
func (w *Watcher) Stop() {
	w.stateMu.Lock()
	if w.stopped {
		w.stateMu.Unlock()
		return
	}
	w.stopped = true
	w.stateMu.Unlock()

	close(w.stopChan)
	_ = w.fsWatcher.Close()
	w.aggTicker.Stop()
	w.loops.Wait()
	w.flushAgg()
	w.workers.Wait()
	w.log.Info("watcher stopped")
}

// WatchTree 把 root 下当前未被排除的目录加入监控，已监控的目录重复添加无副作用
func (w *Watcher) WatchTree(root string) error {
	w.stateMu.Lock()
	stopped := w.stopped
	w.stateMu.Unlock()
	if stopped {
		return ErrWatcherStopped
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", root)
	}
	if err := w.addTree(abs); err != nil {
		return errors.Wrapf(err, "failed to walk %s", abs)
	}
	return nil
}

// addTree 递归添加目录，被 Registry 排除的目录整棵跳过
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != root && w.registry.IsExcluded(p) {
			return filepath.SkipDir
		}
		if e := w.fsWatcher.Add(p); e != nil {
			w.log.Warn("cannot watch dir", "path", p, "err", e)
		}
		return nil
	})
}

// runFsNotify 不断读取 fsnotify 的事件，屏蔽被排除的路径后投递到合并队列
func (w *Watcher) runFsNotify() {
	defer w.loops.Done()
	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.registry.IsExcluded(ev.Name) {
				continue
			}
			// 如果是新建目录，需要额外Add
			if ev.Has(fsnotify.Create) {
				if fi, e2 := os.Stat(ev.Name); e2 == nil && fi.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("cannot watch new dir", "path", ev.Name, "err", err)
					}
				}
			}
			w.queueAgg(ev)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Error("fsnotify error", "err", err)

		case <-w.stopChan:
			return
		}
	}
}

// runAggregator 负责对短时间内的事件进行合并
func (w *Watcher) runAggregator() {
	defer w.loops.Done()
	for {
		select {
		case ev := <-w.aggChan:
			w.aggMu.Lock()
			w.aggMap[ev.Name] |= ev.Op
			w.aggMu.Unlock()

		case <-w.aggTicker.C:
			w.flushAgg()

		case <-w.stopChan:
			return
		}
	}
}

// flushAgg 将合并map(aggMap)中的事件批量提交给workerPool处理，池满时阻塞提交
func (w *Watcher) flushAgg() {
	w.aggMu.Lock()
	tmp := w.aggMap
	w.aggMap = make(map[string]fsnotify.Op)
	w.aggMu.Unlock()

	for p, op := range tmp {
		w.workerPool <- struct{}{}
		w.workers.Add(1)
		go func(fp string, fop fsnotify.Op) {
			defer func() {
				<-w.workerPool
				w.workers.Done()
			}()
			w.handleFileChange(fp, fop)
		}(p, op)
	}
}

// queueAgg 将事件放入合并通道，若满则阻塞
func (w *Watcher) queueAgg(ev fsnotify.Event) {
	select {
	case w.aggChan <- ev:
	case <-w.stopChan:
	}
}

// handleFileChange 按合并后的操作和文件当前是否存在决定事件类型，并分发给命中的订阅者
func (w *Watcher) handleFileChange(path string, op fsnotify.Op) {
	_, statErr := os.Stat(path)
	if statErr != nil && !os.IsNotExist(statErr) {
		w.log.Warn("cannot stat changed path", "path", path, "err", statErr)
		return
	}
	kind := classifyOp(op, statErr == nil)
	if kind == EventNone {
		return
	}
	w.dispatch(path, kind)
}

func (w *Watcher) dispatch(path string, kind EventKind) {
	w.mu.RLock()
	regs := make([]*registration, 0, len(w.regs))
	for _, r := range w.regs {
		regs = append(regs, r)
	}
	w.mu.RUnlock()

	for _, r := range regs {
		if !r.matcher.Matches(path) {
			continue
		}
		var cb func(string)
		switch kind {
		case EventCreate:
			cb = r.onCreate
		case EventModify:
			cb = r.onModify
		case EventDelete:
			cb = r.onDelete
		}
		if cb != nil {
			cb(path)
		}
	}
}

// classifyOp 把合并后的 fsnotify.Op 映射为单一事件类型
//
// 文件已不存在 => 删除；Create => 创建；Write/Remove/Rename 且文件仍在 => 修改(如原子保存)；仅 Chmod 忽略
func classifyOp(op fsnotify.Op, exists bool) EventKind {
	switch {
	case !exists:
		return EventDelete
	case op.Has(fsnotify.Create):
		return EventCreate
	case op.Has(fsnotify.Write), op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventModify
	default:
		return EventNone
	}
}
