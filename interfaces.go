package fswatch

// RegistrationID 标识一次 RegisterByMatcher 订阅，用于之后取消
type RegistrationID int

// WatchService 按匹配器订阅文件的创建/修改/删除通知
//
// 回调收到绝对路径，可能在任意 goroutine 上被调用
//
//go:generate go run go.uber.org/mock/mockgen@latest -source=$GOFILE -destination=mock_$GOFILE -package=$GOPACKAGE
type WatchService interface {
	RegisterByMatcher(matcher PathMatcher, onCreate, onModify, onDelete func(path string)) RegistrationID
	UnregisterByMatcher(id RegistrationID)
}

// TreeWatcher 由能够补充监控目录树的 WatchService 实现
//
// 排除规则被移除后，之前遍历时跳过的目录需要重新加入监控
type TreeWatcher interface {
	WatchTree(root string) error
}

// Project 是工作区中的一个项目，BaseFolder 为空表示没有根目录
type Project struct {
	Name       string
	BaseFolder string
}

// ProjectLister 枚举当前已知的项目
type ProjectLister interface {
	ListProjects() ([]Project, error)
}
