// Package fswatch 提供文件系统变更监控，以及决定哪些变更事件应被屏蔽的排除规则子系统。
//
// 核心组件：
//   - Registry：exclude/include 两组路径匹配器，include 永远优先于 exclude
//   - ExcludesFileTracker：跟踪每个项目的排除文件(<项目根>/.che/fileWatcherExcludes)，
//     把其中列出的路径实时反映到 Registry 中
//   - Watcher：基于fsnotify的递归监控，事件合并(Debounce)后由worker池分发给订阅者，
//     被 Registry 排除的路径不会产生任何通知
//   - DirProjectLister：把工作区根目录下的子目录枚举为项目
//
// 排除文件格式：
//   - 每行一个路径片段，去掉首尾空白后相对项目根解析
//   - 空行忽略；解析后在磁盘上不存在的路径直接丢弃(注释行因此也会被丢弃)
//   - 路径是否存在只在读取文件时检查一次
//
// 推荐使用方式：
//  1. 通过LoadConfig读取配置
//  2. 用配置中的IgnorePatterns创建Registry
//  3. 通过NewWatcher创建Watcher，再用它创建并Start ExcludesFileTracker
//  4. 调用Watcher.Start()开始监控，通过RegisterByMatcher订阅事件
//  5. 依次调用Tracker.Stop()与Watcher.Stop()结束监控
//
// 并发安全：
//   - Registry 写操作复制新切片后替换，读操作不持锁调用匹配器
//   - Tracker 中每个项目的排除集合发布后只读，更新时在写锁下整体替换，
//     读者只会看到完整的旧集合或完整的新集合
//   - 磁盘读取总是在加锁之前完成
package fswatch
