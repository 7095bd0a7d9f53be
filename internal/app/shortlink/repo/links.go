package repo

import (
	"sync"

	"clck.local/internal/app/shortlink"
	"github.com/google/uuid"
)

// LinksRepo 是 shortlink.Store 的内存实现：一张 map 加一把读写锁。
//
// 设计原因：
// - 存储按设计就是非持久的（进程退出即丢），map 是唯一权威数据
// - 记录指针只在锁内可见；Find/All 发出去的都是值拷贝，
//   调用方拿到的快照不会再被后台 reaper 改动
// - Update 在写锁内执行调用方闭包：resolve 的四路判定 + 计数
//   必须对其他 resolver 和 reaper 表现为原子，这里就是那个临界区
type LinksRepo struct {
	mu    sync.RWMutex
	links map[string]*shortlink.Link
}

func NewLinksRepo() *LinksRepo {
	return &LinksRepo{
		links: make(map[string]*shortlink.Link),
	}
}

// Save 插入或按短码整体覆盖（last write wins）。
func (r *LinksRepo) Save(link shortlink.Link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := link
	r.links[link.ShortCode] = &stored
}

// FindByCode 按短码查找，返回记录副本。
func (r *LinksRepo) FindByCode(code string) (shortlink.Link, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.links[code]
	if !ok {
		return shortlink.Link{}, false
	}
	return *l, true
}

// FindByOwner 返回属于 ownerID 的记录快照，顺序不保证。
func (r *LinksRepo) FindByOwner(ownerID uuid.UUID) []shortlink.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []shortlink.Link
	for _, l := range r.links {
		if l.OwnerID == ownerID {
			result = append(result, *l)
		}
	}
	return result
}

// All 返回全部记录快照。
func (r *LinksRepo) All() []shortlink.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]shortlink.Link, 0, len(r.links))
	for _, l := range r.links {
		result = append(result, *l)
	}
	return result
}

// Delete 按短码删除，返回是否确实删掉了一条。
func (r *LinksRepo) Delete(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[code]; !ok {
		return false
	}
	delete(r.links, code)
	return true
}

// Exists 上报短码是否已被占用。
func (r *LinksRepo) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.links[code]
	return ok
}

// Update 在写锁内对指定记录执行 fn。
// fn 对记录的修改无论 fn 返回什么都会保留（过期判定顺手把 Active 翻成
// false 也要落库）。短码不存在返回 shortlink.ErrNotFound，fn 不会被调用。
func (r *LinksRepo) Update(code string, fn func(*shortlink.Link) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[code]
	if !ok {
		return shortlink.ErrNotFound
	}
	return fn(l)
}
