package picture

// Observer 画面观察者（通常是视图），画面状态变化后被通知重绘
type Observer interface {
	UpdateObserver()
}

// ObserverFunc 函数适配为 Observer
type ObserverFunc func()

// UpdateObserver 实现 Observer
func (f ObserverFunc) UpdateObserver() { f() }

// ObserverHandle 注册观察者时返回的句柄，用于取消注册
type ObserverHandle uint64

type observerEntry struct {
	handle   ObserverHandle
	observer Observer
	removed  bool
}

// observerRegistry 按注册顺序同步通知
//
// 通知过程中取消注册会被推迟到本轮通知结束，不修改正在遍历的列表。
type observerRegistry struct {
	next      ObserverHandle
	entries   []observerEntry
	notifying bool
	pending   bool // 本轮通知中有被推迟的删除
}

func (r *observerRegistry) add(o Observer) ObserverHandle {
	r.next++
	r.entries = append(r.entries, observerEntry{handle: r.next, observer: o})
	return r.next
}

func (r *observerRegistry) remove(h ObserverHandle) bool {
	for i := range r.entries {
		if r.entries[i].handle != h || r.entries[i].removed {
			continue
		}
		if r.notifying {
			r.entries[i].removed = true
			r.pending = true
			return true
		}
		r.entries = append(r.entries[:i], r.entries[i+1:]...)
		return true
	}
	return false
}

// notify 通知所有观察者；通知过程中再次调用被忽略
func (r *observerRegistry) notify() {
	if r.notifying {
		return
	}
	r.notifying = true
	// 本轮只通知开始时已注册的观察者
	n := len(r.entries)
	for i := 0; i < n; i++ {
		if !r.entries[i].removed {
			r.entries[i].observer.UpdateObserver()
		}
	}
	r.notifying = false

	if r.pending {
		kept := r.entries[:0]
		for _, e := range r.entries {
			if !e.removed {
				kept = append(kept, e)
			}
		}
		r.entries = kept
		r.pending = false
	}
}

func (r *observerRegistry) len() int {
	count := 0
	for _, e := range r.entries {
		if !e.removed {
			count++
		}
	}
	return count
}
