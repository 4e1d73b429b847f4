package picture

import "testing"

// TestObservers_RegistrationOrder 测试按注册顺序通知
func TestObservers_RegistrationOrder(t *testing.T) {
	p := NewPicture()
	var order []int
	for i := 1; i <= 3; i++ {
		p.AddObserver(ObserverFunc(func() { order = append(order, i) }))
	}

	p.UpdateObservers()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Expected [1 2 3], got %v", order)
	}
}

// TestObservers_Remove 测试取消注册
func TestObservers_Remove(t *testing.T) {
	p := NewPicture()
	obs := &countingObserver{}
	h := p.AddObserver(obs)

	if !p.RemoveObserver(h) {
		t.Fatal("Expected RemoveObserver to succeed")
	}
	if p.RemoveObserver(h) {
		t.Error("Expected second RemoveObserver to fail")
	}
	p.UpdateObservers()
	if obs.count != 0 {
		t.Errorf("Expected removed observer not notified, got %d", obs.count)
	}
}

// TestObservers_RemoveDuringNotify 测试通知过程中取消注册
func TestObservers_RemoveDuringNotify(t *testing.T) {
	p := NewPicture()
	second := &countingObserver{}
	var secondHandle ObserverHandle

	var selfHandle ObserverHandle
	selfCalls := 0
	selfHandle = p.AddObserver(ObserverFunc(func() {
		selfCalls++
		p.RemoveObserver(selfHandle)
		p.RemoveObserver(secondHandle)
	}))
	secondHandle = p.AddObserver(second)
	third := &countingObserver{}
	p.AddObserver(third)

	p.UpdateObservers()
	if selfCalls != 1 {
		t.Errorf("Expected self-removing observer called once, got %d", selfCalls)
	}
	if second.count != 0 {
		t.Errorf("Expected observer removed earlier in the pass to be skipped, got %d", second.count)
	}
	if third.count != 1 {
		t.Errorf("Expected remaining observer notified, got %d", third.count)
	}
	if p.ObserverCount() != 1 {
		t.Errorf("Expected 1 observer left, got %d", p.ObserverCount())
	}

	p.UpdateObservers()
	if selfCalls != 1 || third.count != 2 {
		t.Errorf("Expected only remaining observer on second pass, got self=%d third=%d", selfCalls, third.count)
	}
}

// TestObservers_ReentrantNotifyIgnored 测试通知中再次通知被忽略
func TestObservers_ReentrantNotifyIgnored(t *testing.T) {
	p := NewPicture()
	calls := 0
	p.AddObserver(ObserverFunc(func() {
		calls++
		p.UpdateObservers()
	}))

	p.UpdateObservers()
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

// TestObservers_AddDuringNotify 测试通知中加入的观察者下一轮才被通知
func TestObservers_AddDuringNotify(t *testing.T) {
	p := NewPicture()
	late := &countingObserver{}
	added := false
	p.AddObserver(ObserverFunc(func() {
		if !added {
			added = true
			p.AddObserver(late)
		}
	}))

	p.UpdateObservers()
	if late.count != 0 {
		t.Errorf("Expected late observer skipped in current pass, got %d", late.count)
	}
	p.UpdateObservers()
	if late.count != 1 {
		t.Errorf("Expected late observer notified on next pass, got %d", late.count)
	}
}
