package timers

import (
	"time"
	clock "time"
)

type holder struct {
	timer *time.Timer
}

func discarded() {
	time.AfterFunc(time.Second, func() {}) // want "result of time.AfterFunc is discarded"
}

func blank() {
	_ = time.AfterFunc(time.Second, func() {}) // want "result of time.AfterFunc is discarded"
}

func renamedImport() {
	clock.AfterFunc(time.Second, func() {}) // want "result of time.AfterFunc is discarded"
}

func deferred() {
	defer time.AfterFunc(time.Second, func() {}) // want "result of time.AfterFunc is discarded"
}

func kept(h *holder) {
	h.timer = time.AfterFunc(time.Second, func() {})
	t := time.AfterFunc(time.Second, func() {})
	t.Stop()
}

func otherCalls() {
	time.Sleep(time.Millisecond)
	_ = time.NewTimer(time.Second)
}
