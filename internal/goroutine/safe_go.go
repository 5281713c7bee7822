package goroutine

import (
	"runtime/debug"

	"github.com/ignatzorin/masterskaya-backend/internal/logger"
)

// SafeGo запускает fn в горутине и гасит панику внутри неё,
// чтобы фоновая задача не уронила процесс.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

func logPanic() {
	if r := recover(); r != nil && logger.Log != nil {
		logger.Log.Errorf("паника в горутине: %v\n%s", r, debug.Stack())
	}
}
