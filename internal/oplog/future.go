package oplog

import (
	"context"
	"sync"
)

// Future — результат Deferred, запущенного в отдельной горутине.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	once  sync.Once
	value T
	err   error
}

// Go запускает unit в отдельной горутине с производным от ctx контекстом.
// Паника unit превращается в ошибку Future.
func Go[T any](ctx context.Context, unit Deferred[T]) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	fut := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		defer close(fut.done)
		defer func() {
			if r := recover(); r != nil {
				fut.err = panicError(r)
			}
		}()
		if unit == nil {
			fut.err = ErrNilUnit
			return
		}
		fut.value, fut.err = unit(runCtx)
	}()
	return fut
}

// Done закрывается после завершения unit.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Cancel отменяет context, в котором выполняется unit. Повторный вызов безопасен.
func (f *Future[T]) Cancel() {
	f.once.Do(f.cancel)
}

// Wait ждёт завершения unit и возвращает его результат.
// Отмена ctx прерывает только ожидание, не сам unit.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
