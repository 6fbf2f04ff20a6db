// Package logctx хранит контекст логирования (ключ → значение) в context.Context.
//
// Контекст привязан к логической цепочке вызовов: каждая функция получает
// ctx явно и передаёт его дальше, в том числе в горутины асинхронных этапов.
// Изменение (Set, SetAll, Clear) возвращает новый context.Context и никогда не
// модифицирует родительский, поэтому значения одной цепочки не попадают в
// другую, даже если обе выполняются на одном worker-е пула.
//
// Пример использования:
//
//	ctx = logctx.Set(ctx, "userId", "123")
//	logger.Log(ctx, slog.LevelInfo, "сотрудник обновлён") // запись содержит userId=123
//	ctx = logctx.Clear(ctx)
package logctx

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// fieldsKey — приватный ключ для хранения полей в context.
type fieldsKey struct{}

// Fields — снимок контекста логирования.
type Fields map[string]string

// Set возвращает context, в котором key имеет значение value.
// Существующее значение ключа перезаписывается.
func Set(ctx context.Context, key, value string) context.Context {
	ctx = orBackground(ctx)
	current := fromContext(ctx)

	next := make(Fields, len(current)+1)
	maps.Copy(next, current)
	next[key] = value

	return context.WithValue(ctx, fieldsKey{}, next)
}

// SetAll добавляет все пары из fields. При пустом fields возвращает ctx без изменений.
func SetAll(ctx context.Context, fields map[string]string) context.Context {
	ctx = orBackground(ctx)
	if len(fields) == 0 {
		return ctx
	}
	current := fromContext(ctx)

	next := make(Fields, len(current)+len(fields))
	maps.Copy(next, current)
	maps.Copy(next, fields)

	return context.WithValue(ctx, fieldsKey{}, next)
}

// Get возвращает значение ключа и признак его наличия.
func Get(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := fromContext(ctx)[key]
	return v, ok
}

// Snapshot возвращает копию текущего контекста. Для пустого контекста — пустой (не nil) Fields.
func Snapshot(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	return maps.Clone(fromContext(ctx))
}

// Clear возвращает context без полей логирования.
// Унаследованные от родителя поля маскируются. Повторный вызов — no-op.
func Clear(ctx context.Context) context.Context {
	ctx = orBackground(ctx)
	if len(fromContext(ctx)) == 0 {
		return ctx
	}
	return context.WithValue(ctx, fieldsKey{}, Fields{})
}

// Attrs возвращает поля как slog атрибуты, отсортированные по ключу.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := fromContext(ctx)
	if len(fields) == 0 {
		return nil
	}

	keys := slices.Sorted(maps.Keys(fields))
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, fields[k]))
	}
	return attrs
}

func fromContext(ctx context.Context) Fields {
	if fields, ok := ctx.Value(fieldsKey{}).(Fields); ok {
		return fields
	}
	return nil
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
