package xslog

import (
	"log/slog"
	"runtime/debug"
	"time"
)

const keyError = "error"

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func ErrorAny(err any) slog.Attr {
	return slog.Any(keyError, err)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func Route(route string) slog.Attr {
	const routeKey = "route"
	return slog.String(routeKey, route)
}

func CacheKey(key string) slog.Attr {
	const cacheKeyKey = "cache_key"
	return slog.String(cacheKeyKey, key)
}

func TaskID(id string) slog.Attr {
	const taskIDKey = "task_id"
	return slog.String(taskIDKey, id)
}

func Priority(priority string) slog.Attr {
	const priorityKey = "priority"
	return slog.String(priorityKey, priority)
}

func QueueLen(n int) slog.Attr {
	const queueLenKey = "queue_len"
	return slog.Int(queueLenKey, n)
}

func SessionID(id string) slog.Attr {
	const sessionIDKey = "session_id"
	return slog.String(sessionIDKey, id)
}

func UserID(id string) slog.Attr {
	const userIDKey = "user_id"
	return slog.String(userIDKey, id)
}

func ShoeID(id string) slog.Attr {
	const shoeIDKey = "shoe_id"
	return slog.String(shoeIDKey, id)
}

func Backend(backend string) slog.Attr {
	const backendKey = "backend"
	return slog.String(backendKey, backend)
}
