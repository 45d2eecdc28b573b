package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard HTTP fields.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Standard business fields.

func App(v string) zap.Field     { return zap.String("app", v) }
func UserKey(v string) zap.Field { return zap.String("user_key", v) }
func Email(v string) zap.Field   { return zap.String("email", v) }
func Role(v string) zap.Field    { return zap.String("role", v) }
func DocType(v string) zap.Field { return zap.String("doctype", v) }
func Page(v string) zap.Field    { return zap.String("page", v) }
func Module(v string) zap.Field  { return zap.String("module", v) }

// Standard system fields.

func Component(v string) zap.Field            { return zap.String("component", v) }
func Op(v string) zap.Field                   { return zap.String("op", v) }
func Layer(v string) zap.Field                { return zap.String("layer", v) }
func Err(err error) zap.Field                 { return zap.Error(err) }
func Count(v int) zap.Field                   { return zap.Int("count", v) }
func String(key, v string) zap.Field          { return zap.String(key, v) }
func Duration(v time.Duration) zap.Field      { return zap.Duration("duration", v) }
func Any(key string, v interface{}) zap.Field { return zap.Any(key, v) }
