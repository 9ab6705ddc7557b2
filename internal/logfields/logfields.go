package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyTransform  = "transform"
	KeyHook       = "hook"
	KeyNodeType   = "node_type"
	KeyNodeID     = "node_id"
	KeyPath       = "path"
	KeyRenderer   = "renderer"
	KeyRescans    = "rescans"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Transform(name string) slog.Attr    { return slog.String(KeyTransform, name) }
func Hook(name string) slog.Attr         { return slog.String(KeyHook, name) }
func NodeType(t string) slog.Attr        { return slog.String(KeyNodeType, t) }
func NodeID(id uint32) slog.Attr         { return slog.Uint64(KeyNodeID, uint64(id)) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Renderer(name string) slog.Attr     { return slog.String(KeyRenderer, name) }
func Rescans(n int) slog.Attr            { return slog.Int(KeyRescans, n) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
