package awesynth

// Telemetry is a point-in-time snapshot of the engine's runtime-pressure
// counters (spec.md §7 "Runtime pressure (non-fatal, observable via
// counters)"). The underlying counters are atomic, so a snapshot taken
// from a goroutine other than the one calling Render never races with it,
// at the cost of QueueDrops and VoiceSteals possibly being read a sample
// or two apart from each other.
type Telemetry struct {
	QueueDrops  uint64
	VoiceSteals uint64
}

// Telemetry returns the current counters.
func (e *Engine) Telemetry() Telemetry {
	return Telemetry{
		QueueDrops:  e.scheduler.QueueDrops(),
		VoiceSteals: e.voices.Steals(),
	}
}
