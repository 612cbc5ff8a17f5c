package engine

// TriggerKind distinguishes the two one-shot events fired per prayer per day.
type TriggerKind string

const (
	TriggerReminder TriggerKind = "reminder"
	TriggerAdhan    TriggerKind = "adhan"
)

// TriggerLog records which triggers already fired for the current schedule so
// the once-per-prayer-per-day guarantee holds across ticks. It is reset
// whenever a new schedule is installed.
//
// The log is only touched from the engine's tick path, which is single-writer.
type TriggerLog struct {
	fired map[TriggerKind]map[string]bool
}

func NewTriggerLog() *TriggerLog {
	l := &TriggerLog{}
	l.Reset()
	return l
}

// Fired reports whether the trigger already ran for the prayer.
func (l *TriggerLog) Fired(kind TriggerKind, prayer string) bool {
	return l.fired[kind][prayer]
}

// Mark records the trigger as fired for the prayer.
func (l *TriggerLog) Mark(kind TriggerKind, prayer string) {
	if l.fired[kind] == nil {
		l.fired[kind] = make(map[string]bool)
	}
	l.fired[kind][prayer] = true
}

// Reset clears all recorded triggers.
func (l *TriggerLog) Reset() {
	l.fired = map[TriggerKind]map[string]bool{
		TriggerReminder: make(map[string]bool),
		TriggerAdhan:    make(map[string]bool),
	}
}
