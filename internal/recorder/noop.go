package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordForecast(_ *ForecastEvent) error { return nil }
func (n *NoopRecorder) RecordReading(_ *ReadingEvent) error   { return nil }
func (n *NoopRecorder) RecordRollover(_ *RolloverEvent) error { return nil }
func (n *NoopRecorder) Stats() (Stats, error)                 { return Stats{}, nil }
func (n *NoopRecorder) Close() error                          { return nil }
