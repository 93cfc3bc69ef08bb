package speechtotext

// EventType identifies a RecognizeEvent.
type EventType int

// Event types, one per RecognizeCallback method.
const (
	EventConnected EventType = iota + 1
	EventListening
	EventTranscription
	EventTranscriptionComplete
	EventInactivityTimeout
	EventError
	EventDisconnected
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventListening:
		return "listening"
	case EventTranscription:
		return "transcription"
	case EventTranscriptionComplete:
		return "transcription_complete"
	case EventInactivityTimeout:
		return "inactivity_timeout"
	case EventError:
		return "error"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// RecognizeEvent is one callback invocation. Results is set for
// EventTranscription and Err for EventInactivityTimeout and EventError.
type RecognizeEvent struct {
	Type    EventType
	Results *SpeechRecognitionResults
	Err     error
}

// ChannelCallback turns the callbacks of a session into a stream of events.
// The channel is closed after EventDisconnected. The consumer must keep
// draining it: a full buffer blocks the session's reader.
type ChannelCallback struct {
	events chan RecognizeEvent
}

// NewChannelCallback creates a callback whose channel buffers size events.
// OnConnected is delivered before RecognizeUsingWebSocket returns, so the
// buffer holds at least one event.
func NewChannelCallback(size int) *ChannelCallback {
	size = max(size, 1)

	return &ChannelCallback{events: make(chan RecognizeEvent, size)}
}

// Events returns the event stream.
func (c *ChannelCallback) Events() <-chan RecognizeEvent {
	return c.events
}

// OnConnected implements RecognizeCallback.
func (c *ChannelCallback) OnConnected() {
	c.events <- RecognizeEvent{Type: EventConnected}
}

// OnListening implements RecognizeCallback.
func (c *ChannelCallback) OnListening() {
	c.events <- RecognizeEvent{Type: EventListening}
}

// OnTranscription implements RecognizeCallback.
func (c *ChannelCallback) OnTranscription(results *SpeechRecognitionResults) {
	c.events <- RecognizeEvent{Type: EventTranscription, Results: results}
}

// OnTranscriptionComplete implements RecognizeCallback.
func (c *ChannelCallback) OnTranscriptionComplete() {
	c.events <- RecognizeEvent{Type: EventTranscriptionComplete}
}

// OnInactivityTimeout implements RecognizeCallback.
func (c *ChannelCallback) OnInactivityTimeout(err error) {
	c.events <- RecognizeEvent{Type: EventInactivityTimeout, Err: err}
}

// OnError implements RecognizeCallback.
func (c *ChannelCallback) OnError(err error) {
	c.events <- RecognizeEvent{Type: EventError, Err: err}
}

// OnDisconnected implements RecognizeCallback.
func (c *ChannelCallback) OnDisconnected() {
	c.events <- RecognizeEvent{Type: EventDisconnected}
	close(c.events)
}
