package speechtotext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Streaming errors.
var (
	// ErrInactivityTimeout is passed to OnInactivityTimeout when the service
	// heard no speech for the configured inactivity timeout.
	ErrInactivityTimeout = errors.New("inactivity timeout")
	// ErrRecognition wraps error messages sent by the service during a session.
	ErrRecognition = errors.New("recognition error")
)

const stopMessage = `{"action":"stop"}`

// RecognizeCallback receives the events of a streaming session. Methods are
// called from the session's reader goroutine, one at a time and in the order
// the service sent the messages; they must not block for long.
type RecognizeCallback interface {
	// OnConnected is called once the WebSocket is open.
	OnConnected()
	// OnListening is called when the service is ready to receive audio.
	OnListening()
	// OnTranscription delivers final or interim results and speaker labels.
	OnTranscription(results *SpeechRecognitionResults)
	// OnTranscriptionComplete is called when all audio has been processed.
	OnTranscriptionComplete()
	// OnInactivityTimeout is called at most once per session. Errors that
	// follow it in the same session are not reported.
	OnInactivityTimeout(err error)
	// OnError reports service errors and abrupt disconnections.
	OnError(err error)
	// OnDisconnected is called exactly once, when the session ends.
	OnDisconnected()
}

// BaseRecognizeCallback implements RecognizeCallback with no-op methods.
// Embed it to handle only some events.
type BaseRecognizeCallback struct{}

// OnConnected implements RecognizeCallback.
func (BaseRecognizeCallback) OnConnected() {}

// OnListening implements RecognizeCallback.
func (BaseRecognizeCallback) OnListening() {}

// OnTranscription implements RecognizeCallback.
func (BaseRecognizeCallback) OnTranscription(*SpeechRecognitionResults) {}

// OnTranscriptionComplete implements RecognizeCallback.
func (BaseRecognizeCallback) OnTranscriptionComplete() {}

// OnInactivityTimeout implements RecognizeCallback.
func (BaseRecognizeCallback) OnInactivityTimeout(error) {}

// OnError implements RecognizeCallback.
func (BaseRecognizeCallback) OnError(error) {}

// OnDisconnected implements RecognizeCallback.
func (BaseRecognizeCallback) OnDisconnected() {}

// RecognizeSession is an open streaming recognition.
type RecognizeSession struct {
	id       string
	url      string
	conn     *websocket.Conn
	audio    io.ReadCloser
	callback RecognizeCallback
	logger   watson.Logger

	closing    atomic.Bool
	readerDone chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
	audioOnce  sync.Once
	stopCtx    func() bool

	// Owned by the reader goroutine until readerDone is closed.
	listening bool
	completed bool
	timedOut  bool
	err       error
}

// RecognizeUsingWebSocket opens a streaming session, sends the audio in
// binary frames as it is read and reports results to callback. The session
// stops when the audio ends and the service has processed it, when Stop is
// called, or when ctx is cancelled. Handshake failures are returned directly
// and no callback method is invoked.
func (c *Client) RecognizeUsingWebSocket(ctx context.Context, opts *RecognizeWebSocketOptions, callback RecognizeCallback) (*RecognizeSession, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	if callback == nil {
		return nil, watson.RequiredArgument("callback")
	}

	start, err := opts.startMessage(opts.MediaType(), opts.InterimResults)
	if err != nil {
		return nil, err
	}

	target := c.service.Target()

	wsURL, err := webSocketURL(target.Endpoint, opts.modelQuery(client.NewQuery()).Values())
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()

	header, err := c.handshakeHeader(ctx, target, wsURL, id)
	if err != nil {
		return nil, err
	}

	audio, err := opts.Audio.Open()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: constants.WebSocketHandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		_ = audio.Close()

		return nil, handshakeError(wsURL, resp, err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	session := &RecognizeSession{
		id:         id,
		url:        wsURL,
		conn:       conn,
		audio:      audio,
		callback:   callback,
		logger:     c.service.Logger(),
		readerDone: make(chan struct{}),
	}

	session.logger.Debug("recognize session opened", map[string]interface{}{
		"session": id,
		"url":     wsURL,
	})

	callback.OnConnected()

	err = conn.WriteMessage(websocket.TextMessage, []byte(start))
	if err != nil {
		session.report(&watson.TransportError{Method: http.MethodGet, URL: wsURL, Err: err})
		session.finish()

		return session, nil
	}

	session.stopCtx = context.AfterFunc(ctx, session.Stop)

	// Only the reader is tracked: the audio goroutine may sit in a Read on a
	// source that cannot be closed, and it exits on its own once Read returns.
	session.wg.Add(1)

	go session.read()
	go session.stream()

	return session, nil
}

func webSocketURL(endpoint string, query url.Values) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http":
		parsed.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", watson.InvalidArgument("endpoint", "must use http or https")
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + constants.WebSocketRecognizePath
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// handshakeHeader authenticates the upgrade request the same way as a REST call.
func (c *Client) handshakeHeader(ctx context.Context, target client.Target, wsURL, id string) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating handshake request: %w", err)
	}

	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	req.Header.Set(constants.HeaderSDKAnalytics, c.service.AnalyticsHeader("recognize_using_websocket"))
	req.Header.Set(constants.HeaderUserAgent, c.service.HTTP().UserAgent())

	if req.Header.Get(constants.HeaderRequestID) == "" {
		req.Header.Set(constants.HeaderRequestID, id)
	}

	err = target.Authenticator.Authenticate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authenticating handshake: %w", err)
	}

	return req.Header, nil
}

func handshakeError(wsURL string, resp *http.Response, err error) error {
	if resp == nil {
		return &watson.TransportError{Method: http.MethodGet, URL: wsURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	return watson.NewServiceResponseError(resp.StatusCode, resp.Header, body)
}

// ID returns the session id, sent as the X-Request-Id of the handshake.
func (s *RecognizeSession) ID() string {
	return s.id
}

// Stop ends the session gracefully: audio stops being sent and a normal
// close frame is sent to the service. It may be called more than once.
func (s *RecognizeSession) Stop() {
	s.close("client stopped")
}

// Done is closed when the session has ended and OnDisconnected returned.
func (s *RecognizeSession) Done() <-chan struct{} {
	return s.readerDone
}

// Wait blocks until the session has ended. It returns the first error passed to
// OnError or OnInactivityTimeout, or nil. It does not wait for the audio source:
// a source that is not an io.Closer stops being read on its next Read return.
func (s *RecognizeSession) Wait() error {
	<-s.readerDone
	s.wg.Wait()

	return s.err
}

func (s *RecognizeSession) close(reason string) {
	s.closeOnce.Do(func() {
		s.closing.Store(true)

		deadline := time.Now().Add(constants.WebSocketCloseGrace)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)

		err := s.conn.WriteControl(websocket.CloseMessage, message, deadline)
		if err != nil {
			_ = s.conn.Close()

			return
		}

		// Unblocks the reader if the service never answers the close frame.
		_ = s.conn.SetReadDeadline(deadline)
	})
}

func (s *RecognizeSession) closeAudio() {
	s.audioOnce.Do(func() {
		_ = s.audio.Close()
	})
}

func (s *RecognizeSession) read() {
	defer s.wg.Done()
	defer s.finish()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readFailed(err)

			return
		}

		s.dispatch(data)
	}
}

func (s *RecognizeSession) dispatch(data []byte) {
	if !gjson.ValidBytes(data) {
		s.report(fmt.Errorf("%w: malformed message %q", ErrRecognition, data))

		return
	}

	message := gjson.ParseBytes(data)

	switch {
	case message.Get("error").Exists():
		text := message.Get("error").String()
		if strings.HasPrefix(text, constants.InactivityTimeoutPrefix) {
			s.inactive(text)

			return
		}

		s.report(fmt.Errorf("%w: %s", ErrRecognition, text))
	case message.Get("results").Exists() || message.Get("speaker_labels").Exists():
		var results SpeechRecognitionResults

		err := json.Unmarshal(data, &results)
		if err != nil {
			s.report(fmt.Errorf("%w: decoding results: %w", ErrRecognition, err))

			return
		}

		s.callback.OnTranscription(&results)
	case message.Get("state").Exists():
		if !s.listening {
			s.listening = true
			s.callback.OnListening()

			return
		}

		s.completed = true
		s.callback.OnTranscriptionComplete()
		s.close("Transcription completed")
	default:
		s.logger.Debug("ignoring recognize message", map[string]interface{}{
			"session": s.id,
			"message": message.Raw,
		})
	}
}

func (s *RecognizeSession) inactive(text string) {
	if s.timedOut {
		return
	}

	s.timedOut = true
	err := fmt.Errorf("%w: %s", ErrInactivityTimeout, text)

	if s.err == nil {
		s.err = err
	}

	s.callback.OnInactivityTimeout(err)
}

func (s *RecognizeSession) report(err error) {
	if s.timedOut {
		s.logger.Debug("suppressing error after inactivity timeout", map[string]interface{}{
			"session": s.id,
			"error":   err.Error(),
		})

		return
	}

	if s.err == nil {
		s.err = err
	}

	s.callback.OnError(err)
}

func (s *RecognizeSession) readFailed(err error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
		return
	}

	if s.closing.Load() || s.completed {
		return
	}

	s.report(&watson.TransportError{Method: http.MethodGet, URL: s.url, Err: err})
}

func (s *RecognizeSession) finish() {
	if s.stopCtx != nil {
		s.stopCtx()
	}

	s.closing.Store(true)
	_ = s.conn.Close()
	s.closeAudio()

	s.logger.Debug("recognize session closed", map[string]interface{}{
		"session":   s.id,
		"completed": s.completed,
		"timed_out": s.timedOut,
	})

	s.callback.OnDisconnected()
	close(s.readerDone)
}

// stream sends the audio in chunks, then the stop action.
func (s *RecognizeSession) stream() {
	defer s.closeAudio()

	buf := make([]byte, constants.AudioChunkSize)

	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if s.closing.Load() {
				return
			}

			werr := s.conn.WriteMessage(websocket.BinaryMessage, buf[:n])
			if werr != nil {
				return
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if !s.closing.Load() {
				s.logger.Warn("reading audio failed", map[string]interface{}{
					"session": s.id,
					"error":   err.Error(),
				})
			}

			break
		}
	}

	if s.closing.Load() {
		return
	}

	err := s.conn.WriteMessage(websocket.TextMessage, []byte(stopMessage))
	if err != nil {
		s.logger.Debug("stop message discarded", map[string]interface{}{
			"session": s.id,
			"error":   err.Error(),
		})
	}
}
