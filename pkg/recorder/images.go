// Package recorder captures the latest sample from each rig telemetry
// stream: camera frames, follower joint states, and follower commands.
//
// Recorders hold only the most recent value per stream. In debug mode they
// additionally keep a short timestamp history per stream for arrival-rate
// diagnostics.
package recorder

import (
	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/diag"
	"github.com/openteleop/bimanual/pkg/msg"
	"github.com/openteleop/bimanual/pkg/stream"
)

// Option configures a recorder.
type Option func(*options)

type options struct {
	debug bool
}

// WithDebug enables per-stream timestamp history for Rates.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

func newBuffer[T any](o options) *stream.Buffer[T] {
	if o.debug {
		return stream.New[T](stream.WithHistory(diag.DefaultHistorySize))
	}
	return stream.New[T]()
}

// ImageRecorder keeps the most recent frame from each camera.
type ImageRecorder struct {
	cameras []string
	frames  *stream.Buffer[msg.Image]
	cancels []func()
}

// NewImageRecorder subscribes to the image topic of every named camera on
// the given bus.
func NewImageRecorder(b *bus.Bus, cameras []string, opts ...Option) (*ImageRecorder, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &ImageRecorder{
		cameras: append([]string(nil), cameras...),
		frames:  newBuffer[msg.Image](o),
	}

	for _, cam := range cameras {
		cam := cam
		cancel, err := b.Subscribe(msg.ImageTopic(cam), func(m bus.Message) {
			img, ok := m.Payload.(msg.Image)
			if !ok {
				return
			}
			r.frames.Update(cam, img, m.Stamp)
		})
		if err != nil {
			r.Close()
			return nil, err
		}
		r.cancels = append(r.cancels, cancel)
	}

	return r, nil
}

// Cameras returns the camera names this recorder captures.
func (r *ImageRecorder) Cameras() []string {
	return append([]string(nil), r.cameras...)
}

// Image returns the latest frame from one camera. ok is false before the
// first frame arrives.
func (r *ImageRecorder) Image(cam string) (msg.Image, bool) {
	s, ok := r.frames.Get(cam)
	return s.Value, ok
}

// Images returns the latest frame per camera. Cameras that have not
// delivered a frame yet are absent from the map.
func (r *ImageRecorder) Images() map[string]msg.Image {
	snap := r.frames.Snapshot()
	out := make(map[string]msg.Image, len(snap))
	for cam, s := range snap {
		out[cam] = s.Value
	}
	return out
}

// Rates reports the frame arrival rate per camera. Empty unless the recorder
// was created with WithDebug.
func (r *ImageRecorder) Rates() []diag.StreamRate {
	return r.frames.Rates()
}

// Close cancels all camera subscriptions.
func (r *ImageRecorder) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}
