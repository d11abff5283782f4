// Package replay records published snapshots to a msgpack stream and reads
// them back. A stream is a header followed by one frame per snapshot.
package replay

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/felixgeelhaar/blockkit"
)

// SchemaVersion is written into every header
const SchemaVersion = 1

// ErrSchema is returned when a stream was written by an incompatible version
var ErrSchema = errors.New("unsupported replay schema")

// Header opens a replay stream
type Header struct {
	Schema   int       `msgpack:"schema"`
	Program  string    `msgpack:"program"`
	Level    string    `msgpack:"level,omitempty"`
	Recorded time.Time `msgpack:"recorded"`
}

// Recorder writes every snapshot it observes. Attach Observe with
// Interpreter.WithObserver. The first write error stops recording and is
// reported by Err.
type Recorder struct {
	enc    *msgpack.Encoder
	frames int
	err    error
}

// NewRecorder writes the header to w and returns a recorder for the frames
func NewRecorder(w io.Writer, header Header) (*Recorder, error) {
	header.Schema = SchemaVersion
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&header); err != nil {
		return nil, fmt.Errorf("write replay header: %w", err)
	}
	return &Recorder{enc: enc}, nil
}

// Observe records one snapshot
func (r *Recorder) Observe(s blockkit.Snapshot) {
	if r.err != nil {
		return
	}
	if err := r.enc.Encode(&s); err != nil {
		r.err = fmt.Errorf("write replay frame %d: %w", r.frames, err)
		return
	}
	r.frames++
}

// Frames returns the number of frames written
func (r *Recorder) Frames() int {
	return r.frames
}

// Err returns the first write error
func (r *Recorder) Err() error {
	return r.err
}

// Read decodes a whole replay stream
func Read(rd io.Reader) (Header, []blockkit.Snapshot, error) {
	dec := msgpack.NewDecoder(rd)

	var header Header
	if err := dec.Decode(&header); err != nil {
		return Header{}, nil, fmt.Errorf("read replay header: %w", err)
	}
	if header.Schema != SchemaVersion {
		return header, nil, fmt.Errorf("%w: %d", ErrSchema, header.Schema)
	}

	var frames []blockkit.Snapshot
	for {
		var s blockkit.Snapshot
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return header, frames, nil
		}
		if err != nil {
			return header, frames, fmt.Errorf("read replay frame %d: %w", len(frames), err)
		}
		frames = append(frames, s)
	}
}
