package app

import (
	"os"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
)

// Event is one unit of work for the dispatch loop.
type Event interface{ event() }

// FrameReceived carries a parsed frame from the network.
type FrameReceived struct{ Frame *frame.Frame }

// Signal asks the loop to stop. Sig is nil when the stop came from context
// cancellation.
type Signal struct{ Sig os.Signal }

// SourceClosed reports that the frame source stopped delivering.
type SourceClosed struct{}

func (FrameReceived) event() {}
func (Signal) event()        {}
func (SourceClosed) event()  {}

// FrameSource is the network side: it yields frames until closed.
type FrameSource interface {
	Frames() <-chan *frame.Frame
	Close() error
}
