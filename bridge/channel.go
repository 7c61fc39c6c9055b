package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go-juno/params"
)

var ErrClosed = errors.New("bridge: channel closed")

// Channel carries commands down to the render side and status messages
// back up. Sends never block; commands are delivered once, in send order.
type Channel struct {
	commands *queue[Command]
	statuses *queue[Status]

	wake      chan struct{}
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	statusMu sync.Mutex // single consumer of statuses
}

func NewChannel() *Channel {
	return &Channel{
		commands: newQueue[Command](),
		statuses: newQueue[Status](),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Send enqueues cmd. It returns false once the channel is closed.
func (c *Channel) Send(cmd Command) bool {
	if c.closed.Load() {
		return false
	}
	c.commands.push(cmd)
	return true
}

func (c *Channel) Init() bool {
	return c.Send(Command{Kind: KindInit})
}

func (c *Channel) NoteEvent(msg [3]byte) bool {
	return c.Send(Command{Kind: KindNoteEvent, Note: msg})
}

func (c *Channel) SetParam(id params.ID, v float64) bool {
	return c.Send(Command{Kind: KindSetParam, Param: id, Value: v})
}

// next is called only by the render side.
func (c *Channel) next() (Command, bool) {
	return c.commands.pop()
}

// post publishes a status. It is never called from the render callback.
func (c *Channel) post(s Status) {
	c.statuses.push(s)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Status returns the next pending status without blocking.
func (c *Channel) Status() (Status, bool) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.statuses.pop()
}

// WaitStatus blocks until a status arrives, ctx ends or the channel closes.
func (c *Channel) WaitStatus(ctx context.Context) (Status, error) {
	for {
		if s, ok := c.Status(); ok {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return Status{}, ctx.Err()
		case <-c.done:
			return Status{}, ErrClosed
		case <-c.wake:
		}
	}
}

// Close refuses further sends and releases status waiters.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
}
