package state

import (
	"fmt"

	"github.com/trailgo/trail/internal/core/fault"
	"go.uber.org/zap"
)

// State is the minimum every mode, window and form implements.
type State interface {
	// Render returns the text block for the current prompt. It must not
	// mutate anything and performs no I/O.
	Render() string
}

// InputHandler consumes one line of input.
type InputHandler interface {
	OnInput(line string) error
}

// Suspender is notified when another state is pushed on top of it.
type Suspender interface {
	OnSuspend()
}

// Resumer is notified when it becomes the top of its stack again.
type Resumer interface {
	OnResume()
}

// Destroyer releases resources when the state is popped.
type Destroyer interface {
	OnDestroy()
}

// Context is handed to every constructor. It carries the user data shared by
// a mode and everything inside it, and the transition operations a state may
// request. It replaces global access to the running simulation.
type Context struct {
	Data   any
	Mode   ID
	Window ID
	Log    *zap.Logger

	machine *Machine
}

func (c *Context) SetForm(id ID) error             { return c.machine.PushForm(id) }
func (c *Context) ClearForm() error                { return c.machine.ClearForm() }
func (c *Context) PushWindow(id ID) error          { return c.machine.PushWindow(id) }
func (c *Context) PopWindow() error                { return c.machine.PopWindow() }
func (c *Context) PushMode(id ID) error            { return c.machine.PushMode(id) }
func (c *Context) PushModeWith(id ID, d any) error { return c.machine.PushModeWith(id, d) }
func (c *Context) PopMode() error                  { return c.machine.PopMode() }
func (c *Context) Shutdown()                       { c.machine.Shutdown() }

// DataAs returns the context's user data as T. A mismatch is reported as a
// construction failure so the state is skipped instead of crashing.
func DataAs[T any](ctx *Context) (T, error) {
	v, ok := ctx.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: user data of mode %s is %T, want %T", fault.ErrConstructionFailure, ctx.Mode, ctx.Data, zero)
	}
	return v, nil
}

type blank struct{}

func (blank) Render() string { return "" }

// Blank is a constructor for windows that only group forms.
func Blank(*Context) (State, error) { return blank{}, nil }
