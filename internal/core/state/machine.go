package state

import (
	"errors"
	"fmt"

	"github.com/trailgo/trail/internal/core/fault"
	"go.uber.org/zap"
)

type instance struct {
	desc  Descriptor
	state State
	ctx   *Context
}

type windowInstance struct {
	instance
	forms []*instance
}

type modeInstance struct {
	instance
	windows []*windowInstance
}

func (m *modeInstance) activeWindow() *windowInstance {
	if len(m.windows) == 0 {
		return nil
	}
	return m.windows[len(m.windows)-1]
}

func (w *windowInstance) activeForm() *instance {
	if len(w.forms) == 0 {
		return nil
	}
	return w.forms[len(w.forms)-1]
}

type op int

const (
	opPushMode op = iota
	opPopMode
	opPushWindow
	opPopWindow
	opPushForm
	opClearForm
	opShutdown
)

func (o op) String() string {
	return [...]string{"push_mode", "pop_mode", "push_window", "pop_window", "push_form", "clear_form", "shutdown"}[o]
}

type request struct {
	op      op
	id      ID
	data    any
	hasData bool
}

// Machine owns the three nested stacks: modes, each mode's windows and each
// window's forms. The top of every stack is its active element.
//
// While a Batch is running, transition requests are queued and applied in
// request order once the batch function returns, so nothing inside the batch
// observes a half-transitioned stack.
type Machine struct {
	reg   *Registry
	log   *zap.Logger
	modes []*modeInstance

	started   bool
	deferring bool
	queue     []request
}

func NewMachine(reg *Registry, log *zap.Logger) *Machine {
	return &Machine{
		reg:   reg,
		log:   log,
		modes: make([]*modeInstance, 0, 8),
		queue: make([]request, 0, 8),
	}
}

func (m *Machine) activeMode() *modeInstance {
	if len(m.modes) == 0 {
		return nil
	}
	return m.modes[len(m.modes)-1]
}

// PushMode instantiates the mode with its own user data and makes it active.
func (m *Machine) PushMode(id ID) error {
	return m.submit(request{op: opPushMode, id: id})
}

// PushModeWith is PushMode with caller-supplied user data.
func (m *Machine) PushModeWith(id ID, data any) error {
	return m.submit(request{op: opPushMode, id: id, data: data, hasData: true})
}

// PopMode destroys the active mode. Popping the last mode terminates the machine.
func (m *Machine) PopMode() error { return m.submit(request{op: opPopMode}) }

func (m *Machine) PushWindow(id ID) error { return m.submit(request{op: opPushWindow, id: id}) }
func (m *Machine) PopWindow() error       { return m.submit(request{op: opPopWindow}) }
func (m *Machine) PushForm(id ID) error   { return m.submit(request{op: opPushForm, id: id}) }
func (m *Machine) ClearForm() error       { return m.submit(request{op: opClearForm}) }

// Shutdown pops every mode.
func (m *Machine) Shutdown() { _ = m.submit(request{op: opShutdown}) }

func (m *Machine) submit(req request) error {
	if m.deferring {
		m.queue = append(m.queue, req)
		m.log.Debug("transition queued", zap.Stringer("op", req.op), zap.String("id", string(req.id)))
		return nil
	}
	return m.apply(req)
}

func (m *Machine) apply(req request) error {
	switch req.op {
	case opPushMode:
		return m.pushMode(req.id, req.data, req.hasData)
	case opPopMode:
		return m.popMode()
	case opPushWindow:
		return m.pushWindow(req.id)
	case opPopWindow:
		return m.popWindow()
	case opPushForm:
		return m.pushForm(req.id)
	case opClearForm:
		return m.clearForm()
	case opShutdown:
		for len(m.modes) > 0 {
			if err := m.popMode(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown transition %d", req.op)
	}
}

// Batch runs fn with transitions deferred, then applies the queue. Errors of
// individual queued transitions are logged and joined; a failed transition
// does not stop the ones queued after it. If fn panics the queue is dropped
// and the panic propagates.
func (m *Machine) Batch(fn func()) error {
	if m.deferring {
		fn()
		return nil
	}
	m.deferring = true
	done := false
	func() {
		defer func() {
			m.deferring = false
			// A panicking fn leaves nothing behind for the next batch.
			if !done {
				m.queue = m.queue[:0]
			}
		}()
		fn()
		done = true
	}()

	pending := m.queue
	m.queue = make([]request, 0, cap(pending))
	var errs []error
	for _, req := range pending {
		if err := m.apply(req); err != nil {
			m.log.Warn("queued transition failed",
				zap.Stringer("op", req.op),
				zap.String("id", string(req.id)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Machine) pushMode(id ID, data any, hasData bool) error {
	d, err := m.reg.Resolve(id)
	if err != nil {
		return fmt.Errorf("push mode: %w", err)
	}
	if d.Kind != KindMode {
		return fmt.Errorf("push mode %s: is a %s: %w", id, d.Kind, fault.ErrOwnershipMismatch)
	}
	if !hasData && d.Data != nil {
		data = d.Data()
	}
	ctx := &Context{Data: data, Mode: id, Log: m.log, machine: m}
	st, err := m.reg.construct(d, ctx)
	if err != nil {
		return fmt.Errorf("push mode: %w", err)
	}
	mi := &modeInstance{instance: instance{desc: d, state: st, ctx: ctx}}
	if d.Root != "" {
		wi, err := m.buildWindow(mi, d.Root)
		if err != nil {
			destroy(st)
			return fmt.Errorf("push mode %s: %w", id, err)
		}
		mi.windows = append(mi.windows, wi)
	}

	if prev := m.activeMode(); prev != nil {
		if s, ok := prev.state.(Suspender); ok {
			s.OnSuspend()
		}
	}
	m.modes = append(m.modes, mi)
	m.started = true
	m.log.Debug("mode pushed", zap.String("mode", string(id)), zap.Int("depth", len(m.modes)))
	return nil
}

func (m *Machine) popMode() error {
	mi := m.activeMode()
	if mi == nil {
		return fmt.Errorf("pop mode: %w", fault.ErrEmptyStack)
	}
	for len(mi.windows) > 0 {
		m.dropWindow(mi)
	}
	destroy(mi.state)
	m.modes = m.modes[:len(m.modes)-1]
	m.log.Debug("mode popped", zap.String("mode", string(mi.desc.ID)), zap.Int("depth", len(m.modes)))

	if next := m.activeMode(); next != nil {
		if r, ok := next.state.(Resumer); ok {
			r.OnResume()
		}
	} else {
		m.log.Info("mode stack exhausted")
	}
	return nil
}

func (m *Machine) buildWindow(mi *modeInstance, id ID) (*windowInstance, error) {
	d, err := m.reg.Resolve(id)
	if err != nil {
		return nil, err
	}
	if d.Kind != KindWindow {
		return nil, fmt.Errorf("%s is a %s, not a window: %w", id, d.Kind, fault.ErrOwnershipMismatch)
	}
	if d.Mode != mi.desc.ID {
		return nil, fmt.Errorf("window %s belongs to mode %s, active mode is %s: %w", id, d.Mode, mi.desc.ID, fault.ErrOwnershipMismatch)
	}
	ctx := &Context{Data: mi.ctx.Data, Mode: mi.desc.ID, Window: id, Log: m.log, machine: m}
	st, err := m.reg.construct(d, ctx)
	if err != nil {
		return nil, err
	}
	return &windowInstance{instance: instance{desc: d, state: st, ctx: ctx}}, nil
}

func (m *Machine) pushWindow(id ID) error {
	mi := m.activeMode()
	if mi == nil {
		return fmt.Errorf("push window %s: no active mode: %w", id, fault.ErrOwnershipMismatch)
	}
	wi, err := m.buildWindow(mi, id)
	if err != nil {
		return fmt.Errorf("push window: %w", err)
	}
	mi.windows = append(mi.windows, wi)
	return nil
}

func (m *Machine) popWindow() error {
	mi := m.activeMode()
	if mi == nil || len(mi.windows) == 0 {
		return fmt.Errorf("pop window: %w", fault.ErrEmptyStack)
	}
	m.dropWindow(mi)
	return nil
}

func (m *Machine) dropWindow(mi *modeInstance) {
	wi := mi.windows[len(mi.windows)-1]
	for i := len(wi.forms) - 1; i >= 0; i-- {
		destroy(wi.forms[i].state)
	}
	wi.forms = nil
	destroy(wi.state)
	mi.windows = mi.windows[:len(mi.windows)-1]
}

func (m *Machine) pushForm(id ID) error {
	d, err := m.reg.Resolve(id)
	if err != nil {
		return fmt.Errorf("push form: %w", err)
	}
	if d.Kind != KindForm {
		return fmt.Errorf("push form %s: is a %s: %w", id, d.Kind, fault.ErrOwnershipMismatch)
	}
	mi := m.activeMode()
	if mi == nil {
		return fmt.Errorf("push form %s: mode %s is not active: %w", id, d.Mode, fault.ErrOwnershipMismatch)
	}
	if d.Mode != mi.desc.ID {
		return fmt.Errorf("push form %s: belongs to mode %s, active mode is %s: %w", id, d.Mode, mi.desc.ID, fault.ErrOwnershipMismatch)
	}
	wi := mi.activeWindow()
	if wi == nil {
		return fmt.Errorf("push form %s: mode %s has no open window: %w", id, mi.desc.ID, fault.ErrOwnershipMismatch)
	}
	if d.Window != "" && d.Window != wi.desc.ID {
		return fmt.Errorf("push form %s: belongs to window %s, active window is %s: %w", id, d.Window, wi.desc.ID, fault.ErrOwnershipMismatch)
	}
	if top := wi.activeForm(); top != nil && top.desc.ID == id {
		return nil
	}

	ctx := &Context{Data: mi.ctx.Data, Mode: mi.desc.ID, Window: wi.desc.ID, Log: m.log, machine: m}
	st, err := m.reg.construct(d, ctx)
	if err != nil {
		return fmt.Errorf("push form: %w", err)
	}
	if top := wi.activeForm(); top != nil {
		if s, ok := top.state.(Suspender); ok {
			s.OnSuspend()
		}
	}
	wi.forms = append(wi.forms, &instance{desc: d, state: st, ctx: ctx})
	return nil
}

func (m *Machine) clearForm() error {
	mi := m.activeMode()
	if mi == nil {
		return fmt.Errorf("clear form: %w", fault.ErrEmptyStack)
	}
	wi := mi.activeWindow()
	if wi == nil || len(wi.forms) == 0 {
		return fmt.Errorf("clear form: %w", fault.ErrEmptyStack)
	}
	fi := wi.forms[len(wi.forms)-1]
	wi.forms = wi.forms[:len(wi.forms)-1]
	destroy(fi.state)
	if top := wi.activeForm(); top != nil {
		if r, ok := top.state.(Resumer); ok {
			r.OnResume()
		}
	}
	return nil
}

func destroy(st State) {
	if d, ok := st.(Destroyer); ok {
		d.OnDestroy()
	}
}

// DispatchInput routes one line to the active form, falling back to the
// active mode. fault.ErrUnhandledInput means nobody took the line and the
// same prompt stays active.
func (m *Machine) DispatchInput(line string) error {
	mi := m.activeMode()
	if mi == nil {
		return fault.ErrUnhandledInput
	}
	if wi := mi.activeWindow(); wi != nil {
		if fi := wi.activeForm(); fi != nil {
			if h, ok := fi.state.(InputHandler); ok {
				return m.safeInput(fi.desc.ID, h, line)
			}
		}
	}
	if h, ok := mi.state.(InputHandler); ok {
		return m.safeInput(mi.desc.ID, h, line)
	}
	return fault.ErrUnhandledInput
}

// safeInput keeps a single faulty handler from taking down the game loop.
func (m *Machine) safeInput(id ID, h InputHandler, line string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("input handler panic recovered",
				zap.String("state", string(id)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("input %s: %w: panic: %v", id, fault.ErrConstructionFailure, rec)
		}
	}()
	if err := h.OnInput(line); err != nil {
		return fmt.Errorf("input %s: %w", id, err)
	}
	return nil
}

// Render returns the active form's prompt, or the active mode's when no form is open.
func (m *Machine) Render() string {
	mi := m.activeMode()
	if mi == nil {
		return ""
	}
	if wi := mi.activeWindow(); wi != nil {
		if fi := wi.activeForm(); fi != nil {
			return fi.state.Render()
		}
	}
	return mi.state.Render()
}

// Terminated reports whether the mode stack was emptied after a first push.
func (m *Machine) Terminated() bool { return m.started && len(m.modes) == 0 }

// Pending returns the number of queued transitions.
func (m *Machine) Pending() int { return len(m.queue) }

// Depth returns the number of modes on the stack.
func (m *Machine) Depth() int { return len(m.modes) }

// ActiveMode returns the ID of the active mode, or "".
func (m *Machine) ActiveMode() ID {
	if mi := m.activeMode(); mi != nil {
		return mi.desc.ID
	}
	return ""
}

// ActiveWindow returns the ID of the active mode's active window, or "".
func (m *Machine) ActiveWindow() ID {
	if mi := m.activeMode(); mi != nil {
		if wi := mi.activeWindow(); wi != nil {
			return wi.desc.ID
		}
	}
	return ""
}

// ActiveForm returns the ID of the active form, or "".
func (m *Machine) ActiveForm() ID {
	if mi := m.activeMode(); mi != nil {
		if wi := mi.activeWindow(); wi != nil {
			if fi := wi.activeForm(); fi != nil {
				return fi.desc.ID
			}
		}
	}
	return ""
}

// FormDepth returns the size of the active window's form stack.
func (m *Machine) FormDepth() int {
	if mi := m.activeMode(); mi != nil {
		if wi := mi.activeWindow(); wi != nil {
			return len(wi.forms)
		}
	}
	return 0
}

// WindowDepth returns the size of the active mode's window stack.
func (m *Machine) WindowDepth() int {
	if mi := m.activeMode(); mi != nil {
		return len(mi.windows)
	}
	return 0
}
