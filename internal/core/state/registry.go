package state

import (
	"fmt"

	"github.com/trailgo/trail/internal/core/fault"
	"go.uber.org/zap"
)

// ID names a mode, window or form. IDs are unique across the registry.
type ID string

// Kind tells the machine which stack a descriptor lives on.
type Kind int

const (
	KindMode Kind = iota
	KindWindow
	KindForm
)

func (k Kind) String() string {
	switch k {
	case KindMode:
		return "mode"
	case KindWindow:
		return "window"
	case KindForm:
		return "form"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Constructor builds a state bound to the owner's context.
type Constructor func(ctx *Context) (State, error)

// Descriptor is the declarative metadata attached to every state type.
type Descriptor struct {
	ID   ID
	Kind Kind

	// Mode is the owning mode. Modes own themselves; Register fills it in.
	Mode ID
	// Window is the owning window of a form. Empty means the form may sit on
	// any window of its mode.
	Window ID
	// Root is the window a mode opens when pushed. Modes only.
	Root ID
	// Data creates the user-data context shared by a mode, its windows and
	// its forms. Modes only; nil gives a nil context.
	Data func() any

	// New is nil for abstract states, which can be registered as prefabs but
	// never instantiated.
	New Constructor
}

// Abstract reports whether the descriptor can be instantiated.
func (d Descriptor) Abstract() bool { return d.New == nil }

// Registry maps state IDs to descriptors. It is filled once during startup
// and sealed before the simulation accepts input, after which it is read-only.
type Registry struct {
	byID   map[ID]*Descriptor
	order  []ID
	sealed bool
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		byID: make(map[ID]*Descriptor, 64),
		log:  log,
	}
}

// Register adds a descriptor. The same ID may only be registered once.
func (r *Registry) Register(d Descriptor) error {
	if r.sealed {
		return fmt.Errorf("register %s: %w", d.ID, fault.ErrRegistrySealed)
	}
	if d.ID == "" {
		return fmt.Errorf("register: empty state id: %w", fault.ErrUnknownState)
	}
	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("register %s: %w", d.ID, fault.ErrDuplicateIdentifier)
	}
	if d.Kind == KindMode {
		d.Mode = d.ID
	}
	desc := d
	r.byID[d.ID] = &desc
	r.order = append(r.order, d.ID)
	r.log.Debug("state registered",
		zap.String("id", string(d.ID)),
		zap.Stringer("kind", d.Kind),
		zap.String("mode", string(d.Mode)),
		zap.String("window", string(d.Window)),
	)
	return nil
}

// Resolve returns a copy of the descriptor registered under id.
func (r *Registry) Resolve(id ID) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("resolve %s: %w", id, fault.ErrUnknownState)
	}
	return *d, nil
}

// Instantiate constructs the state registered under id, bound to ctx.
// Nothing is constructed when id is unknown or abstract.
func (r *Registry) Instantiate(id ID, ctx *Context) (State, error) {
	d, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	return r.construct(d, ctx)
}

func (r *Registry) construct(d Descriptor, ctx *Context) (st State, err error) {
	if d.Abstract() {
		return nil, fmt.Errorf("instantiate %s: %w", d.ID, fault.ErrAbstractState)
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("state constructor panic recovered",
				zap.String("id", string(d.ID)),
				zap.Any("panic", rec),
			)
			st = nil
			err = fmt.Errorf("instantiate %s: %w: panic: %v", d.ID, fault.ErrConstructionFailure, rec)
		}
	}()
	st, err = d.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w: %w", d.ID, fault.ErrConstructionFailure, err)
	}
	if st == nil {
		return nil, fmt.Errorf("instantiate %s: %w: constructor returned nil", d.ID, fault.ErrConstructionFailure)
	}
	return st, nil
}

// Seal validates every ownership reference and freezes the registry.
func (r *Registry) Seal() error {
	if r.sealed {
		return nil
	}
	for _, id := range r.order {
		if err := r.validate(r.byID[id]); err != nil {
			return err
		}
	}
	r.sealed = true
	r.log.Info("state registry sealed", zap.Int("states", len(r.order)))
	return nil
}

func (r *Registry) validate(d *Descriptor) error {
	switch d.Kind {
	case KindMode:
		if d.Window != "" {
			return fmt.Errorf("mode %s declares owning window %s: %w", d.ID, d.Window, fault.ErrOwnershipMismatch)
		}
		if d.Root != "" {
			if err := r.expectWindowOf(d.ID, d.Root); err != nil {
				return fmt.Errorf("mode %s root: %w", d.ID, err)
			}
		}
	case KindWindow:
		if err := r.expectMode(d.Mode); err != nil {
			return fmt.Errorf("window %s: %w", d.ID, err)
		}
	case KindForm:
		if err := r.expectMode(d.Mode); err != nil {
			return fmt.Errorf("form %s: %w", d.ID, err)
		}
		if d.Window != "" {
			if err := r.expectWindowOf(d.Mode, d.Window); err != nil {
				return fmt.Errorf("form %s: %w", d.ID, err)
			}
		}
	default:
		return fmt.Errorf("state %s has invalid kind %s: %w", d.ID, d.Kind, fault.ErrOwnershipMismatch)
	}
	return nil
}

func (r *Registry) expectMode(id ID) error {
	m, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("owning mode %s: %w", id, fault.ErrUnknownState)
	}
	if m.Kind != KindMode {
		return fmt.Errorf("owner %s is a %s, not a mode: %w", id, m.Kind, fault.ErrOwnershipMismatch)
	}
	return nil
}

func (r *Registry) expectWindowOf(mode, window ID) error {
	w, ok := r.byID[window]
	if !ok {
		return fmt.Errorf("owning window %s: %w", window, fault.ErrUnknownState)
	}
	if w.Kind != KindWindow {
		return fmt.Errorf("owner %s is a %s, not a window: %w", window, w.Kind, fault.ErrOwnershipMismatch)
	}
	if w.Mode != mode {
		return fmt.Errorf("window %s belongs to mode %s, not %s: %w", window, w.Mode, mode, fault.ErrOwnershipMismatch)
	}
	return nil
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool { return r.sealed }

// Count returns the number of registered states.
func (r *Registry) Count() int { return len(r.order) }

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}
