package scripting

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/trailgo/trail/internal/director"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM that hosts scripted events.
// Single-goroutine access only (game loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	events []*Event
	byID   map[string]*Event
	// rng backs the roll() builtin while a script function runs.
	rng *rand.Rand
}

// NewEngine creates a Lua engine and loads all event scripts under
// scriptsDir/events. A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, byID: make(map[string]*Event)}
	vm.SetGlobal("register_event", vm.NewFunction(e.luaRegisterEvent))
	vm.SetGlobal("roll", vm.NewFunction(e.luaRoll))

	if err := e.loadDir(filepath.Join(scriptsDir, "events")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load event scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua, for embedding scripts and for tests.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// luaRegisterEvent implements register_event{...}.
func (e *Engine) luaRegisterEvent(L *lua.LState) int {
	t := L.CheckTable(1)
	ev := &Event{
		ID:       lStr(t, "id"),
		Category: lStr(t, "category"),
		Weight:   lInt(t, "weight"),
		Requires: lStr(t, "requires"),
		engine:   e,
	}
	if ev.ID == "" {
		L.ArgError(1, "event needs an id")
		return 0
	}
	if _, dup := e.byID[ev.ID]; dup {
		L.ArgError(1, fmt.Sprintf("event %q registered twice", ev.ID))
		return 0
	}
	if ev.Weight == 0 {
		ev.Weight = 1
	}
	switch ev.Requires {
	case "", "person", "vehicle":
	default:
		L.ArgError(1, fmt.Sprintf("event %q: requires must be person or vehicle", ev.ID))
		return 0
	}
	var ok bool
	if ev.execute, ok = t.RawGetString("execute").(*lua.LFunction); !ok {
		L.ArgError(1, fmt.Sprintf("event %q needs an execute function", ev.ID))
		return 0
	}
	if ev.render, ok = t.RawGetString("render").(*lua.LFunction); !ok {
		L.ArgError(1, fmt.Sprintf("event %q needs a render function", ev.ID))
		return 0
	}
	ev.applies, _ = t.RawGetString("applies").(*lua.LFunction)

	e.events = append(e.events, ev)
	e.byID[ev.ID] = ev
	return 0
}

// luaRoll implements roll(n): a uniform integer in 1..n.
func (e *Engine) luaRoll(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 1 {
		L.ArgError(1, "roll needs n >= 1")
		return 0
	}
	if e.rng == nil {
		L.RaiseError("roll called outside an event")
		return 0
	}
	L.Push(lua.LNumber(e.rng.IntN(n) + 1))
	return 1
}

// Events returns the scripted events in load order.
func (e *Engine) Events() []*Event {
	return e.events
}

// Count returns the number of scripted events loaded.
func (e *Engine) Count() int {
	return len(e.events)
}

// Register adds every scripted event to the director.
func (e *Engine) Register(d *director.Director) error {
	for _, ev := range e.events {
		cat, err := director.ParseCategory(ev.Category)
		if err != nil {
			return fmt.Errorf("script event %s: %w", ev.ID, err)
		}
		if err := d.Register(director.Record{
			ID:       ev.ID,
			Category: cat,
			Weight:   ev.Weight,
			Applies:  ev.Applies,
			Event:    ev,
		}); err != nil {
			return err
		}
	}
	return nil
}

// call runs fn protected with the snapshot's RNG bound to roll().
func (e *Engine) call(fn *lua.LFunction, rng *rand.Rand, args ...lua.LValue) (lua.LValue, error) {
	e.rng = rng
	defer func() { e.rng = nil }()
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, err
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, nil
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
