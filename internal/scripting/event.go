package scripting

import (
	"fmt"

	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/director"
	"github.com/trailgo/trail/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Event is an event defined by a Lua script. Execute returns a table of
// changes which Go validates in full before applying any of them.
type Event struct {
	ID       string
	Category string
	Weight   int
	// Requires names the source entity kind the event needs, if any.
	Requires string

	engine  *Engine
	applies *lua.LFunction
	execute *lua.LFunction
	render  *lua.LFunction
}

// changes is a validated execute result.
type changes struct {
	supplies map[world.Item]int
	cents    int
	health   int
	daysLost int
	injure   bool
	infect   bool
	kill     bool
	status   *world.VehicleStatus
	values   map[string]any
}

// Applies calls the script's applies(ctx). Errors count as not applicable.
func (ev *Event) Applies(s *director.Snapshot) bool {
	if !ev.sourceOK(s) {
		return false
	}
	if ev.applies == nil {
		return true
	}
	ret, err := ev.engine.call(ev.applies, s.RNG, ev.engine.snapshotTable(s))
	if err != nil {
		ev.engine.log.Warn("lua applies error", zap.String("event", ev.ID), zap.Error(err))
		return false
	}
	return lua.LVAsBool(ret)
}

func (ev *Event) sourceOK(s *director.Snapshot) bool {
	switch ev.Requires {
	case "person":
		p, ok := s.Source.(*world.Person)
		return ok && p.Alive()
	case "vehicle":
		_, ok := s.Source.(*world.Vehicle)
		return ok
	}
	return true
}

// Execute runs the script and applies its changes.
func (ev *Event) Execute(s *director.Snapshot) (*director.Result, error) {
	if !ev.sourceOK(s) {
		return nil, fmt.Errorf("%w: %s needs a %s source", fault.ErrEventPreconditionViolation, ev.ID, ev.Requires)
	}
	if s.World == nil || s.World.Vehicle == nil {
		return nil, fmt.Errorf("%w: %s needs a vehicle in the world", fault.ErrEventPreconditionViolation, ev.ID)
	}
	ret, err := ev.engine.call(ev.execute, s.RNG, ev.engine.snapshotTable(s))
	if err != nil {
		return nil, fmt.Errorf("%w: lua execute: %w", fault.ErrEventPreconditionViolation, err)
	}
	c, err := parseChanges(ret)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrEventPreconditionViolation, ev.ID, err)
	}
	person, _ := s.Source.(*world.Person)
	if (c.injure || c.infect || c.kill) && person == nil {
		return nil, fmt.Errorf("%w: %s: injure, infect and kill need a person source", fault.ErrEventPreconditionViolation, ev.ID)
	}
	return apply(s, person, c), nil
}

func apply(s *director.Snapshot, person *world.Person, c *changes) *director.Result {
	v := s.World.Vehicle
	res := &director.Result{Values: c.values, DaysLost: c.daysLost}
	for _, it := range world.Items {
		n, ok := c.supplies[it]
		if !ok {
			continue
		}
		if n >= 0 {
			v.Supplies.Add(it, n)
			continue
		}
		if removed := v.Supplies.Remove(it, -n); removed > 0 {
			if res.Destroyed == nil {
				res.Destroyed = make(map[world.Item]int)
			}
			res.Destroyed[it] = removed
		}
	}
	v.Cents = max(v.Cents+c.cents, 0)

	targets := v.Passengers()
	if person != nil {
		targets = []*world.Person{person}
	}
	for _, p := range targets {
		switch {
		case c.health > 0:
			p.Heal(c.health)
		case c.health < 0:
			p.Damage(-c.health)
		}
	}
	if person != nil {
		if c.injure {
			person.Injure()
		}
		if c.infect {
			person.Infect()
		}
		if c.kill {
			person.Kill()
		}
	}
	for _, p := range targets {
		if !p.Alive() {
			res.Killed = append(res.Killed, p.Name())
		}
	}
	if c.status != nil {
		v.Status = *c.status
	}
	s.World.DaysLost += c.daysLost
	return res
}

// parseChanges validates the execute return value without touching the world.
func parseChanges(v lua.LValue) (*changes, error) {
	c := &changes{values: make(map[string]any)}
	if v == lua.LNil {
		return c, nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("execute returned %s, want table", v.Type())
	}
	var err error
	t.ForEach(func(k, val lua.LValue) {
		if err != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			err = fmt.Errorf("change key %v is not a string", k)
			return
		}
		err = c.set(string(key), val)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *changes) set(key string, val lua.LValue) error {
	switch key {
	case "supplies":
		t, ok := val.(*lua.LTable)
		if !ok {
			return fmt.Errorf("supplies must be a table")
		}
		c.supplies = make(map[world.Item]int)
		var err error
		t.ForEach(func(k, n lua.LValue) {
			if err != nil {
				return
			}
			it, perr := world.ParseItem(lua.LVAsString(k))
			if perr != nil {
				err = perr
				return
			}
			num, ok := n.(lua.LNumber)
			if !ok {
				err = fmt.Errorf("supplies.%s must be a number", it)
				return
			}
			c.supplies[it] = int(num)
		})
		return err
	case "cents", "health", "days_lost":
		num, ok := val.(lua.LNumber)
		if !ok {
			return fmt.Errorf("%s must be a number", key)
		}
		switch key {
		case "cents":
			c.cents = int(num)
		case "health":
			c.health = int(num)
		default:
			if num < 0 {
				return fmt.Errorf("days_lost must not be negative")
			}
			c.daysLost = int(num)
		}
	case "injure", "infect", "kill":
		b, ok := val.(lua.LBool)
		if !ok {
			return fmt.Errorf("%s must be a boolean", key)
		}
		switch key {
		case "injure":
			c.injure = bool(b)
		case "infect":
			c.infect = bool(b)
		default:
			c.kill = bool(b)
		}
	case "status":
		st, err := parseStatus(lua.LVAsString(val))
		if err != nil {
			return err
		}
		c.status = &st
	default:
		switch x := val.(type) {
		case lua.LString:
			c.values[key] = string(x)
		case lua.LNumber:
			c.values[key] = float64(x)
		case lua.LBool:
			c.values[key] = bool(x)
		default:
			return fmt.Errorf("value %s has unsupported type %s", key, val.Type())
		}
	}
	return nil
}

func parseStatus(s string) (world.VehicleStatus, error) {
	for _, st := range []world.VehicleStatus{world.VehicleGood, world.VehicleBroken, world.VehicleStuck} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown vehicle status %q", s)
}

// Render calls render(ctx, result) with the post-execution world.
func (ev *Event) Render(s *director.Snapshot, r *director.Result) (string, error) {
	ret, err := ev.engine.call(ev.render, s.RNG, ev.engine.snapshotTable(s), ev.engine.resultTable(r))
	if err != nil {
		return "", fmt.Errorf("%w: lua render: %w", fault.ErrEventPreconditionViolation, err)
	}
	str, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: %s render returned %s, want string", fault.ErrEventPreconditionViolation, ev.ID, ret.Type())
	}
	return string(str), nil
}

// snapshotTable packs the world into a fresh read-only view for Lua.
func (e *Engine) snapshotTable(s *director.Snapshot) *lua.LTable {
	t := e.vm.NewTable()
	if s.Source != nil {
		src := e.vm.NewTable()
		src.RawSetString("kind", lua.LString(s.Source.Kind().String()))
		src.RawSetString("name", lua.LString(s.Source.Name()))
		if p, ok := s.Source.(*world.Person); ok {
			src.RawSetString("vitality", lua.LNumber(p.Vitality))
			src.RawSetString("health", lua.LString(p.Health().String()))
			src.RawSetString("injured", lua.LBool(p.Injured))
			src.RawSetString("infected", lua.LBool(p.Infected))
		}
		t.RawSetString("source", src)
	}
	w := s.World
	if w == nil {
		return t
	}
	t.RawSetString("days_lost", lua.LNumber(w.DaysLost))
	if w.Climate != nil {
		t.RawSetString("weather", lua.LString(w.Climate.Weather))
		t.RawSetString("temperature", lua.LNumber(w.Climate.TempF))
	}
	if v := w.Vehicle; v != nil {
		vt := e.vm.NewTable()
		vt.RawSetString("name", lua.LString(v.Name()))
		vt.RawSetString("cents", lua.LNumber(v.Cents))
		vt.RawSetString("odometer", lua.LNumber(v.Odometer))
		vt.RawSetString("pace", lua.LNumber(v.Pace))
		vt.RawSetString("ration", lua.LNumber(v.Ration))
		vt.RawSetString("status", lua.LString(v.Status.String()))
		vt.RawSetString("passengers", lua.LNumber(len(v.Passengers())))
		sup := e.vm.NewTable()
		for _, it := range world.Items {
			sup.RawSetString(string(it), lua.LNumber(v.Supplies.Count(it)))
		}
		vt.RawSetString("supplies", sup)
		t.RawSetString("vehicle", vt)
		if w.Trail != nil {
			t.RawSetString("miles_to_next", lua.LNumber(w.Trail.MilesToNext(v.Odometer)))
		}
	}
	return t
}

func (e *Engine) resultTable(r *director.Result) *lua.LTable {
	t := e.vm.NewTable()
	if r == nil {
		return t
	}
	t.RawSetString("days_lost", lua.LNumber(r.DaysLost))
	lost := e.vm.NewTable()
	for it, n := range r.Destroyed {
		lost.RawSetString(string(it), lua.LNumber(n))
	}
	t.RawSetString("destroyed", lost)
	killed := e.vm.NewTable()
	for _, name := range r.Killed {
		killed.Append(lua.LString(name))
	}
	t.RawSetString("killed", killed)
	for k, v := range r.Values {
		switch x := v.(type) {
		case string:
			t.RawSetString(k, lua.LString(x))
		case float64:
			t.RawSetString(k, lua.LNumber(x))
		case bool:
			t.RawSetString(k, lua.LBool(x))
		}
	}
	return t
}
