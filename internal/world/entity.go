package world

import "fmt"

// EntityKind tags the concrete type behind an Entity.
type EntityKind int

const (
	KindPerson EntityKind = iota
	KindVehicle
)

func (k EntityKind) String() string {
	switch k {
	case KindPerson:
		return "person"
	case KindVehicle:
		return "vehicle"
	default:
		return fmt.Sprintf("EntityKind(%d)", int(k))
	}
}

// Entity is a closed sum type: only *Person and *Vehicle implement it.
// Events switch on the concrete type instead of asserting it.
type Entity interface {
	Kind() EntityKind
	Name() string
	isEntity()
}

func (*Person) isEntity()  {}
func (*Vehicle) isEntity() {}

func (*Person) Kind() EntityKind  { return KindPerson }
func (*Vehicle) Kind() EntityKind { return KindVehicle }
