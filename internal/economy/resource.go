package economy

import "fmt"

// Resource enumerates tradable and consumable kinds.
type Resource uint8

const (
	ResourceNothing    Resource = iota // "No requirement" sentinel, never traded
	ResourceManDay                     // One day of labor
	ResourceFood
	ResourceWater
	ResourceLuxury
	ResourceEmbryo
	ResourceGrownHuman
	ResourceSoul
)

// NumResources is the number of resource kinds, the sentinel included.
const NumResources = 8

var resourceNames = [NumResources]string{
	"NOTHING", "MAN_DAY", "FOOD", "WATER", "LUXURY", "EMBRYO", "GROWN_HUMAN", "SOUL",
}

// Resources lists every resource in declaration order. Exchange walks
// resources in this order.
func Resources() []Resource {
	all := make([]Resource, NumResources)
	for i := range all {
		all[i] = Resource(i)
	}
	return all
}

func (r Resource) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return fmt.Sprintf("RESOURCE(%d)", uint8(r))
}

// ParseResource maps a name such as "FOOD" back to its Resource.
func ParseResource(name string) (Resource, bool) {
	for i, n := range resourceNames {
		if n == name {
			return Resource(i), true
		}
	}
	return ResourceNothing, false
}

// Pile is an amount of one resource.
type Pile struct {
	Resource Resource `json:"resource" yaml:"resource"`
	Amount   float64  `json:"amount" yaml:"amount"`
}

// One returns a pile of a single unit.
func One(r Resource) Pile {
	return Pile{Resource: r, Amount: 1}
}

// IsNothing reports whether the pile asks for nothing at all.
func (p Pile) IsNothing() bool {
	return p.Resource == ResourceNothing
}

func (p Pile) String() string {
	return fmt.Sprintf("%g %s", p.Amount, p.Resource)
}
