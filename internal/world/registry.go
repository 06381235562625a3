// Package world is the entity registry: entity ids plus typed component
// tables, and the per-turn context handed to every phase.
package world

import (
	"github.com/talgya/mini-market/internal/economy"
)

// EntityID identifies an entity. Orders refer to their owner by the same id.
type EntityID = economy.OwnerID

// Details names an entity for logs and summaries.
type Details struct {
	Name string
}

// Producer converts Needs into Gives during production.
// A Nothing input means the output is made from nothing (labor).
type Producer struct {
	Needs economy.Pile
	Gives economy.Pile
}

// Consumer eats its piles every turn.
type Consumer struct {
	Needs []economy.Pile
}

// Marker is the component type of presence-only tags.
type Marker struct{}

// World holds every entity and its components.
type World struct {
	nextID  EntityID
	nextSeq uint64
	alive   map[EntityID]struct{}

	Details   Table[Details]
	Wallets   Table[*economy.Wallet]
	Storages  Table[*economy.Storage]
	NeedSets  Table[economy.NeedSet]
	Producers Table[Producer]
	Consumers Table[Consumer]
	Orders    Table[*economy.Order]

	Terminated Table[Marker] // Removed by cleanup at the end of the turn
	Hungry     Table[Marker] // Went without food this turn
	Pools      Table[Marker] // Inheritance pool
}

// New returns an empty world.
func New() *World {
	return &World{nextID: 1, alive: make(map[EntityID]struct{})}
}

// Create allocates a new entity id.
func (w *World) Create() EntityID {
	id := w.nextID
	w.nextID++
	w.alive[id] = struct{}{}
	return id
}

// Exists reports whether id has been created and not removed.
func (w *World) Exists(id EntityID) bool {
	_, ok := w.alive[id]
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.alive) }

// Remove deletes id and all of its components.
func (w *World) Remove(id EntityID) {
	delete(w.alive, id)
	w.Details.Delete(id)
	w.Wallets.Delete(id)
	w.Storages.Delete(id)
	w.NeedSets.Delete(id)
	w.Producers.Delete(id)
	w.Consumers.Delete(id)
	w.Orders.Delete(id)
	w.Terminated.Delete(id)
	w.Hungry.Delete(id)
	w.Pools.Delete(id)
}

// PlaceOrder stores o as its own entity and stamps its sequence number.
func (w *World) PlaceOrder(o *economy.Order) EntityID {
	w.nextSeq++
	o.Seq = w.nextSeq
	id := w.Create()
	w.Orders.Set(id, o)
	return id
}

// Terminate marks id for removal by cleanup.
func (w *World) Terminate(id EntityID) {
	w.Terminated.Set(id, Marker{})
}

// IsTerminated reports whether id is marked for removal.
func (w *World) IsTerminated(id EntityID) bool {
	return w.Terminated.Has(id)
}

// Agent is a view of one entity's economic components. Pointers are nil
// and Needs is empty when the entity lacks the component.
type Agent struct {
	ID       EntityID
	Name     string
	Wallet   *economy.Wallet
	Storage  *economy.Storage
	Needs    economy.NeedSet
	Producer *Producer
	Consumer *Consumer

	hasNeeds bool
}

// HasNeeds reports whether the entity carries a NeedSet.
func (a Agent) HasNeeds() bool { return a.hasNeeds }

// Agent fetches the economic components of id.
func (w *World) Agent(id EntityID) (Agent, bool) {
	if !w.Exists(id) {
		return Agent{}, false
	}
	a := Agent{ID: id}
	if d, ok := w.Details.Get(id); ok {
		a.Name = d.Name
	}
	a.Wallet, _ = w.Wallets.Get(id)
	a.Storage, _ = w.Storages.Get(id)
	a.Needs, a.hasNeeds = w.NeedSets.Get(id)
	if p, ok := w.Producers.Get(id); ok {
		a.Producer = &p
	}
	if c, ok := w.Consumers.Get(id); ok {
		a.Consumer = &c
	}
	return a, true
}

func (w *World) collect(ids []EntityID, keep func(Agent) bool) []Agent {
	var out []Agent
	for _, id := range ids {
		a, ok := w.Agent(id)
		if ok && keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// WithNeeds returns entities having Details, Storage, NeedSet and Wallet.
func (w *World) WithNeeds() []Agent {
	return w.collect(w.NeedSets.IDs(), func(a Agent) bool {
		return w.Details.Has(a.ID) && a.Storage != nil && a.Wallet != nil
	})
}

// WithProducer returns entities having Details, Storage, Producer and Wallet.
func (w *World) WithProducer() []Agent {
	return w.collect(w.Producers.IDs(), func(a Agent) bool {
		return w.Details.Has(a.ID) && a.Storage != nil && a.Wallet != nil
	})
}

// WithConsumer returns entities having Details, Storage and Consumer.
func (w *World) WithConsumer() []Agent {
	return w.collect(w.Consumers.IDs(), func(a Agent) bool {
		return w.Details.Has(a.ID) && a.Storage != nil
	})
}

// Holders returns entities having Details, Storage and Wallet.
func (w *World) Holders() []Agent {
	return w.collect(w.Wallets.IDs(), func(a Agent) bool {
		return w.Details.Has(a.ID) && a.Storage != nil
	})
}

// OrderEntry pairs an order with its entity id.
type OrderEntry struct {
	ID    EntityID
	Order *economy.Order
}

// AllOrders returns every order in creation order.
func (w *World) AllOrders() []OrderEntry {
	entries := make([]OrderEntry, 0, w.Orders.Len())
	w.Orders.Each(func(id EntityID, o *economy.Order) {
		entries = append(entries, OrderEntry{ID: id, Order: o})
	})
	return entries
}
