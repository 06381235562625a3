// Agent spawning: creates the initial population and the people grown in
// cloning centers.
package agents

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// Spawner creates agents in a world.
type Spawner struct {
	world  *world.World
	cfg    PopulationConfig
	noise  opensimplex.Noise
	clones int
}

// NewSpawner creates a spawner. The seed drives the endowment noise so the
// same seed yields the same starting stocks.
func NewSpawner(w *world.World, cfg PopulationConfig, seed int64) *Spawner {
	return &Spawner{
		world: w,
		cfg:   cfg,
		noise: opensimplex.NewNormalized(seed + 300),
	}
}

// SpawnPopulation creates every agent of the configured population plus the
// inheritance pool, and returns the number of entities created.
func (s *Spawner) SpawnPopulation() int {
	before := s.world.Len()
	for i := 0; i < s.cfg.People; i++ {
		food := s.startingFood(i)
		s.SpawnPerson(fmt.Sprintf("MAN-%d", i), food, s.cfg.Person.WaterAmount, s.cfg.Person.Money)
	}
	for i := 0; i < s.cfg.Farms; i++ {
		s.SpawnFarm(fmt.Sprintf("Farm-%d", i), s.cfg.Farm)
	}
	for i := 0; i < s.cfg.Wells; i++ {
		s.SpawnWell(fmt.Sprintf("Well-%d", i), s.cfg.Well)
	}
	for i := 0; i < s.cfg.CloningCenters; i++ {
		s.SpawnCloningCenter(fmt.Sprintf("Clone Center-%d", i), s.cfg.Cloning)
	}
	s.SpawnPool()
	return s.world.Len() - before
}

// startingFood spreads food across people with smooth noise over their
// index: neighbors get similar stocks, the whole range is covered.
func (s *Spawner) startingFood(i int) float64 {
	n := s.noise.Eval2(float64(i)*0.15, 0.5)
	return s.cfg.Person.FoodMin + math.Floor(n*s.cfg.Person.FoodSpread)
}

// SpawnPerson creates a person with the configured consumption.
func (s *Spawner) SpawnPerson(name string, food, water float64, money int64) world.EntityID {
	p := s.cfg.Person
	w := s.world
	id := w.Create()

	storage := economy.NewStorage()
	_ = storage.Add(economy.Pile{Resource: economy.ResourceFood, Amount: food})
	_ = storage.Add(economy.Pile{Resource: economy.ResourceWater, Amount: water})
	// Labor can't be stockpiled.
	storage.SetLimit(economy.One(economy.ResourceManDay))

	w.Details.Set(id, world.Details{Name: name})
	w.Wallets.Set(id, economy.NewWallet(economy.Credits(money)))
	w.Consumers.Set(id, world.Consumer{Needs: []economy.Pile{
		{Resource: economy.ResourceFood, Amount: p.FoodConsumption},
		{Resource: economy.ResourceWater, Amount: p.WaterConsumption},
	}})
	// Man-days are produced from nothing.
	w.Producers.Set(id, world.Producer{
		Needs: economy.Pile{Resource: economy.ResourceNothing},
		Gives: economy.One(economy.ResourceManDay),
	})
	w.Storages.Set(id, storage)
	w.NeedSets.Set(id, PersonNeeds(p.FoodConsumption, p.WaterConsumption))
	return id
}

// SpawnClone creates a person grown in a cloning center. Clones start
// without money.
func (s *Spawner) SpawnClone() world.EntityID {
	s.clones++
	return s.SpawnPerson(fmt.Sprintf("Clone-%d", s.clones), s.cfg.Clone.Food, s.cfg.Clone.Water, 0)
}

// SpawnFarm creates a farm.
func (s *Spawner) SpawnFarm(name string, c FarmConfig) world.EntityID {
	return s.spawnWorkplace(name, c.Money,
		economy.Pile{Resource: economy.ResourceManDay, Amount: c.LabourConsumption},
		economy.Pile{Resource: economy.ResourceFood, Amount: c.FoodProduction},
		c.FoodStorage, WorkerNeeds())
}

// SpawnWell creates a well.
func (s *Spawner) SpawnWell(name string, c WellConfig) world.EntityID {
	return s.spawnWorkplace(name, c.Money,
		economy.Pile{Resource: economy.ResourceManDay, Amount: c.LabourConsumption},
		economy.Pile{Resource: economy.ResourceWater, Amount: c.WaterProduction},
		c.WaterStorage, WorkerNeeds())
}

// SpawnCloningCenter creates a cloning center turning food into grown humans.
func (s *Spawner) SpawnCloningCenter(name string, c CloningConfig) world.EntityID {
	id := s.spawnWorkplace(name, c.Money,
		economy.Pile{Resource: economy.ResourceFood, Amount: c.EmbryoFoodCost},
		economy.One(economy.ResourceGrownHuman),
		0, CloningNeeds(c.EmbryoFoodCost))
	st, _ := s.world.Storages.Get(id)
	st.SetLimit(economy.Pile{Resource: economy.ResourceEmbryo, Amount: c.EmbryoStorage})
	return id
}

// spawnWorkplace creates a producer with needs. A positive outputLimit caps
// how much output it can hold.
func (s *Spawner) spawnWorkplace(name string, money int64, in, out economy.Pile, outputLimit float64, needs economy.NeedSet) world.EntityID {
	w := s.world
	id := w.Create()

	storage := economy.NewStorage()
	if outputLimit > 0 {
		storage.SetLimit(economy.Pile{Resource: out.Resource, Amount: outputLimit})
	}

	w.Details.Set(id, world.Details{Name: name})
	w.Wallets.Set(id, economy.NewWallet(economy.Credits(money)))
	w.Producers.Set(id, world.Producer{Needs: in, Gives: out})
	w.Storages.Set(id, storage)
	w.NeedSets.Set(id, needs)
	return id
}

// SpawnPool creates the inheritance pool that collects the estates of the dead.
func (s *Spawner) SpawnPool() world.EntityID {
	w := s.world
	id := w.Create()
	w.Details.Set(id, world.Details{Name: "Insurance Pool"})
	w.Storages.Set(id, economy.NewStorage())
	w.Wallets.Set(id, economy.NewWallet(economy.Money{}))
	w.Pools.Set(id, world.Marker{})
	return id
}
