package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

func TestSpawnPopulation(t *testing.T) {
	w := world.New()
	cfg := DefaultPopulation()
	created := NewSpawner(w, cfg, 42).SpawnPopulation()

	total := cfg.People + cfg.Farms + cfg.Wells + cfg.CloningCenters + 1
	assert.Equal(t, total, created)
	assert.Equal(t, cfg.People, w.Consumers.Len())
	assert.Equal(t, total-1, w.Producers.Len(), "everyone but the pool produces")
	assert.Equal(t, 1, w.Pools.Len())

	for _, a := range w.WithConsumer() {
		food := a.Storage.Amount(economy.ResourceFood)
		assert.GreaterOrEqual(t, food, cfg.Person.FoodMin, a.Name)
		assert.LessOrEqual(t, food, cfg.Person.FoodMin+cfg.Person.FoodSpread, a.Name)
	}
}

func TestSpawnIsDeterministic(t *testing.T) {
	food := func(seed int64) []float64 {
		w := world.New()
		NewSpawner(w, DefaultPopulation(), seed).SpawnPopulation()
		var out []float64
		for _, a := range w.WithConsumer() {
			out = append(out, a.Storage.Amount(economy.ResourceFood))
		}
		return out
	}
	assert.Equal(t, food(9), food(9))
}

func TestSpawnPerson(t *testing.T) {
	w := world.New()
	s := NewSpawner(w, DefaultPopulation(), 1)
	id := s.SpawnPerson("MAN-test", 4, 3, 1000)

	a, ok := w.Agent(id)
	require.True(t, ok)
	assert.Equal(t, "MAN-test", a.Name)
	assert.Equal(t, economy.Credits(1000), a.Wallet.Balance())
	assert.Equal(t, 6, a.Needs.Len())
	assert.Equal(t, "have water for tomorrow", a.Needs.All()[0].Name)
	require.NotNil(t, a.Producer)
	assert.True(t, a.Producer.Needs.IsNothing())
	assert.False(t, a.Storage.WillFit(economy.Pile{Resource: economy.ResourceManDay, Amount: 2}), "labor can't be stockpiled")

	clone, _ := w.Agent(s.SpawnClone())
	assert.Equal(t, "Clone-1", clone.Name)
	assert.True(t, clone.Wallet.Balance().IsZero())
}

func TestSpawnWorkplaces(t *testing.T) {
	w := world.New()
	cfg := DefaultPopulation()
	s := NewSpawner(w, cfg, 1)

	farm, _ := w.Agent(s.SpawnFarm("Farm-0", cfg.Farm))
	assert.Equal(t, economy.ResourceManDay, farm.Producer.Needs.Resource)
	assert.Equal(t, economy.ResourceFood, farm.Producer.Gives.Resource)
	assert.False(t, farm.Storage.WillFit(economy.Pile{Resource: economy.ResourceFood, Amount: cfg.Farm.FoodStorage + 1}))
	assert.True(t, farm.Needs.Covers(economy.ResourceManDay))

	center, _ := w.Agent(s.SpawnCloningCenter("Clone Center-0", cfg.Cloning))
	assert.Equal(t, economy.ResourceGrownHuman, center.Producer.Gives.Resource)
	assert.Equal(t, 3, center.Needs.Len())
	assert.True(t, center.Storage.WillFit(economy.Pile{Resource: economy.ResourceGrownHuman, Amount: 100}))
}
