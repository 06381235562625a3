// Package agents defines the economic archetypes (people, farms, wells,
// cloning centers) and spawns them into the world.
package agents

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/economy"
)

// PersonConfig describes a person: labor producer, food and water consumer.
type PersonConfig struct {
	Money            int64   `yaml:"money"`
	FoodConsumption  float64 `yaml:"food_consumption"`
	WaterConsumption float64 `yaml:"water_consumption"`
	WaterAmount      float64 `yaml:"water_amount"`
	FoodMin          float64 `yaml:"food_min"`    // Lowest starting food
	FoodSpread       float64 `yaml:"food_spread"` // Noise-scaled extra starting food
}

// FarmConfig describes a farm: labor in, food out.
type FarmConfig struct {
	Money             int64   `yaml:"money"`
	LabourConsumption float64 `yaml:"labour_consumption"`
	FoodProduction    float64 `yaml:"food_production"`
	FoodStorage       float64 `yaml:"food_storage"`
}

// WellConfig describes a well: labor in, water out.
type WellConfig struct {
	Money             int64   `yaml:"money"`
	LabourConsumption float64 `yaml:"labour_consumption"`
	WaterProduction   float64 `yaml:"water_production"`
	WaterStorage      float64 `yaml:"water_storage"`
}

// CloningConfig describes a cloning center: food in, grown humans out.
type CloningConfig struct {
	Money          int64   `yaml:"money"`
	EmbryoStorage  float64 `yaml:"embryo_storage"`
	EmbryoFoodCost float64 `yaml:"embryo_food_cost"`
}

// CloneConfig is the starting stock of a person grown in a cloning center.
type CloneConfig struct {
	Food  float64 `yaml:"food"`
	Water float64 `yaml:"water"`
}

// PopulationConfig sizes the initial world.
type PopulationConfig struct {
	People         int `yaml:"people"`
	Farms          int `yaml:"farms"`
	Wells          int `yaml:"wells"`
	CloningCenters int `yaml:"cloning_centers"`

	Person  PersonConfig  `yaml:"person"`
	Farm    FarmConfig    `yaml:"farm"`
	Well    WellConfig    `yaml:"well"`
	Cloning CloningConfig `yaml:"cloning"`
	Clone   CloneConfig   `yaml:"clone"`
}

// DefaultPopulation is the standard large world.
func DefaultPopulation() PopulationConfig {
	return PopulationConfig{
		People:         100,
		Farms:          60,
		Wells:          30,
		CloningCenters: 3,
		Person: PersonConfig{
			Money:            1000,
			FoodConsumption:  0.5,
			WaterConsumption: 0.25,
			WaterAmount:      3,
			FoodMin:          2,
			FoodSpread:       10,
		},
		Farm:    FarmConfig{Money: 1500, LabourConsumption: 1, FoodProduction: 2, FoodStorage: 5},
		Well:    WellConfig{Money: 1000, LabourConsumption: 1, WaterProduction: 2, WaterStorage: 5},
		Cloning: CloningConfig{Money: 1500, EmbryoStorage: 5, EmbryoFoodCost: 5},
		Clone:   CloneConfig{Food: 5, Water: 5},
	}
}

var (
	eightTenths    = decimal.RequireFromString("0.8")
	nineTenths     = decimal.RequireFromString("0.9")
	ninetyFive     = decimal.RequireFromString("0.95")
	elevenTenths   = decimal.RequireFromString("1.1")
	hundredFivePct = decimal.RequireFromString("1.05")
)

func need(name string, priority int, r economy.Resource, amount float64, onBuy, onFailed decimal.Decimal) economy.Need {
	return economy.Need{
		Name:                   name,
		Priority:               priority,
		Pile:                   economy.Pile{Resource: r, Amount: amount},
		PriceChangeOnBuy:       onBuy,
		PriceChangeOnFailedBuy: onFailed,
	}
}

// PersonNeeds returns the needs of a person: water before food, today
// before stockpiles.
func PersonNeeds(foodConsumption, waterConsumption float64) economy.NeedSet {
	return economy.NewNeedSet(
		need("have water for tomorrow", 0, economy.ResourceWater, waterConsumption, eightTenths, elevenTenths),
		need("have food for tomorrow", 1, economy.ResourceFood, foodConsumption, eightTenths, elevenTenths),
		need("have water for next few days", 2, economy.ResourceWater, 5*waterConsumption, eightTenths, elevenTenths),
		need("have food for next few days", 2, economy.ResourceFood, 4*foodConsumption, eightTenths, elevenTenths),
		need("have a big stash of water", 3, economy.ResourceWater, 15*waterConsumption, eightTenths, elevenTenths),
		need("have a big stash of food", 3, economy.ResourceFood, 10*foodConsumption, eightTenths, elevenTenths),
	)
}

// WorkerNeeds returns the single labor need of farms and wells.
func WorkerNeeds() economy.NeedSet {
	return economy.NewNeedSet(
		need("have someone in work", 1, economy.ResourceManDay, 1, nineTenths, elevenTenths),
	)
}

// CloningNeeds returns the food needs of a cloning center.
func CloningNeeds(embryoFoodCost float64) economy.NeedSet {
	return economy.NewNeedSet(
		need("food for one embryo", 1, economy.ResourceFood, embryoFoodCost, ninetyFive, elevenTenths),
		need("food for some more embryos", 2, economy.ResourceFood, 2*embryoFoodCost, nineTenths, hundredFivePct),
		need("food for even more embryos", 3, economy.ResourceFood, 3*embryoFoodCost, nineTenths, hundredFivePct),
	)
}
