package tuning

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	World        World      `yaml:"world"`
	InitialStats Stats      `yaml:"initial_stats"`
	DecayRates   DecayRates `yaml:"decay_rates"`
	Movement     Movement   `yaml:"movement"`
	Gathering    Gathering  `yaml:"gathering"`
}

type World struct {
	WorldSize       int `yaml:"world_size"`
	TileSize        int `yaml:"tile_size"`
	VisionRadius    int `yaml:"vision_radius"`
	GatherTimeMs    int `yaml:"gather_time_ms"`
	SaveIntervalMs  int `yaml:"save_interval_ms"`
	SyncIntervalMs  int `yaml:"sync_interval_ms"`
	PlayerTimeoutMs int `yaml:"player_timeout_ms"`
}

type Stats struct {
	Health  float64 `yaml:"health"`
	Hunger  float64 `yaml:"hunger"`
	Stamina float64 `yaml:"stamina"`
}

// DecayRates are per second.
type DecayRates struct {
	Hunger           float64 `yaml:"hunger"`
	StaminaRegen     float64 `yaml:"stamina_regen"`
	HealthStarvation float64 `yaml:"health_starvation"`
}

type Movement struct {
	Speed           float64 `yaml:"speed"`
	StaminaCost     float64 `yaml:"stamina_cost"` // per frame
	ArrivalDistance float64 `yaml:"arrival_distance"`
}

type Gathering struct {
	StaminaCost              float64 `yaml:"stamina_cost"`
	MaxDistance              float64 `yaml:"max_distance"`
	ProgressUpdateIntervalMs int     `yaml:"progress_update_interval_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      10,
		World: World{
			WorldSize:       2000,
			TileSize:        40,
			VisionRadius:    200,
			GatherTimeMs:    4000,
			SaveIntervalMs:  3000,
			SyncIntervalMs:  5000,
			PlayerTimeoutMs: 300000,
		},
		InitialStats: Stats{Health: 100, Hunger: 100, Stamina: 100},
		DecayRates:   DecayRates{Hunger: 0.5, StaminaRegen: 0.3, HealthStarvation: 0.2},
		Movement:     Movement{Speed: 2.5, StaminaCost: 0.12, ArrivalDistance: 3},
		Gathering:    Gathering{StaminaCost: 10, MaxDistance: 60, ProgressUpdateIntervalMs: 50},
	}
}

func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

func LoadFS(fsys fs.FS, name string) (Tuning, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

// Parse decodes raw over Defaults, so omitted fields keep their default value.
func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.DecayRates.Hunger < 0 || t.DecayRates.StaminaRegen < 0 || t.DecayRates.HealthStarvation < 0 {
		return fmt.Errorf("decay_rates must be >= 0")
	}
	if t.Movement.StaminaCost < 0 || t.Gathering.StaminaCost < 0 {
		return fmt.Errorf("stamina costs must be >= 0")
	}
	for name, v := range map[string]float64{"health": t.InitialStats.Health, "hunger": t.InitialStats.Hunger, "stamina": t.InitialStats.Stamina} {
		if v < 0 || v > 100 {
			return fmt.Errorf("initial_stats.%s must be in [0,100]", name)
		}
	}
	return nil
}

// TickSeconds is the simulated time covered by one world tick.
func (t Tuning) TickSeconds() float64 { return 1 / float64(t.TickRateHz) }

func (t Tuning) SaveInterval() time.Duration {
	return time.Duration(t.World.SaveIntervalMs) * time.Millisecond
}
