package runtime

import (
	"math"

	"craftage.ai/internal/sim/tuning"
	"craftage.ai/internal/sim/world/kernel/model"
)

// Decay advances v by dt seconds. Every vital is computed from the incoming
// values, never from a partially updated one.
func Decay(v model.Vitals, dt float64, rates tuning.DecayRates) model.Vitals {
	prev := v.Clamp()
	if !(dt > 0) || math.IsInf(dt, 1) {
		return prev
	}
	next := prev
	next.Hunger = math.Max(model.VitalMin, prev.Hunger-rates.Hunger*dt)
	if t := starvingTime(prev.Hunger, dt, rates.Hunger); t > 0 {
		next.Health = math.Max(model.VitalMin, prev.Health-rates.HealthStarvation*t)
	}
	next.Stamina = math.Min(model.VitalMax, prev.Stamina+rates.StaminaRegen*dt)
	return next
}

// starvingTime is the part of dt spent with hunger at zero. Starvation only
// counts from the moment hunger runs out, so one long step equals many short ones.
func starvingTime(hunger, dt, rate float64) float64 {
	if hunger <= 0 {
		return dt
	}
	if rate <= 0 {
		return 0
	}
	empty := hunger / rate
	if empty >= dt {
		return 0
	}
	return dt - empty
}

// SpendStamina removes an externally authored cost (movement, gathering).
func SpendStamina(v model.Vitals, cost float64) model.Vitals {
	if !(cost > 0) {
		return v
	}
	v.Stamina = math.Max(model.VitalMin, v.Stamina-cost)
	return v
}

func Starving(v model.Vitals) bool { return v.Hunger <= 0 }

func Downed(v model.Vitals) bool { return v.Health <= 0 }

type Simulator struct {
	rates tuning.DecayRates
}

func NewSimulator(rates tuning.DecayRates) *Simulator {
	return &Simulator{rates: rates}
}

// Advance applies the stamina spent during the tick first, then regen and decay.
func (s *Simulator) Advance(v model.Vitals, dt, staminaCost float64) model.Vitals {
	return Decay(SpendStamina(v.Clamp(), staminaCost), dt, s.rates)
}
