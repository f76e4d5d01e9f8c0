package model

import "math"

const (
	VitalMin = 0.0
	VitalMax = 100.0
)

// Vital names as used by consumable effect descriptors.
const (
	VitalHealth  = "health"
	VitalHunger  = "hunger"
	VitalStamina = "stamina"
)

func IsVital(name string) bool {
	switch name {
	case VitalHealth, VitalHunger, VitalStamina:
		return true
	}
	return false
}

type Vitals struct {
	Health  float64 `json:"health"`
	Hunger  float64 `json:"hunger"`
	Stamina float64 `json:"stamina"`
}

func (v Vitals) Get(name string) float64 {
	switch name {
	case VitalHealth:
		return v.Health
	case VitalHunger:
		return v.Hunger
	case VitalStamina:
		return v.Stamina
	}
	return 0
}

func (v *Vitals) Set(name string, x float64) {
	switch name {
	case VitalHealth:
		v.Health = x
	case VitalHunger:
		v.Hunger = x
	case VitalStamina:
		v.Stamina = x
	}
}

func ClampVital(x float64) float64 {
	if math.IsNaN(x) {
		return VitalMin
	}
	return math.Min(VitalMax, math.Max(VitalMin, x))
}

func (v Vitals) Clamp() Vitals {
	return Vitals{
		Health:  ClampVital(v.Health),
		Hunger:  ClampVital(v.Hunger),
		Stamina: ClampVital(v.Stamina),
	}
}

func (v Vitals) InRange() bool {
	return v.Clamp() == v
}
