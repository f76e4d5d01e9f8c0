package protocol

import "craftage.ai/internal/sim/ruleerr"

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy      = "E_WORLD_BUSY"
	ErrPlayerNotFound = "E_PLAYER_NOT_FOUND"

	// Rule layer.
	ErrUnknownKey        = ruleerr.CodeUnknownKey
	ErrUnknownRecipe     = ruleerr.CodeUnknownRecipe
	ErrUnknownConsumable = ruleerr.CodeUnknownConsumable
	ErrUnknownResource   = ruleerr.CodeUnknownResource
	ErrAgeLocked         = ruleerr.CodeAgeLocked
	ErrNoResource        = ruleerr.CodeNoResource
	ErrInternal          = ruleerr.CodeInternal
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrWorldBusy:         {},
	ErrPlayerNotFound:    {},
	ErrUnknownKey:        {},
	ErrUnknownRecipe:     {},
	ErrUnknownConsumable: {},
	ErrUnknownResource:   {},
	ErrAgeLocked:         {},
	ErrNoResource:        {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
