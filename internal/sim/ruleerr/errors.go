// Package ruleerr holds the failure results returned by the rules engine.
//
// Unknown* errors signal a configuration-integrity bug and are fatal to the
// calling operation. AgeLockedError and InsufficientResourcesError are
// recoverable: the caller may surface them and retry later.
package ruleerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	CodeUnknownKey        = "E_UNKNOWN_KEY"
	CodeUnknownRecipe     = "E_UNKNOWN_RECIPE"
	CodeUnknownConsumable = "E_UNKNOWN_CONSUMABLE"
	CodeUnknownResource   = "E_UNKNOWN_RESOURCE"
	CodeAgeLocked         = "E_AGE_LOCKED"
	CodeNoResource        = "E_NO_RESOURCE"
	CodeInternal          = "E_INTERNAL"
)

type UnknownKeyError struct {
	Table string
	Key   string
	// Hint is the closest known key, if any.
	Hint string
}

func (e *UnknownKeyError) Error() string {
	msg := fmt.Sprintf("unknown %s key %q", e.Table, e.Key)
	if e.Hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Hint)
	}
	return msg
}

func (e *UnknownKeyError) Code() string { return CodeUnknownKey }

type UnknownRecipeError struct{ Key UnknownKeyError }

func (e *UnknownRecipeError) Error() string { return e.Key.Error() }
func (e *UnknownRecipeError) Code() string  { return CodeUnknownRecipe }
func (e *UnknownRecipeError) Unwrap() error { return &e.Key }

type UnknownConsumableError struct{ Key UnknownKeyError }

func (e *UnknownConsumableError) Error() string { return e.Key.Error() }
func (e *UnknownConsumableError) Code() string  { return CodeUnknownConsumable }
func (e *UnknownConsumableError) Unwrap() error { return &e.Key }

type UnknownResourceError struct{ Key UnknownKeyError }

func (e *UnknownResourceError) Error() string { return e.Key.Error() }
func (e *UnknownResourceError) Code() string  { return CodeUnknownResource }
func (e *UnknownResourceError) Unwrap() error { return &e.Key }

func UnknownRecipe(id, hint string) *UnknownRecipeError {
	return &UnknownRecipeError{Key: UnknownKeyError{Table: "recipes", Key: id, Hint: hint}}
}

func UnknownConsumable(id, hint string) *UnknownConsumableError {
	return &UnknownConsumableError{Key: UnknownKeyError{Table: "consumables", Key: id, Hint: hint}}
}

func UnknownResource(id, hint string) *UnknownResourceError {
	return &UnknownResourceError{Key: UnknownKeyError{Table: "items", Key: id, Hint: hint}}
}

type AgeLockedError struct {
	RecipeID string
	Required int
	Current  int
}

func (e *AgeLockedError) Error() string {
	return fmt.Sprintf("recipe %q needs age %d (current %d)", e.RecipeID, e.Required, e.Current)
}

func (e *AgeLockedError) Code() string { return CodeAgeLocked }

type InsufficientResourcesError struct {
	// Shortfall maps each short key to the missing quantity.
	Shortfall map[string]int
}

func (e *InsufficientResourcesError) Error() string {
	keys := make([]string, 0, len(e.Shortfall))
	for k := range e.Shortfall {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, e.Shortfall[k]))
	}
	return "insufficient resources: missing " + strings.Join(parts, ", ")
}

func (e *InsufficientResourcesError) Code() string { return CodeNoResource }

// Code returns the wire code for err, or CodeInternal for errors outside the
// taxonomy. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// Recoverable reports whether the caller may retry err once the player's
// situation changes.
func Recoverable(err error) bool {
	var age *AgeLockedError
	var short *InsufficientResourcesError
	return errors.As(err, &age) || errors.As(err, &short)
}
