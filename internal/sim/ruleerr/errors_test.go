package ruleerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), CodeInternal},
		{UnknownRecipe("axx", "axe"), CodeUnknownRecipe},
		{UnknownConsumable("x", ""), CodeUnknownConsumable},
		{UnknownResource("x", ""), CodeUnknownResource},
		{&UnknownKeyError{Table: "tools", Key: "x"}, CodeUnknownKey},
		{&AgeLockedError{RecipeID: "bronze_axe", Required: 1}, CodeAgeLocked},
		{fmt.Errorf("craft: %w", &InsufficientResourcesError{Shortfall: map[string]int{"wood": 1}}), CodeNoResource},
	}
	for _, c := range cases {
		if got := Code(c.err); got != c.want {
			t.Fatalf("Code(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestUnknownErrorsUnwrapToKeyError(t *testing.T) {
	for _, err := range []error{UnknownRecipe("a", ""), UnknownConsumable("b", ""), UnknownResource("c", "")} {
		var key *UnknownKeyError
		if !errors.As(err, &key) {
			t.Fatalf("expected %T to unwrap to UnknownKeyError", err)
		}
	}
}

func TestRecoverable(t *testing.T) {
	if !Recoverable(&AgeLockedError{}) || !Recoverable(&InsufficientResourcesError{}) {
		t.Fatalf("age/resource errors should be recoverable")
	}
	if Recoverable(UnknownRecipe("x", "")) {
		t.Fatalf("config errors are not recoverable")
	}
}

func TestInsufficientResourcesMessageIsSorted(t *testing.T) {
	err := &InsufficientResourcesError{Shortfall: map[string]int{"wood": 2, "stone": 1}}
	if got, want := err.Error(), "insufficient resources: missing stone:1, wood:2"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnknownKeyHint(t *testing.T) {
	err := UnknownRecipe("axee", "axe")
	if got, want := err.Error(), `unknown recipes key "axee" (did you mean "axe"?)`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
