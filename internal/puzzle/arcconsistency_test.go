package puzzle

import (
	"testing"

	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/grid"
)

func TestValidateFillableAcceptsASatisfiableGrid(t *testing.T) {
	g, err := grid.Parse("____", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := bank.New([]bank.Item{{Word: "AB"}, {Word: "BD"}, {Word: "CD"}, {Word: "AC"}}, bank.DefaultRegistryCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ValidateFillable(g, b) {
		t.Fatal("expected a satisfiable 2x2 grid to pass AC-3")
	}
}

func TestValidateFillableRejectsAnEmptyDomain(t *testing.T) {
	g, err := grid.Parse("____", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := bank.New([]bank.Item{{Word: "XYZ"}}, bank.DefaultRegistryCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ValidateFillable(g, b) {
		t.Fatal("expected a grid with no length-2 words in the bank to fail")
	}
}

func TestValidateFillableRejectsIncompatibleCrossings(t *testing.T) {
	g, err := grid.Parse("____", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No bank word starts with B or D, so the right-hand down slot has no
	// word that fits under either across word.
	b, err := bank.New([]bank.Item{{Word: "AB"}, {Word: "CD"}}, bank.DefaultRegistryCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ValidateFillable(g, b) {
		t.Fatal("expected AC-3 to detect the crossing is unsatisfiable")
	}
}
