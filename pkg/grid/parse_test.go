package grid

import "testing"

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name         string
		layout       string
		rows, cols   int
	}{
		{"empty", "", 0, 0},
		{"wrong length", "___", 2, 2},
		{"zero rows", "", 0, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.layout, tc.rows, tc.cols); err != ErrInvalidGrid {
				t.Fatalf("expected ErrInvalidGrid, got %v", err)
			}
		})
	}
}

func TestParseSquareInfersDimensions(t *testing.T) {
	g, err := ParseSquare("____")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Rows != 2 || g.Cols != 2 {
		t.Fatalf("expected 2x2, got %dx%d", g.Rows, g.Cols)
	}

	if _, err := ParseSquare("_____"); err != ErrInvalidGrid {
		t.Fatalf("expected ErrInvalidGrid for non-square length, got %v", err)
	}
}

func TestParseTwoByTwoProducesFourSlots(t *testing.T) {
	g, err := Parse("____", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(g.Slots))
	}
	across, down := 0, 0
	for _, s := range g.Slots {
		if s.Length() != 2 {
			t.Errorf("expected length 2, got %d", s.Length())
		}
		if s.Direction == Across {
			across++
		} else {
			down++
		}
	}
	if across != 2 || down != 2 {
		t.Fatalf("expected 2 across and 2 down, got %d/%d", across, down)
	}
}

func TestParseIgnoresSingleCellRuns(t *testing.T) {
	// 1x3 row whose only light cell is the last one.
	g, err := Parse(".._", 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Slots) != 0 {
		t.Fatalf("expected no slots for an isolated single cell, got %d", len(g.Slots))
	}
}

func TestParseRectangularGrid(t *testing.T) {
	// 2 rows x 3 cols, fully light.
	g, err := Parse("______", 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var acrossLen, downCount int
	for _, s := range g.Slots {
		if s.Direction == Across {
			acrossLen += s.Length()
		} else {
			downCount++
		}
	}
	if acrossLen != 6 {
		t.Fatalf("expected across slots to cover all 6 cells, got %d", acrossLen)
	}
	if downCount != 3 {
		t.Fatalf("expected 3 down slots, got %d", downCount)
	}
}

func TestCrossingsTableAgreesWithSlots(t *testing.T) {
	g, err := Parse("____", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for cell, slots := range g.Crossings {
		if len(slots) != 2 {
			t.Fatalf("cell %d: expected 2 crossing slots in a full 2x2 grid, got %d", cell, len(slots))
		}
	}
}

func TestRenderProducesDotsForDarkCells(t *testing.T) {
	g, err := Parse("_.__", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := g.Render(map[int]rune{0: 'A', 2: 'B', 3: 'C'})
	want := "A.\nBC\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
