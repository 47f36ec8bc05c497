package grid

import "testing"

func TestEnforceSymmetryMirrorsBlackSquares(t *testing.T) {
	dark := make([]bool, 9) // 3x3
	dark[0] = true          // (0,0)
	enforceSymmetry(dark, 3, 3)
	if !dark[8] { // (2,2) is the 180-degree mirror of (0,0)
		t.Fatal("expected mirrored cell to become dark")
	}
	if !isSymmetric(dark, 3, 3) {
		t.Fatal("expected grid to be symmetric after enforcement")
	}
}

func TestIsSymmetricDetectsAsymmetry(t *testing.T) {
	dark := make([]bool, 9)
	dark[0] = true
	if isSymmetric(dark, 3, 3) {
		t.Fatal("expected asymmetric grid to be reported as such")
	}
}
