package voxel

import "testing"

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	f()
}

func TestIndexCoordsBijection(t *testing.T) {
	g := NewGrid(5, 3, 7)
	seen := make(map[int]bool, g.Len())
	for z := 0; z < 7; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 5; x++ {
				i := g.Index(x, y, z)
				if i != x+5*y+15*z {
					t.Fatalf("Index(%d,%d,%d) = %d", x, y, z, i)
				}
				if seen[i] {
					t.Fatalf("offset %d produced twice", i)
				}
				seen[i] = true
				gx, gy, gz := g.Coords(i)
				if gx != x || gy != y || gz != z {
					t.Fatalf("Coords(%d) = (%d,%d,%d), want (%d,%d,%d)", i, gx, gy, gz, x, y, z)
				}
			}
		}
	}
	if len(seen) != g.Len() {
		t.Fatalf("covered %d offsets, want %d", len(seen), g.Len())
	}
}

func TestGetSetClear(t *testing.T) {
	g := NewGrid(4, 4, 4)
	if v := g.Get(1, 2, 3); !v.IsEmpty() {
		t.Fatalf("fresh grid holds %d", v)
	}
	g.Set(1, 2, 3, 9)
	g.Set(1, 2, 3, 7)
	if v := g.Get(1, 2, 3); v != 7 {
		t.Fatalf("Get = %d, want 7", v)
	}
	if g.At(1, 2, 3) != 7 {
		t.Fatalf("At disagrees with Get")
	}
	g.Set(0, 0, 0, 1)
	if g.Count() != 2 {
		t.Fatalf("Count = %d, want 2", g.Count())
	}
	g.Clear()
	if g.Count() != 0 {
		t.Fatalf("Clear left %d voxels", g.Count())
	}
}

func TestOutOfRangePanics(t *testing.T) {
	g := NewGrid(2, 2, 2)
	mustPanic(t, "Get x", func() { g.Get(2, 0, 0) })
	mustPanic(t, "Get negative", func() { g.Get(0, -1, 0) })
	mustPanic(t, "Set z", func() { g.Set(0, 0, 2, 1) })
	mustPanic(t, "Coords", func() { g.Coords(8) })
	mustPanic(t, "size 0", func() { NewGrid(0, 1, 1) })
	mustPanic(t, "size 257", func() { NewGrid(257, 1, 1) })
}

func TestMaxAxisGrid(t *testing.T) {
	g := NewGrid(MaxAxis, 1, 1)
	g.Set(255, 0, 0, 3)
	if g.Get(255, 0, 0) != 3 {
		t.Fatalf("last cell of a 256-wide grid not addressable")
	}
}

func TestResizedKeepsSurvivors(t *testing.T) {
	g := NewGrid(4, 4, 4)
	g.Set(0, 0, 0, 1)
	g.Set(3, 1, 2, 2)
	g.Set(1, 3, 1, 3)

	small := g.Resized(2, 4, 4)
	if small.Get(0, 0, 0) != 1 || small.Get(1, 3, 1) != 3 {
		t.Fatalf("surviving voxels lost on shrink")
	}
	if small.Count() != 2 {
		t.Fatalf("shrunk grid holds %d voxels, want 2", small.Count())
	}

	big := g.Resized(6, 5, 4)
	if big.Get(3, 1, 2) != 2 || big.Count() != 3 {
		t.Fatalf("grow lost voxels: count %d", big.Count())
	}
	if g.Count() != 3 {
		t.Fatalf("source grid mutated by Resized")
	}
}
