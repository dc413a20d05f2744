package components

import (
	"math/rand"
	"testing"
)

func testLook() Look {
	return Look{
		Alpha:    0.5,
		ColorMin: [3]float32{0.2, 0.2, 0.8},
		ColorMax: [3]float32{0.3, 0.3, 1.0},
	}
}

func TestNewStoreInitialState(t *testing.T) {
	const w, h = 640, 480
	s := NewStore(1000, w, h, testLook(), rand.New(rand.NewSource(7)))

	if s.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", s.Len())
	}

	for i, p := range s.All() {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			t.Fatalf("particle %d outside viewport: (%v, %v)", i, p.X, p.Y)
		}
		if p.VX < -1 || p.VX > 1 || p.VY < -1 || p.VY > 1 {
			t.Fatalf("particle %d velocity out of [-1,1]: (%v, %v)", i, p.VX, p.VY)
		}
		if p.BaseVX != p.VX || p.BaseVY != p.VY {
			t.Fatalf("particle %d base velocity differs from initial velocity", i)
		}
		if p.OX != p.X || p.OY != p.Y {
			t.Fatalf("particle %d previous position not seeded", i)
		}
		if p.B < 0.8 || p.B > 1.0 || p.R < 0.2 || p.R > 0.3 {
			t.Fatalf("particle %d color outside band: r=%v b=%v", i, p.R, p.B)
		}
		if p.A != 0.5 {
			t.Fatalf("particle %d alpha = %v, want 0.5", i, p.A)
		}
	}
}

func TestNewStoreSeeded(t *testing.T) {
	a := NewStore(50, 100, 100, testLook(), rand.New(rand.NewSource(3)))
	b := NewStore(50, 100, 100, testLook(), rand.New(rand.NewSource(3)))
	for i := range a.All() {
		if a.All()[i] != b.All()[i] {
			t.Fatalf("particle %d differs between identically seeded stores", i)
		}
	}
}

func TestSliceSharesBacking(t *testing.T) {
	s := NewStoreFrom(make([]Particle, 10))
	sub := s.Slice(Range{Start: 4, End: 6})
	sub[0].X = 42

	if s.At(4).X != 42 {
		t.Error("Slice should alias the store")
	}
	if cap(sub) != 2 {
		t.Errorf("cap(sub) = %d, want 2 so appends cannot spill into a neighbour", cap(sub))
	}
}

func TestPartitionComplete(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 10, 99, 100, 1001} {
		for _, workers := range []int{1, 2, 3, 4, 7, 16} {
			if workers > n {
				continue
			}
			ranges := Partition(n, workers)
			if len(ranges) != workers {
				t.Fatalf("n=%d t=%d: got %d ranges", n, workers, len(ranges))
			}

			seen := make([]int, n)
			next := 0
			for _, r := range ranges {
				if r.Start != next {
					t.Fatalf("n=%d t=%d: gap or overlap at %d (range starts %d)", n, workers, next, r.Start)
				}
				if r.Len() <= 0 {
					t.Fatalf("n=%d t=%d: empty range %+v", n, workers, r)
				}
				for i := r.Start; i < r.End; i++ {
					seen[i]++
				}
				next = r.End
			}
			if next != n {
				t.Fatalf("n=%d t=%d: ranges end at %d", n, workers, next)
			}
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("n=%d t=%d: index %d covered %d times", n, workers, i, c)
				}
			}
		}
	}
}

func TestPartitionClampsWorkers(t *testing.T) {
	if got := len(Partition(3, 8)); got != 3 {
		t.Errorf("Partition(3, 8) produced %d ranges, want 3", got)
	}
	if got := Partition(5, 0); len(got) != 1 || got[0] != (Range{0, 5}) {
		t.Errorf("Partition(5, 0) = %v, want [{0 5}]", got)
	}
}
