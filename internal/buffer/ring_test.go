package buffer

import (
	"reflect"
	"testing"
)

func TestRingOverwritesOldest(t *testing.T) {
	ring := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		ring.Add(i)
	}
	if ring.Len() != 3 {
		t.Fatalf("len = %d, want 3", ring.Len())
	}
	if got := ring.List(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Fatalf("list = %v", got)
	}
}

func TestRingLast(t *testing.T) {
	ring := NewRing[string](4)
	for _, s := range []string{"a", "b", "c"} {
		ring.Add(s)
	}
	if got := ring.Last(2); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("last(2) = %v", got)
	}
	if got := ring.Last(10); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("last(10) = %v", got)
	}
	if got := ring.Last(0); got != nil {
		t.Fatalf("last(0) = %v", got)
	}
}

func TestRingEmptyAndNil(t *testing.T) {
	ring := NewRing[int](2)
	if ring.List() != nil || ring.Len() != 0 {
		t.Fatal("fresh ring must be empty")
	}
	var nilRing *Ring[int]
	nilRing.Add(1)
	if nilRing.Len() != 0 || nilRing.List() != nil {
		t.Fatal("nil ring must be inert")
	}
}

func TestRingZeroSizeClamped(t *testing.T) {
	ring := NewRing[int](0)
	ring.Add(1)
	ring.Add(2)
	if got := ring.List(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("list = %v", got)
	}
}
