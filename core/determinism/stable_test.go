package determinism

import (
	"reflect"
	"testing"
)

func TestHashJSONIgnoresMapOrder(t *testing.T) {
	first := map[string]int{"b": 2, "a": 1, "c": 3}
	second := map[string]int{"c": 3, "a": 1, "b": 2}

	h1, err := HashJSON(first)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashJSON(second)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1.Hex(), h2.Hex())
	}
}

func TestHashJSONRejectsUnencodable(t *testing.T) {
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]bool{"owner-2": true, "owner-10": true, "owner-1": true})
	want := []string{"owner-1", "owner-10", "owner-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeys = %v, want %v", got, want)
	}
}
