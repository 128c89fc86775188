package keysynth

import "testing"

func TestNoteRegistryKeepsFirstVoice(t *testing.T) {
	r := NewNoteRegistry()
	first, second := &Voice{}, &Voice{}
	r.Add("90", first)
	r.Add("90", second)
	r.Add("67", second)
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if got := r.Keys(); len(got) != 2 || got[0] != "67" || got[1] != "90" {
		t.Fatalf("keys = %v, want [67 90]", got)
	}
	v, ok := r.Remove("90")
	if !ok || v != first {
		t.Fatalf("remove returned %p, %v; want the first voice", v, ok)
	}
	if r.Has("90") {
		t.Fatalf("key still present after remove")
	}
	if _, ok := r.Remove("90"); ok {
		t.Fatalf("second remove should report absent")
	}
}
