package keysynth

import "sort"

// NoteRegistry tracks the voice of every key currently held down. A key is
// present exactly while it is held and mapped.
type NoteRegistry struct {
	voices map[string]*Voice
}

func NewNoteRegistry() *NoteRegistry {
	return &NoteRegistry{voices: make(map[string]*Voice)}
}

func (r *NoteRegistry) Has(key string) bool {
	_, ok := r.voices[key]
	return ok
}

// Add registers v under key. Callers check Has first; a held key keeps its
// original voice.
func (r *NoteRegistry) Add(key string, v *Voice) {
	if r.Has(key) {
		return
	}
	r.voices[key] = v
}

func (r *NoteRegistry) Remove(key string) (*Voice, bool) {
	v, ok := r.voices[key]
	if ok {
		delete(r.voices, key)
	}
	return v, ok
}

func (r *NoteRegistry) Len() int { return len(r.voices) }

// Keys returns the held keys in sorted order.
func (r *NoteRegistry) Keys() []string {
	keys := make([]string, 0, len(r.voices))
	for k := range r.voices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
