package coerce

// FirstOf probes keys in order and returns the first value that is Truthy.
// Keys may be dotted paths into nested objects.
func FirstOf(obj *Object, keys []string) (any, bool) {
	return FirstOfFunc(obj, keys, Truthy)
}

// FirstOfFunc is FirstOf with a caller-supplied usability test.
func FirstOfFunc(obj *Object, keys []string, usable func(any) bool) (any, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		v, ok := obj.Lookup(key)
		if ok && usable(v) {
			return v, true
		}
	}
	return nil, false
}
