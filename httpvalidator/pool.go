package httpvalidator

import "sync"

// Walk scratch capacities.
const (
	walkErrorsCap   = 8
	walkWarningsCap = 4
)

var walkPool = sync.Pool{
	New: func() any {
		return &schemaWalk{
			errors:   make([]ValidationError, 0, walkErrorsCap),
			warnings: make([]ValidationError, 0, walkWarningsCap),
			guard:    make(map[guardKey]struct{}, 8),
		}
	},
}

// getWalk retrieves walk scratch from the pool, bound to one validator
// and one finding location. Only this internal scratch is recycled;
// results handed to callers are always freshly allocated.
func getWalk(v *Validator, loc Location) *schemaWalk {
	w := walkPool.Get().(*schemaWalk)
	w.v = v
	w.location = loc
	w.redact = redactedLocation(loc)
	return w
}

// putWalk returns walk scratch to the pool.
func putWalk(w *schemaWalk) {
	if w == nil {
		return
	}
	w.v = nil
	w.errors = w.errors[:0]
	w.warnings = w.warnings[:0]
	clear(w.guard)
	walkPool.Put(w)
}
