package slug

import "strconv"

// Registry hands out slugs that are unique within one document.
// A Registry is not safe for concurrent use; create one per document.
type Registry struct {
	seen map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Unique returns base the first time it is seen and base-1, base-2, ...
// afterwards. Candidates that were already emitted are skipped.
func (r *Registry) Unique(base string) string {
	result := base
	for {
		if _, taken := r.seen[result]; !taken {
			break
		}
		r.seen[base]++
		result = base + "-" + strconv.Itoa(r.seen[base])
	}
	r.seen[result] = 0
	return result
}

// Slug is Make followed by Unique.
func (r *Registry) Slug(text string) string {
	return r.Unique(Make(text))
}

// Len reports how many distinct slugs have been emitted.
func (r *Registry) Len() int {
	return len(r.seen)
}
