package lib

// Set is an unordered collection of unique values, not safe for concurrent use
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, v := range items {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts the value and reports whether it was not present before
func (s Set[T]) Add(value T) bool {
	if _, ok := s[value]; ok {
		return false
	}
	s[value] = struct{}{}
	return true
}

func (s Set[T]) Remove(value T) bool {
	_, ok := s[value]
	delete(s, value)
	return ok
}

func (s Set[T]) Contains(value T) bool {
	_, ok := s[value]
	return ok
}

func (s Set[T]) Len() int {
	return len(s)
}

func (s Set[T]) Items() []T {
	items := make([]T, 0, len(s))
	for k := range s {
		items = append(items, k)
	}
	return items
}
