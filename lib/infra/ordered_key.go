package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
type OrderedKeyComparator[K any] func(i, j K) int64

// KeyLess is a strict weak ordering over keys.
// Two keys are equivalent if neither is less than the other.
type KeyLess[K any] func(i, j K) bool

// Comparator converts the strict weak ordering into the three-way form
// used by the ordered containers. It needs at most two calls of less.
func (less KeyLess[K]) Comparator() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		if less(i, j) {
			return -1
		} else if less(j, i) {
			return 1
		}
		return 0
	}
}

// AscComparator orders the builtin ordered keys from small to large.
func AscComparator[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// DescComparator orders the builtin ordered keys from large to small.
func DescComparator[K OrderedKey](i, j K) int64 {
	return -AscComparator[K](i, j)
}

// Reverse flips the order of an existing comparator.
func (cmp OrderedKeyComparator[K]) Reverse() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		return cmp(j, i)
	}
}
