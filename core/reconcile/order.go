package reconcile

import (
	"fmt"
	"strings"

	"colabdraw/core/scene"
)

// keyDigits are the base62 digits of fractional order keys, in ascending byte order.
const keyDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// smallestInteger is the lowest integer part; a key made of it alone has
// nothing below it and is not usable.
var smallestInteger = "A" + strings.Repeat("0", 26)

// anchorMerge orders ids using remote order as the base. Each local-only id
// follows the closest preceding local id that exists remotely; local-only ids
// with no such neighbour go first. Runs keep their local order.
func anchorMerge(localIDs, remoteIDs []string, remoteIndex map[string]scene.Element) []string {
	var front []string
	after := make(map[string][]string)

	anchor := ""
	for _, id := range localIDs {
		if _, ok := remoteIndex[id]; ok {
			anchor = id
			continue
		}
		if anchor == "" {
			front = append(front, id)
		} else {
			after[anchor] = append(after[anchor], id)
		}
	}

	out := make([]string, 0, len(localIDs)+len(remoteIDs))
	out = append(out, front...)
	for _, id := range remoteIDs {
		out = append(out, id)
		out = append(out, after[id]...)
	}
	return out
}

// repairIndices makes the Index of elements strictly increasing. Valid keys
// that already increase are kept; every other element gets a key generated
// between its neighbours. An element whose existing key is replaced gets its
// version bumped so peers holding the old key pick up the change; elements
// without a key are only assigned one. It returns the number of regenerated keys.
func repairIndices(elements []scene.Element) int {
	keep := make([]bool, len(elements))
	last := ""
	for i, el := range elements {
		if validKey(el.Index) && (last == "" || el.Index > last) {
			keep[i] = true
			last = el.Index
		}
	}

	repaired := 0
	lower := ""
	for i := 0; i < len(elements); i++ {
		if keep[i] {
			lower = elements[i].Index
			continue
		}
		upper := ""
		for j := i + 1; j < len(elements); j++ {
			if keep[j] {
				upper = elements[j].Index
				break
			}
		}
		key, err := keyBetween(lower, upper)
		if err != nil {
			// Only reachable with lower >= upper, which the keep pass rules out.
			panic("reconcile: " + err.Error())
		}
		if elements[i].Index != "" {
			elements[i].Version++
		}
		elements[i].Index = key
		lower = key
		repaired++
	}
	return repaired
}

// validKey reports whether key is a usable fractional order key: an integer
// part whose head letter encodes its length, followed by an optional
// fraction that does not end in the zero digit.
func validKey(key string) bool {
	if key == smallestInteger {
		return false
	}
	n, ok := integerLength(key)
	if !ok || len(key) < n {
		return false
	}
	for i := 1; i < len(key); i++ {
		if strings.IndexByte(keyDigits, key[i]) < 0 {
			return false
		}
	}
	return len(key) == n || key[len(key)-1] != keyDigits[0]
}

// integerLength returns the length of the integer part a key starting with
// the given head letter has, head included.
func integerLength(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	switch head := key[0]; {
	case head >= 'a' && head <= 'z':
		return int(head-'a') + 2, true
	case head >= 'A' && head <= 'Z':
		return int('Z'-head) + 2, true
	default:
		return 0, false
	}
}

func splitKey(key string) (integer, fraction string) {
	n, _ := integerLength(key)
	return key[:n], key[n:]
}

// keyBetween returns a key strictly between lower and upper. An empty lower
// means no lower bound, an empty upper means no upper bound. Both bounds must
// be valid keys when set.
func keyBetween(lower, upper string) (string, error) {
	for _, k := range []string{lower, upper} {
		if k != "" && !validKey(k) {
			return "", fmt.Errorf("invalid order key %q", k)
		}
	}
	if lower != "" && upper != "" && lower >= upper {
		return "", fmt.Errorf("key %q is not below %q", lower, upper)
	}

	switch {
	case lower == "" && upper == "":
		return "a" + string(keyDigits[0]), nil
	case lower == "":
		ib, fb := splitKey(upper)
		if ib == smallestInteger {
			return ib + midpoint("", fb), nil
		}
		if ib < upper {
			return ib, nil
		}
		dec, ok := decrementInteger(ib)
		if !ok {
			return "", fmt.Errorf("no key below %q", upper)
		}
		return dec, nil
	case upper == "":
		ia, fa := splitKey(lower)
		if inc, ok := incrementInteger(ia); ok {
			return inc, nil
		}
		return ia + midpoint(fa, ""), nil
	}

	ia, fa := splitKey(lower)
	ib, fb := splitKey(upper)
	if ia == ib {
		return ia + midpoint(fa, fb), nil
	}
	inc, ok := incrementInteger(ia)
	if !ok {
		return "", fmt.Errorf("no key above %q", lower)
	}
	if inc < upper {
		return inc, nil
	}
	return ia + midpoint(fa, ""), nil
}

// midpoint finds a fraction between a and b, where b == "" is unbounded.
// Neither fraction may end with the zero digit.
func midpoint(a, b string) string {
	if b != "" {
		n := 0
		for n < len(b) && digitAt(a, n) == b[n] {
			n++
		}
		if n > 0 {
			rest := ""
			if n < len(a) {
				rest = a[n:]
			}
			return b[:n] + midpoint(rest, b[n:])
		}
	}

	da := 0
	if a != "" {
		da = strings.IndexByte(keyDigits, a[0])
	}
	db := len(keyDigits)
	if b != "" {
		db = strings.IndexByte(keyDigits, b[0])
	}
	if db-da > 1 {
		return string(keyDigits[(da+db+1)/2])
	}
	if len(b) > 1 {
		return b[:1]
	}
	rest := ""
	if len(a) > 1 {
		rest = a[1:]
	}
	return string(keyDigits[da]) + midpoint(rest, "")
}

// incrementInteger returns the next integer part, growing the length when
// the digits overflow. It fails past the largest integer.
func incrementInteger(x string) (string, bool) {
	head, digits := x[0], []byte(x[1:])
	for i := len(digits) - 1; i >= 0; i-- {
		d := strings.IndexByte(keyDigits, digits[i]) + 1
		if d < len(keyDigits) {
			digits[i] = keyDigits[d]
			return string(head) + string(digits), true
		}
		digits[i] = keyDigits[0]
	}
	switch head {
	case 'Z':
		return "a" + string(keyDigits[0]), true
	case 'z':
		return "", false
	}
	head++
	if head > 'a' {
		digits = append(digits, keyDigits[0])
	} else {
		digits = digits[:len(digits)-1]
	}
	return string(head) + string(digits), true
}

// decrementInteger returns the previous integer part. It fails below the
// smallest integer.
func decrementInteger(x string) (string, bool) {
	top := keyDigits[len(keyDigits)-1]
	head, digits := x[0], []byte(x[1:])
	for i := len(digits) - 1; i >= 0; i-- {
		d := strings.IndexByte(keyDigits, digits[i]) - 1
		if d >= 0 {
			digits[i] = keyDigits[d]
			return string(head) + string(digits), true
		}
		digits[i] = top
	}
	switch head {
	case 'a':
		return "Z" + string(top), true
	case 'A':
		return "", false
	}
	head--
	if head < 'Z' {
		digits = append(digits, top)
	} else {
		digits = digits[:len(digits)-1]
	}
	return string(head) + string(digits), true
}

func digitAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return keyDigits[0]
}
