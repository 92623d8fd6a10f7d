package state

import (
	"math"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/lollipopkit/luacore/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Table is the hybrid table value described in the manual: a dense
// array part, a sparse numeric part, a string part, and a generic part
// for everything else, plus an optional metatable. next()/pairs walks
// the array part in ascending order, then the sparse numeric part in
// ascending order, then string keys in insertion order, then generic
// keys in insertion order — see initKeys below.
type Table struct {
	arr       []any // dense 1..n array part, arr[i] holds key i+1
	numValues map[int64]any
	strValues map[string]any
	strOrder  []string // insertion order of string keys, may contain stale deleted entries
	keys      []any    // generic-key insertion log (keys not int64 or string)
	values    []any    // parallel to keys
	metatable *Table

	iterOrder []any // snapshot built by initKeys, consumed by nextKey
	iterPos   map[any]int
	dirty     bool
}

func newLuaTable(nArr, nRec int) *Table {
	t := &Table{}
	if nArr > 0 {
		t.arr = make([]any, 0, nArr)
	}
	if nRec > 0 {
		t.strValues = make(map[string]any, nRec)
	}
	t.dirty = true
	return t
}

func (self *Table) String() (string, error) {
	return json.MarshalToString(self.Json())
}

func (t *Table) Json() any {
	out := make(map[string]any, len(t.arr)+len(t.numValues)+len(t.strValues)+len(t.keys))
	for i, v := range t.arr {
		if v != nil {
			out[jsonKey(int64(i+1))] = jsonValue(v)
		}
	}
	for k, v := range t.numValues {
		out[jsonKey(k)] = jsonValue(v)
	}
	for k, v := range t.strValues {
		out[k] = jsonValue(v)
	}
	for i, k := range t.keys {
		out[jsonKey(k)] = jsonValue(t.values[i])
	}
	return out
}

func jsonKey(k any) string {
	s, _ := json.MarshalToString(k)
	return s
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case *closure:
		return x.String()
	case *Table:
		return x.Json()
	default:
		return v
	}
}

func (self *Table) hasMetafield(fieldName string) bool {
	return self.metatable != nil && self.metatable.get(fieldName) != nil
}

func (self *Table) len() int {
	n := int64(len(self.arr))
	for n > 0 && self.arr[n-1] == nil {
		n--
	}
	for {
		if _, ok := self.numValues[n+1]; !ok {
			break
		}
		n++
	}
	return int(n)
}

func (self *Table) get(key any) any {
	key = _floatToInteger(key)
	if idx, ok := key.(int64); ok {
		if idx >= 1 && idx <= int64(len(self.arr)) {
			return self.arr[idx-1]
		}
		return self.numValues[idx]
	}
	if s, ok := key.(string); ok {
		return self.strValues[s]
	}
	for i, k := range self.keys {
		if k == key {
			return self.values[i]
		}
	}
	return nil
}

func (self *Table) put(key, val any) {
	if key == nil {
		panic("table index is nil!")
	}
	if f, ok := key.(float64); ok && math.IsNaN(f) {
		panic("table index is NaN!")
	}
	self.dirty = true
	key = _floatToInteger(key)

	if idx, ok := key.(int64); ok {
		switch {
		case idx >= 1 && idx <= int64(len(self.arr)):
			self.arr[idx-1] = val
			if val == nil && idx == int64(len(self.arr)) {
				for len(self.arr) > 0 && self.arr[len(self.arr)-1] == nil {
					self.arr = self.arr[:len(self.arr)-1]
				}
			}
		case idx == int64(len(self.arr))+1 && val != nil:
			self.arr = append(self.arr, val)
			for {
				next := int64(len(self.arr)) + 1
				v, ok := self.numValues[next]
				if !ok {
					break
				}
				self.arr = append(self.arr, v)
				delete(self.numValues, next)
			}
		default:
			if val == nil {
				delete(self.numValues, idx)
			} else {
				if self.numValues == nil {
					self.numValues = make(map[int64]any, 8)
				}
				self.numValues[idx] = val
			}
		}
		return
	}
	if s, ok := key.(string); ok {
		if val == nil {
			delete(self.strValues, s)
		} else {
			if self.strValues == nil {
				self.strValues = make(map[string]any, 8)
			}
			if _, existed := self.strValues[s]; !existed {
				self.strOrder = append(self.strOrder, s)
			}
			self.strValues[s] = val
		}
		return
	}

	for i, k := range self.keys {
		if k == key {
			if val == nil {
				self.keys = append(self.keys[:i], self.keys[i+1:]...)
				self.values = append(self.values[:i], self.values[i+1:]...)
			} else {
				self.values[i] = val
			}
			return
		}
	}
	if val != nil {
		self.keys = append(self.keys, key)
		self.values = append(self.values, val)
	}
}

func _floatToInteger(key any) any {
	if f, ok := key.(float64); ok {
		if i, ok := utils.FloatToInteger(f); ok {
			return i
		}
	}
	return key
}

// nextKey returns the key following `key` in the deterministic order:
// array part ascending, sparse numeric part ascending, then string keys
// in insertion order (tracked via strOrder, not Go map iteration order),
// then generic keys in insertion order.
func (self *Table) nextKey(key any) any {
	if self.dirty || self.iterOrder == nil {
		self.initKeys()
		self.dirty = false
	}
	if key == nil {
		if len(self.iterOrder) == 0 {
			return nil
		}
		return self.iterOrder[0]
	}
	pos, ok := self.iterPos[key]
	if !ok {
		return nil
	}
	if pos+1 >= len(self.iterOrder) {
		return nil
	}
	return self.iterOrder[pos+1]
}

func (self *Table) initKeys() {
	order := make([]any, 0, len(self.arr)+len(self.numValues)+len(self.strValues)+len(self.keys))

	for i, v := range self.arr {
		if v != nil {
			order = append(order, int64(i+1))
		}
	}

	numKeys := make([]int64, 0, len(self.numValues))
	for k := range self.numValues {
		numKeys = append(numKeys, k)
	}
	sort.Slice(numKeys, func(i, j int) bool { return numKeys[i] < numKeys[j] })
	for _, k := range numKeys {
		order = append(order, k)
	}

	seen := make(map[string]bool, len(self.strValues))
	for _, k := range self.strOrder {
		if _, ok := self.strValues[k]; ok && !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	for _, k := range self.keys {
		order = append(order, k)
	}

	self.iterOrder = order
	self.iterPos = make(map[any]int, len(order))
	for i, k := range order {
		self.iterPos[k] = i
	}
}
