package config

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kernelql/kernelql/internal/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the JSON type of a Node.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = map[Kind]string{
	NullKind:   "null",
	BoolKind:   "boolean",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
}

func (kind Kind) String() string {
	return kindNames[kind]
}

// Node is a JSON value whose object members keep document order.
type Node struct {
	object  *orderedmap.OrderedMap[string, *Node]
	text    string
	array   []*Node
	kind    Kind
	boolean bool
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: ObjectKind, object: orderedmap.New[string, *Node]()}
}

// NewArray returns an array node holding elems.
func NewArray(elems ...*Node) *Node {
	return &Node{kind: ArrayKind, array: append([]*Node{}, elems...)}
}

// NewString returns a string node.
func NewString(str string) *Node {
	return &Node{kind: StringKind, text: str}
}

// NewStrings returns an array node of strings. A nil slice gives an empty array.
func NewStrings(strs []string) *Node {
	node := &Node{kind: ArrayKind, array: make([]*Node, 0, len(strs))}
	for _, str := range strs {
		node.array = append(node.array, NewString(str))
	}

	return node
}

// NewNumber returns a number node from its JSON literal.
func NewNumber(literal json.Number) *Node {
	return &Node{kind: NumberKind, text: literal.String()}
}

// NewBool returns a boolean node.
func NewBool(val bool) *Node {
	return &Node{kind: BoolKind, boolean: val}
}

// NewNull returns a null node.
func NewNull() *Node {
	return &Node{kind: NullKind}
}

// Parse decodes a JSON document, keeping object members in document order.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeNode(dec)
	if err != nil {
		return nil, errors.New(err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Errorf("unexpected data after top-level JSON value")
	}

	return node, nil
}

// MustParse is like Parse but panics if the document cannot be decoded.
func MustParse(data string) *Node {
	node, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}

	return node
}

func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch val := tok.(type) {
	case json.Delim:
		switch val {
		case '{':
			node := NewObject()

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}

				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}

				node.object.Set(keyTok.(string), child)
			}

			_, err := dec.Token()

			return node, err
		case '[':
			node := NewArray()

			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}

				node.array = append(node.array, child)
			}

			_, err := dec.Token()

			return node, err
		}
	case string:
		return NewString(val), nil
	case json.Number:
		return NewNumber(val), nil
	case bool:
		return NewBool(val), nil
	case nil:
		return NewNull(), nil
	}

	return nil, errors.Errorf("unexpected JSON token %v", tok)
}

// Kind returns the JSON type of the node. A nil node is null.
func (node *Node) Kind() Kind {
	if node == nil {
		return NullKind
	}

	return node.kind
}

func (node *Node) IsObject() bool { return node.Kind() == ObjectKind }
func (node *Node) IsArray() bool  { return node.Kind() == ArrayKind }
func (node *Node) IsString() bool { return node.Kind() == StringKind }
func (node *Node) IsNull() bool   { return node.Kind() == NullKind }

// IsStructured reports whether the node is an object or an array.
func (node *Node) IsStructured() bool {
	return node.IsObject() || node.IsArray()
}

// Text returns the value of a string node.
func (node *Node) Text() (string, bool) {
	if !node.IsString() {
		return "", false
	}

	return node.text, true
}

// Strings returns the value of a string node as a one-element slice, or the elements of an array
// of strings. Any other shape is an InvalidArgumentError.
func (node *Node) Strings() ([]string, error) {
	switch node.Kind() {
	case StringKind:
		return []string{node.text}, nil
	case ArrayKind:
		strs := make([]string, 0, len(node.array))

		for _, elem := range node.array {
			str, ok := elem.Text()
			if !ok {
				return nil, errors.New(InvalidArgumentError("expected an array of strings, found an element of type " + elem.Kind().String()))
			}

			strs = append(strs, str)
		}

		return strs, nil
	default:
		return nil, errors.New(InvalidArgumentError("expected a string or an array of strings, found " + node.Kind().String()))
	}
}

// Len returns the number of members of an object or elements of an array.
func (node *Node) Len() int {
	switch node.Kind() {
	case ObjectKind:
		return node.object.Len()
	case ArrayKind:
		return len(node.array)
	default:
		return 0
	}
}

// Elems returns the elements of an array node.
func (node *Node) Elems() []*Node {
	if !node.IsArray() {
		return nil
	}

	return node.array
}

// Keys returns the member names of an object node in document order.
func (node *Node) Keys() []string {
	if !node.IsObject() {
		return nil
	}

	keys := make([]string, 0, node.object.Len())
	for pair := node.object.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// Has reports whether an object node has the member key.
func (node *Node) Has(key string) bool {
	_, ok := node.Get(key)
	return ok
}

// Get returns the member key of an object node.
func (node *Node) Get(key string) (*Node, bool) {
	if !node.IsObject() {
		return nil, false
	}

	return node.object.Get(key)
}

// Set adds or replaces the member key of an object node. A replaced member keeps its position.
func (node *Node) Set(key string, val *Node) {
	if val == nil {
		val = NewNull()
	}

	node.object.Set(key, val)
}

// Delete removes the member key of an object node.
func (node *Node) Delete(key string) bool {
	if !node.IsObject() {
		return false
	}

	_, ok := node.object.Delete(key)

	return ok
}

// Append adds elements to an array node.
func (node *Node) Append(elems ...*Node) {
	node.array = append(node.array, elems...)
}

// Clone returns a deep copy of the node.
func (node *Node) Clone() *Node {
	if node == nil {
		return NewNull()
	}

	clone := &Node{kind: node.kind, text: node.text, boolean: node.boolean}

	switch node.kind {
	case ObjectKind:
		clone.object = orderedmap.New[string, *Node]()
		for pair := node.object.Oldest(); pair != nil; pair = pair.Next() {
			clone.object.Set(pair.Key, pair.Value.Clone())
		}
	case ArrayKind:
		clone.array = make([]*Node, len(node.array))
		for i, elem := range node.array {
			clone.array[i] = elem.Clone()
		}
	}

	return clone
}

// replace overwrites node in place so that every holder of the pointer observes the new value.
func (node *Node) replace(other *Node) {
	*node = *other
}

// child returns the member or element addressed by token.
func (node *Node) child(token string) (*Node, bool) {
	switch node.Kind() {
	case ObjectKind:
		return node.object.Get(token)
	case ArrayKind:
		idx, err := strconv.Atoi(token)
		if err != nil || idx < 0 || idx >= len(node.array) {
			return nil, false
		}

		return node.array[idx], true
	default:
		return nil, false
	}
}

// At returns the node addressed by ptr.
func (node *Node) At(ptr Pointer) (*Node, bool) {
	current := node

	for _, token := range ptr.Tokens() {
		next, ok := current.child(token)
		if !ok {
			return nil, false
		}

		current = next
	}

	return current, current != nil
}

// SetAt stores val at ptr, creating intermediate objects as needed. Setting Root replaces the node.
func (node *Node) SetAt(ptr Pointer, val *Node) error {
	if ptr.IsRoot() {
		node.replace(val)
		return nil
	}

	current := node

	for _, token := range ptr.Parent().Tokens() {
		next, ok := current.child(token)
		if !ok || next.IsNull() {
			if !current.IsObject() {
				return errors.New(InvalidArgumentError("cannot create " + ptr.String() + ": parent is not an object"))
			}

			next = NewObject()
			current.Set(token, next)
		}

		current = next
	}

	if !current.IsObject() {
		return errors.New(InvalidArgumentError("cannot set " + ptr.String() + ": parent is not an object"))
	}

	current.Set(ptr.Last(), val)

	return nil
}

// String renders the node as compact JSON.
func (node *Node) String() string {
	data, err := node.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(data)
}

// MarshalJSON implements json.Marshaler.
func (node *Node) MarshalJSON() ([]byte, error) {
	switch node.Kind() {
	case ObjectKind:
		return node.object.MarshalJSON()
	case ArrayKind:
		return json.Marshal(node.array)
	case StringKind:
		return json.Marshal(node.text)
	case NumberKind:
		return []byte(node.text), nil
	case BoolKind:
		return json.Marshal(node.boolean)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (node *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	node.replace(parsed)

	return nil
}
