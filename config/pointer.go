package config

import (
	"strings"
)

// Pointer addresses a node inside a document using JSON pointer syntax (RFC 6901), for example
// "/mro/ctx/ck/reconstructed". The empty pointer addresses the whole document.
type Pointer string

// Root addresses the whole document.
const Root Pointer = ""

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// ParsePointer validates str as a JSON pointer.
func ParsePointer(str string) (Pointer, error) {
	if str != "" && !strings.HasPrefix(str, "/") {
		return Root, InvalidArgumentError("JSON pointer must be empty or start with '/': " + str)
	}

	return Pointer(str), nil
}

// NewPointer builds a pointer from unescaped reference tokens.
func NewPointer(tokens ...string) Pointer {
	ptr := Root
	for _, token := range tokens {
		ptr = ptr.Child(token)
	}

	return ptr
}

// Tokens returns the unescaped reference tokens.
func (ptr Pointer) Tokens() []string {
	if ptr == Root {
		return nil
	}

	tokens := strings.Split(string(ptr)[1:], "/")
	for i, token := range tokens {
		tokens[i] = tokenUnescaper.Replace(token)
	}

	return tokens
}

// Child returns the pointer to the member token of ptr.
func (ptr Pointer) Child(token string) Pointer {
	return ptr + "/" + Pointer(tokenEscaper.Replace(token))
}

// Parent returns the pointer to the container of ptr. The parent of Root is Root.
func (ptr Pointer) Parent() Pointer {
	idx := strings.LastIndex(string(ptr), "/")
	if idx <= 0 {
		return Root
	}

	return ptr[:idx]
}

// Last returns the unescaped final token, or "" for Root.
func (ptr Pointer) Last() string {
	idx := strings.LastIndex(string(ptr), "/")
	if idx < 0 {
		return ""
	}

	return tokenUnescaper.Replace(string(ptr)[idx+1:])
}

// IsRoot reports whether ptr addresses the whole document.
func (ptr Pointer) IsRoot() bool {
	return ptr == Root
}

func (ptr Pointer) String() string {
	return string(ptr)
}
