// Package language holds the fixed set of programming-language labels a
// conversion can be requested between.
package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Language is a display label such as "C++". The zero value means unknown.
type Language string

const (
	JavaScript Language = "JavaScript"
	Python     Language = "Python"
	Java       Language = "Java"
	CPP        Language = "C++"
	Ruby       Language = "Ruby"
)

const (
	DefaultSource = JavaScript
	DefaultTarget = Python

	// Auto asks for the source language to be detected from the code.
	Auto = "auto"
)

// ErrUnsupported is returned by Parse for labels outside the fixed set.
var ErrUnsupported = errors.New("unsupported language")

var all = []Language{JavaScript, Python, Java, CPP, Ruby}

var aliases = map[string]Language{
	"javascript": JavaScript,
	"js":         JavaScript,
	"node":       JavaScript,
	"ecmascript": JavaScript,
	"python":     Python,
	"py":         Python,
	"python3":    Python,
	"python 3":   Python,
	"python 2":   Python,
	"java":       Java,
	"c++":        CPP,
	"cpp":        CPP,
	"cxx":        CPP,
	"cc":         CPP,
	"ruby":       Ruby,
	"rb":         Ruby,
}

// All returns the supported labels in display order.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Aliases returns the accepted spellings for l in sorted order.
func Aliases(l Language) []string {
	var out []string
	for k, v := range aliases {
		if v == l {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Parse resolves a label or alias, ignoring case and surrounding space.
func Parse(s string) (Language, error) {
	key := cases.Fold().String(strings.TrimSpace(s))
	if l, ok := aliases[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// ParseOptional is Parse for source-language inputs, where "" and "auto"
// mean unknown and yield the zero Language.
func ParseOptional(s string) (Language, error) {
	t := strings.TrimSpace(s)
	if t == "" || strings.EqualFold(t, Auto) {
		return "", nil
	}
	return Parse(t)
}

func (l Language) String() string {
	return string(l)
}

// Valid reports whether l is one of the supported labels.
func (l Language) Valid() bool {
	for _, v := range all {
		if v == l {
			return true
		}
	}
	return false
}
