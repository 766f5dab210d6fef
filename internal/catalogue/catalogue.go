// Package catalogue holds the fixed table of nmap scan options that easymap
// explains and offers to run. The table is built once when the package is
// initialised and is never modified afterwards; accessors hand out copies.
package catalogue

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// MinKey is the lowest option key in the catalogue.
	MinKey = 1
	// MaxKey is the highest option key in the catalogue.
	MaxKey = 20
)

// Option describes one nmap scan mode.
type Option struct {
	Key         int    `json:"key" yaml:"key"`
	Flag        string `json:"flag" yaml:"flag"`
	Description string `json:"description" yaml:"description"`
	UseCase     string `json:"use_case" yaml:"use_case"`
	Example     string `json:"example" yaml:"example"`
}

// MenuLabel returns the short label shown in the numbered menu,
// e.g. "TCP SYN Scan (-sS)".
func (o Option) MenuLabel() string {
	return fmt.Sprintf("%s (%s)", o.Name(), o.Flag)
}

// Name returns the part of the description before the " - " separator.
func (o Option) Name() string {
	name, _, _ := strings.Cut(o.Description, " - ")
	return name
}

var byKey = buildIndex(options)

func buildIndex(opts []Option) map[int]Option {
	idx := make(map[int]Option, len(opts))
	for _, o := range opts {
		if _, dup := idx[o.Key]; dup {
			panic(fmt.Sprintf("catalogue: duplicate option key %d", o.Key))
		}
		idx[o.Key] = o
	}
	return idx
}

// Lookup returns the option registered under key.
// The boolean is false for any key outside the catalogue, including 0 and
// negative numbers.
func Lookup(key int) (Option, bool) {
	o, ok := byKey[key]
	return o, ok
}

// All returns every option ordered by key.
func All() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns the catalogue keys in ascending order.
func Keys() []int {
	keys := make([]int, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Len reports the number of options in the catalogue.
func Len() int {
	return len(byKey)
}
