// Package trie implements a byte-keyed prefix trie used for shell tab
// completion: builtin names and every executable discoverable on $PATH.
package trie

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// node is one edge-labeled step of the trie. A node carries a value once a
// key ending there has been inserted; it is never un-set.
type node struct {
	children map[byte]*node
	hasValue bool
	suffix   string
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

// Trie is a byte-trie over inserted command names.
type Trie struct {
	root *node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert stores name in the trie, attaching suffix to its terminal node.
func (t *Trie) Insert(name string, suffix string) {
	cur := t.root
	for i := 0; i < len(name); i++ {
		b := name[i]
		next, ok := cur.children[b]
		if !ok {
			next = newNode()
			cur.children[b] = next
		}
		cur = next
	}
	cur.hasValue = true
	cur.suffix = suffix
}

// Result is the outcome of Complete. Exactly one of the embedded kinds is
// meaningful; callers type-switch on it.
type Result interface {
	isResult()
}

// None means prefix has no stored completions.
type None struct{}

// Single means prefix extends unambiguously. Extra is the bytes beyond
// prefix; Suffix is the terminal annotation, or "" if the match is not a
// leaf (more completions branch below it).
type Single struct {
	Extra  string
	Suffix string
}

// Multiple means prefix branches into two or more completions. All holds
// the full strings (including prefix), each with its own suffix appended,
// sorted lexicographically.
type Multiple struct {
	All []string
}

func (None) isResult()     {}
func (Single) isResult()   {}
func (Multiple) isResult() {}

// Complete walks the trie along prefix, then as far as it can go
// unambiguously, per spec.md §4.2.
func (t *Trie) Complete(prefix string) Result {
	cur := t.root
	for i := 0; i < len(prefix); i++ {
		next, ok := cur.children[prefix[i]]
		if !ok {
			return None{}
		}
		cur = next
	}

	var extra []byte
	for {
		if cur.hasValue {
			suffix := ""
			if len(cur.children) == 0 {
				suffix = cur.suffix
			}
			return Single{Extra: string(extra), Suffix: suffix}
		}

		switch len(cur.children) {
		case 0:
			// Leaf with no value: unreachable under the insert invariant.
			return None{}
		case 1:
			for b, child := range cur.children {
				extra = append(extra, b)
				cur = child
			}
		default:
			return Multiple{All: collect(cur, prefix, extra)}
		}
	}
}

// collect enumerates every completion under cur, each prefixed by
// prefix+pathSoFar and suffixed by its own terminal annotation.
func collect(cur *node, prefix string, pathSoFar []byte) []string {
	var all []string
	var walk func(n *node, acc []byte)
	walk = func(n *node, acc []byte) {
		if n.hasValue {
			all = append(all, prefix+string(pathSoFar)+string(acc)+n.suffix)
		}
		// Keys may continue below a value node (e.g. "echo" and "echoX"):
		// the invariant only guarantees every inserted key reaches a
		// value, not that value nodes are leaves.
		for b, child := range n.children {
			walk(child, append(append([]byte{}, acc...), b))
		}
	}
	walk(cur, nil)
	sort.Strings(all)
	return all
}

// BuildDefault builds the trie an interactive shell starts with: the given
// builtin names (suffix "") plus every regular, executable file found on
// each directory of pathEnv (a $PATH-style, os.PathListSeparator-joined
// string), suffixed with a trailing space the way the editor appends one
// after an unambiguous executable completion.
func BuildDefault(pathEnv string, builtins []string) *Trie {
	t := New()
	for _, name := range builtins {
		t.Insert(name, "")
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if info.Mode().Perm()&0o111 == 0 {
				continue
			}
			name := entry.Name()
			if strings.TrimSpace(name) == "" {
				continue
			}
			t.Insert(name, " ")
		}
	}
	return t
}
