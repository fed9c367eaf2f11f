// Package runtime executes parsed scriptx programs.
package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/token"
	"github.com/ManitVig/scriptx/pkg/types"
)

// Scope is a binding table from identifiers to values. Names keep the
// order in which they were first bound.
type Scope struct {
	mu    sync.RWMutex
	names []ast.Identifier
	vars  map[ast.Identifier]types.Value
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[ast.Identifier]types.Value)}
}

// Lookup returns the value bound to name. It implements expr.Bindings.
func (s *Scope) Lookup(name ast.Identifier) (types.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Get is Lookup with an UndeclaredError for unbound names.
func (s *Scope) Get(name ast.Identifier) (types.Value, error) {
	if v, ok := s.Lookup(name); ok {
		return v, nil
	}
	return types.Value{}, types.NewUndeclaredError(string(name))
}

// Set binds name to value. Rebinding keeps the name's original position.
func (s *Scope) Set(name ast.Identifier, value types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; !ok {
		s.names = append(s.names, name)
	}
	s.vars[name] = value
}

// Names returns the bound names in binding order.
func (s *Scope) Names() []ast.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]ast.Identifier, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of bound names.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Clone returns an independent copy of the scope.
func (s *Scope) Clone() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &Scope{
		names: make([]ast.Identifier, len(s.names)),
		vars:  make(map[ast.Identifier]types.Value, len(s.vars)),
	}
	copy(c.names, s.names)
	for k, v := range s.vars {
		c.vars[k] = v
	}
	return c
}

// MarshalJSON encodes the scope as a JSON object in binding order.
func (s *Scope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(name))
		if err != nil {
			return nil, err
		}
		v, _ := s.Lookup(name)
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the scope as a YAML mapping in binding order.
func (s *Scope) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range s.Names() {
		v, _ := s.Lookup(name)
		val, err := v.MarshalYAML()
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(name)},
			val.(*yaml.Node))
	}
	return node, nil
}

// DecodeBindings builds a scope from a YAML or JSON mapping of names to
// scalars. Integers must fit in 32 bits. Strings are read as literal text,
// so "2.5" binds a float. Empty input yields an empty scope.
func DecodeBindings(data []byte) (*Scope, error) {
	scope := NewScope()
	if len(bytes.TrimSpace(data)) == 0 {
		return scope, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding bindings: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return scope, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return scope, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("bindings must be a mapping, got line %d", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		name, err := ValidateName(key.Value)
		if err != nil {
			return nil, err
		}
		v, err := decodeScalar(val)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		scope.Set(name, v)
	}
	return scope, nil
}

func decodeScalar(n *yaml.Node) (types.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return types.Value{}, fmt.Errorf("expected a scalar at line %d", n.Line)
	}

	switch n.Tag {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil || int64(int32(i)) != i {
			return types.Value{}, types.NewInvalidLiteralError(n.Value)
		}
		return types.NewInt(int32(i)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return types.Value{}, types.NewInvalidLiteralError(n.Value)
		}
		return types.NewFloat(float32(f)), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return types.Value{}, types.NewInvalidLiteralError(n.Value)
		}
		return types.NewBool(b), nil
	case "!!str":
		return types.ParseLiteral(strings.TrimSpace(n.Value))
	default:
		return types.Value{}, fmt.Errorf("unsupported value %q (%s)", n.Value, n.ShortTag())
	}
}

// ParseAssignment parses "name=literal" as given on a command line.
func ParseAssignment(text string) (ast.Identifier, types.Value, error) {
	lhs, rhs, ok := strings.Cut(text, "=")
	if !ok {
		return "", types.Value{}, fmt.Errorf("invalid assignment %q: expected name=value", text)
	}
	name, err := ValidateName(strings.TrimSpace(lhs))
	if err != nil {
		return "", types.Value{}, err
	}
	v, err := types.ParseLiteral(strings.TrimSpace(rhs))
	if err != nil {
		return "", types.Value{}, fmt.Errorf("binding %s: %w", name, err)
	}
	return name, v, nil
}

// ValidateName checks that name could appear as an identifier in source.
func ValidateName(name string) (ast.Identifier, error) {
	if name == "" {
		return "", fmt.Errorf("empty binding name")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("invalid binding name %q: names are letters only", name)
		}
	}
	if token.LookupIdent(name) != token.Ident {
		return "", fmt.Errorf("invalid binding name %q: reserved word", name)
	}
	return ast.Identifier(name), nil
}
