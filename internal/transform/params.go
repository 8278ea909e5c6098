package transform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Params is an ordered set of transformation parameters. Values are scalars:
// string, bool, int or float64. Setting a key that already exists replaces the
// value in place, so the key keeps its original position.
//
// The zero value is an empty set ready to use. A nil *Params reads as empty.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams builds a Params from alternating key/value arguments.
func NewParams(kv ...any) *Params {
	if len(kv)%2 != 0 {
		panic("transform: NewParams expects key/value pairs")
	}
	p := &Params{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("transform: NewParams key %v is not a string", kv[i]))
		}
		p.Set(key, kv[i+1])
	}
	return p
}

func (p *Params) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Params) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// String returns the value of key formatted for a URL, or "" when absent.
func (p *Params) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p *Params) Delete(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Merge copies every entry of other into p. Values from other win.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

func (p *Params) Clone() *Params {
	out := &Params{}
	out.Merge(p)
	return out
}

// UnmarshalYAML decodes a YAML mapping, keeping document order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("transformation params: expected mapping, got %s", nodeKind(node))
	}
	*p = Params{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("transformation param %q: expected scalar value", keyNode.Value)
		}
		var v any
		if err := valNode.Decode(&v); err != nil {
			return fmt.Errorf("transformation param %q: %w", keyNode.Value, err)
		}
		p.Set(keyNode.Value, v)
	}
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// UnmarshalJSON decodes a JSON object, keeping document order. Numbers
// become int when integral and float64 otherwise.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Params{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("transformation params: expected object")
	}

	*p = Params{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("transformation param %q: %w", key, err)
		}
		switch v := raw.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				p.Set(key, int(i))
			} else if f, err := v.Float64(); err == nil {
				p.Set(key, f)
			} else {
				p.Set(key, v.String())
			}
		case string, bool, nil:
			p.Set(key, v)
		default:
			return fmt.Errorf("transformation param %q: expected scalar value", key)
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
