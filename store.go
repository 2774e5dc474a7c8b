package gravit

import (
	"encoding/json"
	"fmt"
)

// Stored node blobs are JSON objects: "@" holds the class name, "$" the
// child blobs, "!" the persistent flags and every other key a property
// whose value differs from the class default.
const (
	storeClassKey    = "@"
	storeChildrenKey = "$"
	storeFlagsKey    = "!"
)

// persistentFlags are the flags stored with a node.
const persistentFlags = FlagHidden | FlagLocked

// Store serializes n and its subtree.
func Store(n *Node) ([]byte, error) {
	blob, err := storeNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blob)
}

func storeNode(n *Node) (map[string]any, error) {
	c := classes[n.Kind]
	blob := map[string]any{storeClassKey: c.name}
	for _, p := range c.props {
		v, ok := n.props[p.key]
		if !ok || propertyEqual(v, p.def) {
			continue
		}
		enc, err := encodeValue(p.kind, v)
		if err != nil {
			return nil, fmt.Errorf("store %s.%s: %w", c.name, p.key, err)
		}
		blob[p.key] = enc
	}
	if f := n.flags & persistentFlags; f != 0 {
		blob[storeFlagsKey] = uint16(f)
	}
	if len(n.children) > 0 {
		children := make([]map[string]any, 0, len(n.children))
		for _, child := range n.children {
			cb, err := storeNode(child)
			if err != nil {
				return nil, err
			}
			children = append(children, cb)
		}
		blob[storeChildrenKey] = children
	}
	return blob, nil
}

// Restore rebuilds a detached node tree from data produced by Store.
func Restore(data []byte) (*Node, error) {
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return restoreNode(blob)
}

func restoreNode(blob map[string]json.RawMessage) (*Node, error) {
	var name string
	if err := json.Unmarshal(blob[storeClassKey], &name); err != nil {
		return nil, fmt.Errorf("restore: class: %w", err)
	}
	kind, ok := classByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	n := NewNode(kind)
	c := classes[kind]
	for key, raw := range blob {
		switch key {
		case storeClassKey, storeChildrenKey:
			continue
		case storeFlagsKey:
			var f uint16
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, fmt.Errorf("restore %s flags: %w", name, err)
			}
			n.flags = Flags(f) & persistentFlags
			continue
		}
		idx, ok := c.index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, name, key)
		}
		v, err := decodeValue(c.props[idx].kind, raw)
		if err != nil {
			return nil, fmt.Errorf("restore %s.%s: %w", name, key, err)
		}
		n.props[key] = v
	}
	if raw, ok := blob[storeChildrenKey]; ok {
		var children []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &children); err != nil {
			return nil, fmt.Errorf("restore %s children: %w", name, err)
		}
		for _, cb := range children {
			child, err := restoreNode(cb)
			if err != nil {
				return nil, err
			}
			if err := n.AppendChild(child); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// StoreScene serializes a whole document.
func StoreScene(s *Scene) ([]byte, error) {
	return Store(s.root)
}

// RestoreScene rebuilds a document stored by StoreScene. Shared style
// reference ids are kept and the link index is rebuilt.
func RestoreScene(data []byte) (*Scene, error) {
	root, err := Restore(data)
	if err != nil {
		return nil, err
	}
	return sceneFromRoot(root)
}

// --- Value codec ---

func encodeValue(kind valueKind, v any) (any, error) {
	switch kind {
	case valuePattern:
		p, _ := v.(Pattern)
		return FormatPattern(p), nil
	case valueEffect:
		e, _ := v.(Effect)
		if e == nil {
			return nil, nil
		}
		return encodeEffect(e)
	case valueTransform:
		t := v.(Transform)
		return t[:], nil
	case valuePoints:
		pts := v.([]Vec2)
		out := make([][2]float64, len(pts))
		for i, p := range pts {
			out[i] = [2]float64{p.X, p.Y}
		}
		return out, nil
	case valueColor:
		return FormatColor(v.(Color)), nil
	case valueComposite:
		return v.(CompositeOp).String(), nil
	case valueAlign:
		return v.(StrokeAlign).String(), nil
	case valueCap:
		return v.(LineCap).String(), nil
	case valueJoin:
		return v.(LineJoin).String(), nil
	}
	return v, nil
}

func decodeValue(kind valueKind, raw json.RawMessage) (any, error) {
	switch kind {
	case valueFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err
	case valueString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case valueBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case valuePattern:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParsePattern(s)
	case valueEffect:
		var r *effectRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		if r == nil {
			return Effect(nil), nil
		}
		return decodeEffect(*r)
	case valueTransform:
		var t Transform
		err := json.Unmarshal(raw, &t)
		return t, err
	case valuePoints:
		var pts [][2]float64
		if err := json.Unmarshal(raw, &pts); err != nil {
			return nil, err
		}
		out := make([]Vec2, len(pts))
		for i, p := range pts {
			out[i] = Vec2{p[0], p[1]}
		}
		return out, nil
	case valueColor:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParseColor(s)
	case valueComposite:
		return decodeName(raw, func(s string) (any, bool) {
			op, ok := parseCompositeOp(s)
			return op, ok
		})
	case valueAlign:
		return decodeName(raw, func(s string) (any, bool) {
			i, ok := indexOfName(strokeAlignNames[:], s)
			return StrokeAlign(i), ok
		})
	case valueCap:
		return decodeName(raw, func(s string) (any, bool) {
			i, ok := indexOfName(lineCapNames[:], s)
			return LineCap(i), ok
		})
	case valueJoin:
		return decodeName(raw, func(s string) (any, bool) {
			i, ok := indexOfName(lineJoinNames[:], s)
			return LineJoin(i), ok
		})
	}
	return nil, fmt.Errorf("%w: unsupported value kind %d", ErrInvalidValue, kind)
}

func decodeName(raw json.RawMessage, parse func(string) (any, bool)) (any, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	v, ok := parse(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return v, nil
}
