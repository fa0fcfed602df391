package architecture

// Clone returns a deep copy of the record. Stores hand out clones so callers
// cannot reach stored state.
func (r Record) Clone() Record {
	out := r
	if r.Nodes != nil {
		out.Nodes = make([]Node, len(r.Nodes))
		for i, n := range r.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	if r.Edges != nil {
		out.Edges = make([]Edge, len(r.Edges))
		copy(out.Edges, r.Edges)
	}
	if r.Metadata != nil {
		out.Metadata = Metadata(cloneMap(r.Metadata))
	}
	return out
}

// Clone returns a deep copy of the node, including its data map.
func (n Node) Clone() Node {
	out := n
	if n.Data != nil {
		out.Data = cloneMap(n.Data)
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Metadata:
		return Metadata(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
