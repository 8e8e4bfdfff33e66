// Package jsontree provides schema-agnostic helpers for pulling data out of
// arbitrarily shaped JSON payloads. The upstream feed rearranges its document
// structure between seasons (and sometimes between days), so nothing here
// assumes a fixed shape: callers describe what a node looks like and the
// walker finds every match.
package jsontree

// Walk visits every node of a decoded JSON document (maps, slices, and
// scalars) and calls visit for each one. Traversal uses an explicit stack so
// pathological nesting depth cannot blow the goroutine stack.
func Walk(root any, visit func(node any)) {
	if root == nil {
		return
	}

	stack := []any{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(node)

		switch v := node.(type) {
		case map[string]any:
			for _, child := range v {
				if child != nil {
					stack = append(stack, child)
				}
			}
		case []any:
			for _, child := range v {
				if child != nil {
					stack = append(stack, child)
				}
			}
		}
	}
}

// CollectObjects returns every map node anywhere in the document for which
// pred returns true, in deterministic traversal order. Determinism matters:
// downstream candidate selection must resolve ties the same way on every run.
func CollectObjects(root any, pred func(obj map[string]any) bool) []map[string]any {
	var out []map[string]any
	WalkOrdered(root, func(node any) {
		if obj, ok := node.(map[string]any); ok && pred(obj) {
			out = append(out, obj)
		}
	})
	return out
}

// CollectStrings returns every string value anywhere in the document for
// which pred returns true, in deterministic traversal order.
func CollectStrings(root any, pred func(s string) bool) []string {
	var out []string
	WalkOrdered(root, func(node any) {
		if s, ok := node.(string); ok && pred(s) {
			out = append(out, s)
		}
	})
	return out
}

// WalkOrdered is Walk with a deterministic visit order: map keys are visited
// sorted and slices in index order. Go map iteration order is randomized, so
// the plain Walk cannot promise stable collection order.
func WalkOrdered(root any, visit func(node any)) {
	if root == nil {
		return
	}

	// Depth-first with an explicit stack; children pushed in reverse so they
	// pop in natural order.
	stack := []any{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(node)

		switch v := node.(type) {
		case map[string]any:
			keys := sortedKeys(v)
			for i := len(keys) - 1; i >= 0; i-- {
				if child := v[keys[i]]; child != nil {
					stack = append(stack, child)
				}
			}
		case []any:
			for i := len(v) - 1; i >= 0; i-- {
				if v[i] != nil {
					stack = append(stack, v[i])
				}
			}
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion sort: key sets here are tiny (box-score objects).
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
