/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document

import (
	"fmt"
)

// copyMap deep-copies nested maps and slices so snapshots never alias the
// document's own storage. Other values are copied by assignment.
func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return copyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}

func toString(v any) string {
	return fmt.Sprintf("%v", v)
}
