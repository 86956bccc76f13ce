package joins

import (
	"errors"
	"fmt"
	"strings"
)

// IndexRequirement names a field that a declared search path reaches but that
// is not declared indexed.
type IndexRequirement struct {
	Type   string
	Field  string
	Reason string
}

// RequiredIndexes statically scans the declared search paths for fromType and
// reports which target fields need indexed: true for the paths to be
// filterable. It never touches the database. Paths that do not resolve at all
// are reported with the resolution failure as the reason so schema tooling
// surfaces them alongside missing indexes.
func (r *Resolver) RequiredIndexes(fromType string, searchPaths []string) []IndexRequirement {
	var reqs []IndexRequirement
	seen := make(map[string]struct{})
	add := func(req IndexRequirement) {
		key := req.Type + "." + req.Field
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		reqs = append(reqs, req)
	}

	for _, path := range searchPaths {
		segments := strings.Split(path, ".")
		if len(segments) < 2 {
			// Local field: indexable on the root type itself.
			entity, ok := r.reg.Entity(fromType)
			if !ok {
				continue
			}
			if f, ok := entity.Field(path); ok && !f.Indexed {
				add(IndexRequirement{
					Type:   fromType,
					Field:  path,
					Reason: fmt.Sprintf("search field %q on %s", path, fromType),
				})
			}
			continue
		}

		_, err := r.ResolveJoinChain(fromType, path)
		if err == nil {
			continue
		}
		var notIndexed *FieldNotIndexedError
		if errors.As(err, &notIndexed) {
			add(IndexRequirement{
				Type:   notIndexed.Type,
				Field:  notIndexed.Field,
				Reason: fmt.Sprintf("cross-table search path %q from %s", path, fromType),
			})
			continue
		}
		add(IndexRequirement{
			Type:   fromType,
			Field:  path,
			Reason: fmt.Sprintf("unresolvable search path: %v", err),
		})
	}
	return reqs
}
