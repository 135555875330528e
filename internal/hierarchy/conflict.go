package hierarchy

// ResolveConflicts rewrites the Out names of the flattened entries so
// they are pairwise unique across the whole set. Colliding names grow
// the shortest disambiguating prefix: the nearest enclosing instance
// name first, then the next one out, re-checked after every step.
// Names that never collide stay bare.
func ResolveConflicts(entries []SpyEntry, separator, prefix string) ([]SpyEntry, error) {
	if separator == "" {
		separator = "_"
	}

	groups := make(map[string][]int)
	var order []string
	for i, e := range entries {
		if _, ok := groups[e.Name]; !ok {
			order = append(order, e.Name)
		}
		groups[e.Name] = append(groups[e.Name], i)
	}

	out := make([]SpyEntry, len(entries))
	copy(out, entries)

	taken := make(map[string]bool)
	for _, name := range order {
		if len(groups[name]) == 1 {
			taken[name] = true
		}
	}

	for _, name := range order {
		idxs := groups[name]
		if len(idxs) == 1 {
			out[idxs[0]].Out = prefix + name
			continue
		}

		depth := make([]int, len(idxs))
		for {
			cand := make([]string, len(idxs))
			counts := make(map[string]int)
			for k, i := range idxs {
				cand[k] = qualified(out[i], depth[k], separator)
				counts[cand[k]]++
			}

			progressed := false
			settled := true
			for k, i := range idxs {
				if counts[cand[k]] == 1 && !taken[cand[k]] {
					continue
				}
				settled = false
				if depth[k] < len(out[i].Path) {
					depth[k]++
					progressed = true
				}
			}
			if settled {
				for k, i := range idxs {
					taken[cand[k]] = true
					out[i].Out = prefix + cand[k]
				}
				break
			}
			if !progressed {
				var paths []string
				for k, i := range idxs {
					if counts[cand[k]] > 1 || taken[cand[k]] {
						paths = append(paths, out[i].FullPath())
					}
				}
				return nil, &UnresolvableConflictError{Name: name, Paths: paths}
			}
		}
	}
	return out, nil
}

// qualified prepends the innermost n path segments to the bare name.
func qualified(e SpyEntry, n int, sep string) string {
	name := e.Name
	for i := 0; i < n; i++ {
		name = e.Path[len(e.Path)-1-i] + sep + name
	}
	return name
}
