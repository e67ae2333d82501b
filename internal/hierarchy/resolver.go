package hierarchy

// FindParentByLevel performs the bounded upward walk of spec.md §4.4:
// if objectID's own level is already in targetLevels, it is returned
// unchanged; otherwise the walk follows parent edges until it lands on
// a level in targetLevels, exhausts the map, or revisits a node (cycle
// protection). The second return value reports whether a match was
// found at all (false means "leave the column null", not an error).
func (x *Index) FindParentByLevel(objectID string, targetLevels []string) (string, bool) {
	if lv, ok := x.level[objectID]; ok && levelIn(lv, targetLevels) {
		return objectID, true
	}

	visited := map[string]bool{objectID: true}
	current := objectID

	for {
		parent, ok := x.parent[current]
		if !ok {
			return "", false
		}
		if visited[parent] {
			return "", false
		}
		visited[parent] = true

		if lv, ok := x.level[parent]; ok && levelIn(lv, targetLevels) {
			return parent, true
		}
		current = parent
	}
}

// FindMunicipalityParent is resolve(id, {"3","4"}), named separately
// per spec.md §4.4 because it is invoked both from settlement→
// municipality filling and from the house fallback pass.
func (x *Index) FindMunicipalityParent(objectID string) (string, bool) {
	return x.FindParentByLevel(objectID, []string{"3", "4"})
}

func levelIn(level string, targets []string) bool {
	for _, t := range targets {
		if level == t {
			return true
		}
	}
	return false
}
