package catalog

// Entry is one normalized catalog record. Field sets differ by scope and
// detail level, so entries stay schemaless.
type Entry map[string]any

// shapeMatcher extracts entries from one known upstream payload shape,
// returning nil when the shape does not apply.
type shapeMatcher func(payload any) []Entry

// Matchers are tried in priority order; the first non-empty result wins.
// The upstream API is not independently versioned and its response shape
// differs between scopes and detail levels, so extraction stays tolerant.
var matchers = []shapeMatcher{
	matchTopLevelArray,
	matchWrappedArray,
	matchKeyedObject,
}

// Extract normalizes an upstream payload to a flat entry list. Unrecognized
// shapes yield an empty list, never an error.
func Extract(payload any) []Entry {
	for _, match := range matchers {
		if entries := match(payload); len(entries) > 0 {
			return entries
		}
	}
	return []Entry{}
}

// matchTopLevelArray handles a bare JSON array of entries.
func matchTopLevelArray(payload any) []Entry {
	items, ok := payload.([]any)
	if !ok {
		return nil
	}
	return collectEntries(items)
}

// matchWrappedArray handles {"data": [...]} and {"models": [...]}.
func matchWrappedArray(payload any) []Entry {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	for _, field := range []string{"data", "models"} {
		if items, ok := obj[field].([]any); ok {
			if entries := collectEntries(items); len(entries) > 0 {
				return entries
			}
		}
	}
	return nil
}

// matchKeyedObject handles {"models": {"image": {"x": {...}}}}, where
// entries are keyed by id under a category object. A single-level keyed
// object {"models": {"x": {...}}} is accepted as well.
func matchKeyedObject(payload any) []Entry {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	keyed, ok := obj["models"].(map[string]any)
	if !ok {
		return nil
	}

	var entries []Entry
	for _, value := range keyed {
		category, ok := value.(map[string]any)
		if !ok {
			continue
		}
		// A value carrying its own id is an entry; otherwise it is a
		// category object whose values are entries keyed by id.
		if _, hasID := category["id"]; hasID {
			entries = append(entries, Entry(category))
			continue
		}
		for _, inner := range category {
			if entry, ok := inner.(map[string]any); ok {
				entries = append(entries, Entry(entry))
			}
		}
	}
	return entries
}

func collectEntries(items []any) []Entry {
	var entries []Entry
	for _, item := range items {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, Entry(entry))
		}
	}
	return entries
}
