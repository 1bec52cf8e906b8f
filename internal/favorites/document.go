package favorites

// DefaultCategory always exists and can be neither deleted nor pruned.
const DefaultCategory = "General"

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 2

// Category is a named, ordered list of record keys.
type Category struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

// Document is the persisted favorites collection.
//
// Version history:
//   - 0: flat JSON array of record keys (no categories)
//   - 1: JSON object of category name -> record keys, unversioned
//   - 2: this structure
type Document struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}

// emptyDocument returns a document holding only the default category.
func emptyDocument() Document {
	return Document{
		Version:    CurrentVersion,
		Categories: []Category{{Name: DefaultCategory, Keys: []string{}}},
	}
}

// normalizeDocument enforces the invariants: the default category comes
// first, names are unique, every key belongs to a single category (first
// occurrence wins) and empty keys are dropped.
func normalizeDocument(in Document) Document {
	out := Document{Version: CurrentVersion}
	seenKeys := make(map[string]bool)
	byName := make(map[string]int)

	add := func(name string, keys []string) {
		i, ok := byName[name]
		if !ok {
			i = len(out.Categories)
			byName[name] = i
			out.Categories = append(out.Categories, Category{Name: name, Keys: []string{}})
		}
		for _, k := range keys {
			if k == "" || seenKeys[k] {
				continue
			}
			seenKeys[k] = true
			out.Categories[i].Keys = append(out.Categories[i].Keys, k)
		}
	}

	add(DefaultCategory, nil)
	for _, c := range in.Categories {
		if c.Name == "" {
			continue
		}
		add(c.Name, c.Keys)
	}

	return out
}
