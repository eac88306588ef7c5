package recommender

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"wardrobeapi/languageutil"
)

// Attribute is a stored tag field. It arrives either as a list or as a raw
// string that may hold serialized JSON or a delimited list.
type Attribute struct {
	List []string
	Raw  string
}

func AttributeList(tags ...string) Attribute {
	return Attribute{List: tags}
}

func AttributeRaw(raw string) Attribute {
	return Attribute{Raw: raw}
}

// UnmarshalJSON accepts an array of strings, a string, or null.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Attribute{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err == nil {
			a.List = list
			return nil
		}
		// mixed arrays are kept raw and recovered by the normalizer
		a.Raw = string(data)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		a.Raw = string(data)
		return nil
	}
	a.Raw = s
	return nil
}

// MarshalJSON always writes the normalized tag list.
func (a Attribute) MarshalJSON() ([]byte, error) {
	tags := NormalizeAttribute(a).Tags
	if tags == nil {
		tags = TagSet{}
	}
	return json.Marshal([]string(tags))
}

// TagSet is a sorted, de-duplicated set of canonical tags.
type TagSet []string

func (t TagSet) Has(tag string) bool {
	i := sort.SearchStrings(t, tag)
	return i < len(t) && t[i] == tag
}

func (t TagSet) HasAny(tags ...string) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

func (t TagSet) Empty() bool {
	return len(t) == 0
}

// Normalized is the outcome of normalizing an Attribute. Fallback is set when
// serialized input could not be parsed and was recovered by splitting.
type Normalized struct {
	Tags     TagSet
	Fallback bool
}

// CanonicalTag folds a single label onto its canonical tag.
func CanonicalTag(label string) string {
	folded := languageutil.Fold(label)
	if alias, ok := tagAliases[folded]; ok {
		return alias
	}
	return folded
}

// NormalizeAttribute never fails. Empty input yields an empty set.
func NormalizeAttribute(a Attribute) Normalized {
	if len(a.List) > 0 {
		return Normalized{Tags: newTagSet(a.List)}
	}
	raw := strings.TrimSpace(a.Raw)
	// a stored JSON null carries no restriction either
	if raw == "" || raw == "null" {
		return Normalized{}
	}
	switch raw[0] {
	case '[', '"', '{':
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return Normalized{Tags: newTagSet(list)}
		}
		var single string
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			return Normalized{Tags: newTagSet(splitDelimited(single))}
		}
		stripped := strings.Map(func(r rune) rune {
			switch r {
			case '[', ']', '{', '}', '"', '\'':
				return -1
			}
			return r
		}, raw)
		return Normalized{Tags: newTagSet(splitDelimited(stripped)), Fallback: true}
	}
	return Normalized{Tags: newTagSet(splitDelimited(raw))}
}

func splitDelimited(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', '，', '、', ';', '；', '|', '/':
			return true
		}
		return false
	})
}

func newTagSet(labels []string) TagSet {
	seen := make(map[string]struct{}, len(labels))
	tags := make(TagSet, 0, len(labels))
	for _, label := range labels {
		tag := CanonicalTag(label)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	sort.Strings(tags)
	return tags
}
