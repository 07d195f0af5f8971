package discography

import (
	"fmt"
	"sort"
	"strings"
)

// Release is a normalized catalog entry. A Release is only materialized when
// both ID and Name could be resolved from the source payload; partial records
// are dropped during normalization instead of being stored with filler text.
type Release struct {
	ID          string
	Name        string
	ReleaseDate string // ISO-ish date string, may be empty
	AlbumType   string // lower-cased tag ("album", "single", ...), may be empty
	URI         string // synthesized from ID when the source omitted it
	ImageURL    string
}

// maxCollectDepth bounds the recursive walk over the overview response so an
// unexpectedly deep (or cyclic, post-decode impossible but cheap to guard)
// document cannot blow the stack.
const maxCollectDepth = 10

// releaseTypes is the allow-list of type tags that classify an item as a
// release-like entity. Some payload shapes omit the tag entirely, in which
// case an album-style URI is accepted instead.
var releaseTypes = map[string]bool{
	"album":       true,
	"single":      true,
	"compilation": true,
	"ep":          true,
	"appears_on":  true,
}

// normalize extracts a Release from one raw catalog object, or returns nil
// when the item cannot be classified as a release or is missing its identity.
// The remote schema is inconsistent across response shapes: release fields may
// sit directly on the item, under an "album" sub-object, or under "metadata",
// so each field is resolved against that prioritized list of sources.
func normalize(raw any) *Release {
	item, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	sources := []map[string]any{item}
	for _, key := range []string{"album", "metadata"} {
		if sub, ok := item[key].(map[string]any); ok {
			sources = append(sources, sub)
		}
	}

	uri := firstString(sources, "uri")
	typeTag := strings.ToLower(firstString(sources, "type", "albumType", "album_type"))

	if !releaseTypes[typeTag] && !albumURI(uri) {
		return nil
	}

	id := firstString(sources, "id")
	if id == "" {
		id = idFromURI(uri)
	}

	name := firstString(sources, "name", "title")
	if name == "" {
		if header, ok := item["header"].(map[string]any); ok {
			name = stringField(header, "title")
		}
	}

	if id == "" || name == "" {
		return nil
	}

	if uri == "" {
		uri = "catalog:album:" + id
	}

	albumType := typeTag
	if !releaseTypes[albumType] {
		albumType = strings.ToLower(firstString(sources, "albumType", "album_type"))
	}

	return &Release{
		ID:          id,
		Name:        name,
		ReleaseDate: extractDate(sources),
		AlbumType:   albumType,
		URI:         uri,
		ImageURL:    extractImageURL(sources),
	}
}

// collectDeep walks an arbitrary decoded JSON value looking for normalizable
// release objects at any level. The first release seen per ID wins; duplicates
// found deeper in the tree are dropped, which favors the releases the service
// surfaced most prominently. Object keys are visited in sorted order so the
// traversal (and therefore the result order) is reproducible.
func collectDeep(node any, set *releaseSet, depth int) {
	if depth > maxCollectDepth {
		return
	}

	switch v := node.(type) {
	case []any:
		for _, elem := range v {
			collectDeep(elem, set, depth+1)
		}
	case map[string]any:
		if r := normalize(v); r != nil {
			set.add(*r)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectDeep(v[k], set, depth+1)
		}
	}
}

// releaseSet accumulates deduplicated releases while preserving discovery
// order, which serves as the tie-break when sorting by date.
type releaseSet struct {
	byID  map[string]Release
	order []string
}

func newReleaseSet() *releaseSet {
	return &releaseSet{byID: make(map[string]Release)}
}

// add inserts a release unless one with the same ID was already seen.
func (s *releaseSet) add(r Release) bool {
	if _, exists := s.byID[r.ID]; exists {
		return false
	}
	s.byID[r.ID] = r
	s.order = append(s.order, r.ID)
	return true
}

func (s *releaseSet) len() int {
	return len(s.order)
}

// sorted returns the releases ordered by release date descending using plain
// lexicographic comparison. Empty dates compare lowest and cluster at the end.
// The sort is stable so equal dates keep their discovery order.
func (s *releaseSet) sorted() []Release {
	releases := make([]Release, 0, len(s.order))
	for _, id := range s.order {
		releases = append(releases, s.byID[id])
	}
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].ReleaseDate > releases[j].ReleaseDate
	})
	return releases
}

// albumURI reports whether a URI points at an album-type resource.
func albumURI(uri string) bool {
	return strings.Contains(uri, ":album:") || strings.Contains(uri, "/album/")
}

// idFromURI extracts the trailing identifier from a "scheme:album:id" URI.
func idFromURI(uri string) string {
	if !albumURI(uri) {
		return ""
	}
	if idx := strings.LastIndexAny(uri, ":/"); idx >= 0 && idx+1 < len(uri) {
		return uri[idx+1:]
	}
	return ""
}

// extractDate resolves the release date across the shapes the service uses:
// a plain string field, or a date object with an "isoString" or "year" member.
func extractDate(sources []map[string]any) string {
	for _, src := range sources {
		for _, key := range []string{"releaseDate", "release_date", "date"} {
			switch v := src[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if iso := stringField(v, "isoString"); iso != "" {
					return iso
				}
				if year, ok := v["year"].(float64); ok && year > 0 {
					return fmt.Sprintf("%04d", int(year))
				}
			}
		}
	}
	return ""
}

// extractImageURL resolves cover art from a direct field, an "images" array,
// or a "coverArt.sources" array.
func extractImageURL(sources []map[string]any) string {
	for _, src := range sources {
		if u := firstStringOf(src, "imageUrl", "image_url"); u != "" {
			return u
		}
		if u := firstImageFrom(src["images"]); u != "" {
			return u
		}
		if cover, ok := src["coverArt"].(map[string]any); ok {
			if u := firstImageFrom(cover["sources"]); u != "" {
				return u
			}
		}
	}
	return ""
}

// firstImageFrom returns the "url" of the first object in an image array.
func firstImageFrom(v any) string {
	images, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, img := range images {
		if m, ok := img.(map[string]any); ok {
			if u := stringField(m, "url"); u != "" {
				return u
			}
		}
	}
	return ""
}

// firstString returns the first non-empty string value for any of the keys,
// checking each source map in priority order.
func firstString(sources []map[string]any, keys ...string) string {
	for _, src := range sources {
		if v := firstStringOf(src, keys...); v != "" {
			return v
		}
	}
	return ""
}

func firstStringOf(src map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(src, key); v != "" {
			return v
		}
	}
	return ""
}

func stringField(src map[string]any, key string) string {
	v, _ := src[key].(string)
	return v
}
