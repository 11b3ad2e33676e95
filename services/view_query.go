package services

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"nimbusdrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// View contexts. Each selects the base visibility predicate for a listing.
const (
	ViewHome    = "home"
	ViewMyDrive = "mydrive"
	ViewShared  = "shared"
	ViewStarred = "starred"
	ViewTrash   = "trash"
)

// HomeWindowSize caps the Home view: it is a recency digest of the most
// recently opened items, not a paginated listing.
const HomeWindowSize = 20

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListQuery is the filter/sort specification for a listing call. Zero values
// mean "no constraint". ParentID of nil means no folder scoping; "" or
// "root" scope to the My Drive root.
type ListQuery struct {
	View       string
	Primary    string
	Type       string
	People     string
	Location   string
	Modified   string
	Search     string
	AdvName    string
	AdvOwner   string
	AdvShared  string
	AdvContent string
	Sort       string
	Limit      int64
	Skip       int64
	ParentID   *string
}

// BuildListFilter composes the mongo predicate for a listing: the view's
// base visibility predicate, the primary files/folders split, the optional
// attribute filters ANDed together, and the folder scope. The people filter
// is the one OR case: a person is involved as owner or as share recipient.
func BuildListFilter(principal string, q ListQuery, now time.Time) (bson.M, error) {
	base := bson.M{"trashed": false}
	var andFilters []bson.M

	switch q.View {
	case ViewShared:
		// Membership in shared_with is the sole predicate; ownership and the
		// display location are irrelevant here.
		base["shared_with"] = principal
	case ViewTrash:
		base["owner"] = principal
		base["trashed"] = true
	case ViewStarred:
		base["owner"] = principal
		base["starred"] = true
	default:
		base["owner"] = principal
	}

	switch q.Primary {
	case "files":
		base["is_folder"] = false
	case "folders":
		base["is_folder"] = true
	}

	if q.Type != "" {
		base["type"] = q.Type
	}
	if q.Location != "" {
		base["location"] = q.Location
	}

	// Home is a flattened feed; folder scoping applies everywhere else.
	if q.ParentID != nil && q.View != ViewHome {
		parentFilter, err := normalizeParentFilter(*q.ParentID)
		if err != nil {
			return nil, err
		}
		base["parent_id"] = parentFilter
	}

	if days := modifiedWindowDays(q.Modified); days > 0 {
		threshold := now.Add(-time.Duration(days) * 24 * time.Hour)
		base["uploaded_at"] = bson.M{"$gte": threshold}
	}

	if q.Search != "" {
		andFilters = append(andFilters, bson.M{"name": substringRegex(q.Search)})
	}
	if q.AdvName != "" {
		andFilters = append(andFilters, bson.M{"name": substringRegex(q.AdvName)})
	}
	if q.AdvOwner != "" {
		andFilters = append(andFilters, bson.M{"owner": substringRegex(q.AdvOwner)})
	}
	if q.People != "" {
		andFilters = append(andFilters, bson.M{"$or": []bson.M{
			{"owner": q.People},
			{"shared_with": q.People},
		}})
	}
	if q.AdvShared != "" {
		andFilters = append(andFilters, bson.M{
			"shared_with": bson.M{"$elemMatch": substringRegex(q.AdvShared)},
		})
	}
	if q.AdvContent != "" {
		// Content search approximates against whatever text the record
		// carries, not a real content index.
		rx := substringRegex(q.AdvContent)
		andFilters = append(andFilters, bson.M{"$or": []bson.M{
			{"description": rx},
			{"name": rx},
			{"original_name": rx},
		}})
	}

	if len(andFilters) > 0 {
		base["$and"] = andFilters
	}

	return base, nil
}

// BuildListSort maps the sort key onto a mongo sort document. Home always
// orders by recency of opening regardless of the requested sort.
func BuildListSort(view, sortKey string) bson.D {
	if view == ViewHome {
		return bson.D{{Key: "last_opened_at", Value: -1}}
	}

	switch sortKey {
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "size":
		return bson.D{{Key: "size_bytes", Value: -1}}
	case "uploadedAt":
		return bson.D{{Key: "uploaded_at", Value: -1}}
	default:
		return bson.D{{Key: "last_opened_at", Value: -1}}
	}
}

// ClampPagination bounds limit/skip. Home ignores the caller's pagination
// entirely and returns at most HomeWindowSize items from the top.
func ClampPagination(view string, limit, skip int64) (int64, int64) {
	if view == ViewHome {
		return HomeWindowSize, 0
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// Facets summarizes the distinct types, people, and locations present on the
// current result page. Page-scoped by design; callers use it to populate
// filter pickers, not for global counts.
type Facets struct {
	Types     []string `json:"types"`
	People    []string `json:"people"`
	Locations []string `json:"locations"`
}

func ComputeFacets(files []models.File) Facets {
	types := map[string]bool{}
	people := map[string]bool{}
	locations := map[string]bool{}

	for _, f := range files {
		if f.Type != "" {
			types[f.Type] = true
		}
		if f.Owner != "" {
			people[f.Owner] = true
		}
		for _, p := range f.SharedWith {
			if p != "" {
				people[p] = true
			}
		}
		if f.Location != "" {
			locations[f.Location] = true
		}
	}

	return Facets{
		Types:     sortedKeys(types),
		People:    sortedKeys(people),
		Locations: sortedKeys(locations),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func modifiedWindowDays(modified string) int {
	switch modified {
	case "today":
		return 1
	case "week":
		return 7
	case "month":
		return 30
	}
	return 0
}

func substringRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

// normalizeParentFilter maps a folder-scope value onto a parent_id match.
// Empty or "root" means the My Drive root; anything else must be a valid
// object id.
func normalizeParentFilter(parentID string) (interface{}, error) {
	if parentID == "" || parentID == "root" {
		return nil, nil
	}

	oid, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, fmt.Errorf("invalid folder id %q: %w", parentID, ErrValidation)
	}
	return oid, nil
}
