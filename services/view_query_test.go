package services

import (
	"errors"
	"testing"
	"time"

	"nimbusdrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildListFilter(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	principal := "alice@example.com"

	t.Run("mydrive scopes to owner and excludes trash", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive}, now)
		require.NoError(t, err)

		assert.Equal(t, principal, filter["owner"])
		assert.Equal(t, false, filter["trashed"])
		assert.NotContains(t, filter, "shared_with")
	})

	t.Run("shared matches membership only", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewShared}, now)
		require.NoError(t, err)

		assert.Equal(t, principal, filter["shared_with"])
		assert.Equal(t, false, filter["trashed"])
		assert.NotContains(t, filter, "owner")
	})

	t.Run("trash flips the trashed predicate", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewTrash}, now)
		require.NoError(t, err)

		assert.Equal(t, true, filter["trashed"])
		assert.Equal(t, principal, filter["owner"])
	})

	t.Run("starred adds the star predicate", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewStarred}, now)
		require.NoError(t, err)

		assert.Equal(t, true, filter["starred"])
		assert.Equal(t, false, filter["trashed"])
	})

	t.Run("primary split selects folders or files", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, Primary: "folders"}, now)
		require.NoError(t, err)
		assert.Equal(t, true, filter["is_folder"])

		filter, err = BuildListFilter(principal, ListQuery{View: ViewMyDrive, Primary: "files"}, now)
		require.NoError(t, err)
		assert.Equal(t, false, filter["is_folder"])

		filter, err = BuildListFilter(principal, ListQuery{View: ViewMyDrive, Primary: "all"}, now)
		require.NoError(t, err)
		assert.NotContains(t, filter, "is_folder")
	})

	t.Run("type and location match exactly", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{
			View:     ViewMyDrive,
			Type:     models.TypePDF,
			Location: models.LocationMyDrive,
		}, now)
		require.NoError(t, err)

		assert.Equal(t, models.TypePDF, filter["type"])
		assert.Equal(t, models.LocationMyDrive, filter["location"])
	})

	t.Run("people filter matches owner or recipient", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, People: "bob@example.com"}, now)
		require.NoError(t, err)

		andFilters, ok := filter["$and"].([]bson.M)
		require.True(t, ok)
		require.Len(t, andFilters, 1)

		orFilters, ok := andFilters[0]["$or"].([]bson.M)
		require.True(t, ok)
		assert.Equal(t, bson.M{"owner": "bob@example.com"}, orFilters[0])
		assert.Equal(t, bson.M{"shared_with": "bob@example.com"}, orFilters[1])
	})

	t.Run("modified window thresholds uploaded_at", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, Modified: "week"}, now)
		require.NoError(t, err)

		window, ok := filter["uploaded_at"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, now.Add(-7*24*time.Hour), window["$gte"])
	})

	t.Run("search escapes regex metacharacters", func(t *testing.T) {
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, Search: "report (v2)"}, now)
		require.NoError(t, err)

		andFilters := filter["$and"].([]bson.M)
		nameFilter := andFilters[0]["name"].(bson.M)
		assert.Equal(t, `report \(v2\)`, nameFilter["$regex"])
		assert.Equal(t, "i", nameFilter["$options"])
	})

	t.Run("root parent scopes to null parent_id", func(t *testing.T) {
		root := "root"
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, ParentID: &root}, now)
		require.NoError(t, err)

		value, present := filter["parent_id"]
		require.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("hex parent scopes to that folder", func(t *testing.T) {
		oid := primitive.NewObjectID()
		hexID := oid.Hex()
		filter, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, ParentID: &hexID}, now)
		require.NoError(t, err)

		assert.Equal(t, oid, filter["parent_id"])
	})

	t.Run("home ignores folder scoping", func(t *testing.T) {
		bogus := "not-a-hex-id"
		filter, err := BuildListFilter(principal, ListQuery{View: ViewHome, ParentID: &bogus}, now)
		require.NoError(t, err)

		assert.NotContains(t, filter, "parent_id")
	})

	t.Run("malformed parent id is a validation error", func(t *testing.T) {
		bogus := "not-a-hex-id"
		_, err := BuildListFilter(principal, ListQuery{View: ViewMyDrive, ParentID: &bogus}, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestBuildListSort(t *testing.T) {
	t.Run("home forces recency regardless of key", func(t *testing.T) {
		sort := BuildListSort(ViewHome, "name")
		assert.Equal(t, bson.D{{Key: "last_opened_at", Value: -1}}, sort)
	})

	t.Run("sort keys map to fields", func(t *testing.T) {
		assert.Equal(t, bson.D{{Key: "name", Value: 1}}, BuildListSort(ViewMyDrive, "name"))
		assert.Equal(t, bson.D{{Key: "size_bytes", Value: -1}}, BuildListSort(ViewMyDrive, "size"))
		assert.Equal(t, bson.D{{Key: "uploaded_at", Value: -1}}, BuildListSort(ViewMyDrive, "uploadedAt"))
		assert.Equal(t, bson.D{{Key: "last_opened_at", Value: -1}}, BuildListSort(ViewMyDrive, "recent"))
		assert.Equal(t, bson.D{{Key: "last_opened_at", Value: -1}}, BuildListSort(ViewMyDrive, "unknown"))
	})
}

func TestClampPagination(t *testing.T) {
	t.Run("home pins the window", func(t *testing.T) {
		limit, skip := ClampPagination(ViewHome, 500, 40)
		assert.Equal(t, int64(HomeWindowSize), limit)
		assert.Equal(t, int64(0), skip)
	})

	t.Run("defaults and bounds", func(t *testing.T) {
		limit, skip := ClampPagination(ViewMyDrive, 0, -5)
		assert.Equal(t, int64(20), limit)
		assert.Equal(t, int64(0), skip)

		limit, skip = ClampPagination(ViewMyDrive, 1000, 60)
		assert.Equal(t, int64(100), limit)
		assert.Equal(t, int64(60), skip)
	})
}

func TestComputeFacets(t *testing.T) {
	files := []models.File{
		{Type: models.TypePDF, Owner: "bob@example.com", Location: models.LocationMyDrive},
		{Type: models.TypeDocument, Owner: "alice@example.com", SharedWith: []string{"carol@example.com", ""}, Location: models.LocationShared},
		{Type: models.TypePDF, Owner: "alice@example.com", Location: models.LocationMyDrive},
	}

	facets := ComputeFacets(files)

	assert.Equal(t, []string{models.TypeDocument, models.TypePDF}, facets.Types)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, facets.People)
	assert.Equal(t, []string{models.LocationMyDrive, models.LocationShared}, facets.Locations)
}

func TestComputeFacetsEmpty(t *testing.T) {
	facets := ComputeFacets(nil)
	assert.Empty(t, facets.Types)
	assert.Empty(t, facets.People)
	assert.Empty(t, facets.Locations)
}
