package services

import (
	"testing"
	"time"

	"nimbusdrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTrashRestoreRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("trash sets flag and label together", func(t *testing.T) {
		f := models.File{Location: models.LocationMyDrive, Starred: true}
		ApplyTrash(&f, now)

		assert.True(t, f.Trashed)
		assert.Equal(t, models.LocationTrash, f.Location)
		assert.True(t, f.Starred, "star survives trashing")
	})

	t.Run("restore reverts the trash label to My Drive", func(t *testing.T) {
		f := models.File{Trashed: true, Location: models.LocationTrash}
		ApplyRestore(&f, now)

		assert.False(t, f.Trashed)
		assert.Equal(t, models.LocationMyDrive, f.Location)
	})

	t.Run("restore leaves other labels alone", func(t *testing.T) {
		f := models.File{Trashed: true, Location: models.LocationShared}
		ApplyRestore(&f, now)

		assert.False(t, f.Trashed)
		assert.Equal(t, models.LocationShared, f.Location)
	})
}

func TestApplyMove(t *testing.T) {
	now := time.Now()

	t.Run("nil parent moves to root", func(t *testing.T) {
		parentID := primitive.NewObjectID()
		f := models.File{ParentID: &parentID, Location: "Projects"}
		ApplyMove(&f, nil, now)

		assert.Nil(t, f.ParentID)
		assert.Equal(t, models.LocationMyDrive, f.Location)
	})

	t.Run("destination folder sets linkage and label", func(t *testing.T) {
		parent := models.File{ID: primitive.NewObjectID(), Location: models.LocationMyDrive, IsFolder: true}
		f := models.File{}
		ApplyMove(&f, &parent, now)

		require.NotNil(t, f.ParentID)
		assert.Equal(t, parent.ID, *f.ParentID)
		assert.Equal(t, parent.Location, f.Location)
	})
}

func TestValidateMoveDestination(t *testing.T) {
	folder := func(parent *models.File) *models.File {
		f := &models.File{ID: primitive.NewObjectID(), IsFolder: true}
		if parent != nil {
			parentID := parent.ID
			f.ParentID = &parentID
		}
		return f
	}

	// a > b > c, with d as an unrelated sibling of a.
	a := folder(nil)
	b := folder(a)
	c := folder(b)
	d := folder(nil)

	records := map[primitive.ObjectID]*models.File{a.ID: a, b.ID: b, c.ID: c, d.ID: d}
	lookup := func(id primitive.ObjectID) (*models.File, error) {
		if f, ok := records[id]; ok {
			return f, nil
		}
		return nil, ErrNotFound
	}

	t.Run("folder into itself is rejected", func(t *testing.T) {
		err := ValidateMoveDestination(a, a, lookup)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("folder into its descendant is rejected", func(t *testing.T) {
		err := ValidateMoveDestination(a, c, lookup)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("folder into an unrelated folder is fine", func(t *testing.T) {
		assert.NoError(t, ValidateMoveDestination(a, d, lookup))
	})

	t.Run("folder into its own child's sibling level is fine", func(t *testing.T) {
		assert.NoError(t, ValidateMoveDestination(c, a, lookup))
	})

	t.Run("nil parent is the root and always fine", func(t *testing.T) {
		assert.NoError(t, ValidateMoveDestination(a, nil, lookup))
	})

	t.Run("plain files are unconstrained", func(t *testing.T) {
		file := &models.File{ID: primitive.NewObjectID()}
		assert.NoError(t, ValidateMoveDestination(file, c, lookup))
	})

	t.Run("missing ancestor ends the walk", func(t *testing.T) {
		orphanParent := primitive.NewObjectID()
		orphan := &models.File{ID: primitive.NewObjectID(), IsFolder: true, ParentID: &orphanParent}
		records[orphan.ID] = orphan
		assert.NoError(t, ValidateMoveDestination(a, orphan, lookup))
	})

	t.Run("corrupt linkage loop terminates", func(t *testing.T) {
		x := folder(nil)
		y := folder(x)
		xParent := y.ID
		x.ParentID = &xParent
		records[x.ID] = x
		records[y.ID] = y

		z := folder(nil)
		assert.NoError(t, ValidateMoveDestination(z, x, lookup))
	})
}

func TestApplyShare(t *testing.T) {
	now := time.Now()

	t.Run("replaces the recipient set wholesale", func(t *testing.T) {
		f := models.File{SharedWith: []string{"old@example.com"}, Location: models.LocationMyDrive}
		ApplyShare(&f, []string{"bob@example.com", "carol@example.com"}, now)

		assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, f.SharedWith)
		assert.Equal(t, models.LocationMyDrive, f.Location, "sharing never relabels the owner's record")
	})

	t.Run("empty set revokes all access", func(t *testing.T) {
		f := models.File{SharedWith: []string{"bob@example.com"}}
		ApplyShare(&f, nil, now)

		assert.Empty(t, f.SharedWith)
	})
}

func TestNormalizeRecipients(t *testing.T) {
	out := NormalizeRecipients([]string{" bob@example.com", "", "carol@example.com", "bob@example.com", "  "})
	assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, out)
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Copy of Budget", CopyName("Budget", 0))
	assert.Equal(t, "Copy of Budget (1)", CopyName("Budget", 1))
	assert.Equal(t, "Copy of Budget (7)", CopyName("Budget", 7))
}

func TestBuildCopy(t *testing.T) {
	now := time.Now()
	parentID := primitive.NewObjectID()
	original := models.File{
		ID:          primitive.NewObjectID(),
		Name:        "Budget",
		Owner:       "alice@example.com",
		Type:        models.TypeSpreadsheet,
		ParentID:    &parentID,
		Location:    models.LocationMyDrive,
		SharedWith:  []string{"bob@example.com"},
		Starred:     true,
		StoragePath: "uploads/123-budget.xlsx",
		SizeBytes:   2048,
		IsUploaded:  true,
	}

	dup := BuildCopy(original, "Copy of Budget", now)

	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "Copy of Budget", dup.Name)
	assert.Equal(t, original.Owner, dup.Owner)
	assert.Equal(t, original.ParentID, dup.ParentID)
	assert.Equal(t, original.StoragePath, dup.StoragePath, "copies share the content reference")
	assert.Equal(t, original.SizeBytes, dup.SizeBytes)
	assert.False(t, dup.Starred)
	assert.False(t, dup.Trashed)
	assert.False(t, dup.AvailableOffline)
	assert.Equal(t, now, dup.LastOpenedAt)
}

func TestBuildShortcut(t *testing.T) {
	now := time.Now()
	target := models.File{
		ID:        primitive.NewObjectID(),
		Name:      "Roadmap",
		Type:      models.TypeDocument,
		SizeBytes: 4096,
	}

	t.Run("without parent lands at My Drive root", func(t *testing.T) {
		shortcut := BuildShortcut(target, "alice@example.com", nil, now)

		assert.True(t, shortcut.IsShortcut)
		require.NotNil(t, shortcut.ShortcutTargetID)
		assert.Equal(t, target.ID, *shortcut.ShortcutTargetID)
		assert.Equal(t, target.Name, shortcut.Name)
		assert.Equal(t, "alice@example.com", shortcut.Owner)
		assert.Nil(t, shortcut.ParentID)
		assert.Equal(t, models.LocationMyDrive, shortcut.Location)
		assert.Zero(t, shortcut.SizeBytes, "shortcuts carry no content")
	})

	t.Run("with parent inherits its location", func(t *testing.T) {
		parent := models.File{ID: primitive.NewObjectID(), Location: "Projects", IsFolder: true}
		shortcut := BuildShortcut(target, "alice@example.com", &parent, now)

		require.NotNil(t, shortcut.ParentID)
		assert.Equal(t, parent.ID, *shortcut.ParentID)
		assert.Equal(t, parent.Location, shortcut.Location)
	})
}

func TestMapMimeToType(t *testing.T) {
	cases := []struct {
		mime string
		want string
	}{
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", models.TypeSpreadsheet},
		{"application/vnd.ms-excel", models.TypeSpreadsheet},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", models.TypePresentation},
		{"application/pdf", models.TypePDF},
		{"application/zip", models.TypeArchive},
		{"application/x-rar-compressed", models.TypeArchive},
		{"video/mp4", models.TypeVideo},
		{"text/plain", models.TypeText},
		{"application/msword", models.TypeDocument},
		{"image/png", models.TypeDocument},
	}

	for _, tc := range cases {
		t.Run(tc.mime, func(t *testing.T) {
			assert.Equal(t, tc.want, MapMimeToType(tc.mime))
		})
	}
}
