package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nimbusdrive/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pure state transitions for the mutation engine. Each takes the current
// record, applies the operation's effect, and leaves everything else alone.
// The mongo-facing methods in FileService persist the result.

// ApplyTrash soft-deletes: the trashed flag and the Trash display label move
// together.
func ApplyTrash(f *models.File, now time.Time) {
	f.Trashed = true
	f.Location = models.LocationTrash
	f.UpdatedAt = now
}

// ApplyRestore clears the trashed flag. The label reverts to My Drive; the
// pre-trash location is never re-derived.
func ApplyRestore(f *models.File, now time.Time) {
	f.Trashed = false
	if f.Location == models.LocationTrash {
		f.Location = models.LocationMyDrive
	}
	f.UpdatedAt = now
}

// ApplyMove re-parents a record. A nil parent moves it to the My Drive root;
// otherwise parent linkage and display label follow the destination folder.
func ApplyMove(f *models.File, parent *models.File, now time.Time) {
	if parent == nil {
		f.ParentID = nil
		f.Location = models.LocationMyDrive
	} else {
		id := parent.ID
		f.ParentID = &id
		f.Location = parent.Location
	}
	f.UpdatedAt = now
}

// ValidateMoveDestination rejects destinations that would link a folder
// beneath itself: the destination may not be the folder being moved or any
// of its descendants. The ancestor walk follows parent linkage via lookup;
// a missing ancestor terminates the walk.
func ValidateMoveDestination(f *models.File, parent *models.File, lookup func(primitive.ObjectID) (*models.File, error)) error {
	if parent == nil || !f.IsFolder {
		return nil
	}

	seen := map[primitive.ObjectID]bool{}
	current := parent
	for {
		if current.ID == f.ID {
			return fmt.Errorf("cannot move folder %s into itself or its descendant: %w", f.ID.Hex(), ErrInvalidParent)
		}
		if current.ParentID == nil || seen[current.ID] {
			return nil
		}
		seen[current.ID] = true

		next, err := lookup(*current.ParentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		current = next
	}
}

// ApplyShare replaces the recipient set wholesale. The display location is
// untouched: visibility for recipients is computed by the shared view's
// membership predicate, not by relabeling the owner's record.
func ApplyShare(f *models.File, recipients []string, now time.Time) {
	f.SharedWith = NormalizeRecipients(recipients)
	f.UpdatedAt = now
}

// NormalizeRecipients drops empties and collapses duplicates, preserving
// first-seen order.
func NormalizeRecipients(recipients []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// CopyName yields the probe sequence for copy deduplication: "Copy of X",
// then "Copy of X (1)", "Copy of X (2)", ...
func CopyName(original string, attempt int) string {
	base := "Copy of " + original
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s (%d)", base, attempt)
}

// BuildCopy derives a new record from an original under the given name. The
// copy shares the original's content reference, starts unstarred and
// untrashed, and is never marked offline.
func BuildCopy(original models.File, name string, now time.Time) models.File {
	return models.File{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Owner:        original.Owner,
		Type:         original.Type,
		IsFolder:     original.IsFolder,
		ParentID:     original.ParentID,
		Location:     original.Location,
		SharedWith:   original.SharedWith,
		Description:  original.Description,
		UploadedAt:   original.UploadedAt,
		LastOpenedAt: now,
		SizeMb:       original.SizeMb,
		SizeBytes:    original.SizeBytes,
		StoragePath:  original.StoragePath,
		OriginalName: original.OriginalName,
		MimeType:     original.MimeType,
		IsUploaded:   original.IsUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BuildShortcut creates a first-class record that resolves through the
// target. It carries zero size and no content of its own.
func BuildShortcut(target models.File, owner string, parent *models.File, now time.Time) models.File {
	shortcut := models.File{
		ID:           primitive.NewObjectID(),
		Name:         target.Name,
		Owner:        owner,
		Type:         target.Type,
		Location:     models.LocationMyDrive,
		SharedWith:   []string{},
		IsShortcut:   true,
		UploadedAt:   now,
		LastOpenedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	targetID := target.ID
	shortcut.ShortcutTargetID = &targetID

	if parent != nil {
		parentID := parent.ID
		shortcut.ParentID = &parentID
		shortcut.Location = parent.Location
	}

	return shortcut
}

// MapMimeToType infers the advisory entity type from a MIME type.
func MapMimeToType(mime string) string {
	switch {
	case strings.Contains(mime, "spreadsheet"), strings.Contains(mime, "excel"):
		return models.TypeSpreadsheet
	case strings.Contains(mime, "presentation"):
		return models.TypePresentation
	case strings.Contains(mime, "pdf"):
		return models.TypePDF
	case strings.Contains(mime, "zip"), strings.Contains(mime, "rar"):
		return models.TypeArchive
	case strings.Contains(mime, "video"):
		return models.TypeVideo
	case strings.Contains(mime, "plain"):
		return models.TypeText
	case strings.Contains(mime, "word"), strings.Contains(mime, "document"), strings.Contains(mime, "text"):
		return models.TypeDocument
	default:
		return models.TypeDocument
	}
}
