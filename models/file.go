package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entity type values. Folders always carry TypeFolder; for regular files the
// type is advisory, inferred from the uploaded content's MIME type.
const (
	TypeDocument     = "document"
	TypeSpreadsheet  = "spreadsheet"
	TypePresentation = "presentation"
	TypePDF          = "pdf"
	TypeVideo        = "video"
	TypeArchive      = "archive"
	TypeFolder       = "folder"
	TypeText         = "text"
)

// Location display labels. Trashing forces LocationTrash; restoring reverts
// to LocationMyDrive. Sharing never changes the label.
const (
	LocationMyDrive = "My Drive"
	LocationShared  = "Shared with me"
	LocationTrash   = "Trash"
)

// File is the unified record for both files and folders. A folder is a File
// with IsFolder set; it carries zero size and TypeFolder. A shortcut is a
// File with IsShortcut set that resolves through ShortcutTargetID.
type File struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	Owner            string              `bson:"owner" json:"owner"`
	Type             string              `bson:"type" json:"type"`
	IsFolder         bool                `bson:"is_folder" json:"isFolder"`
	ParentID         *primitive.ObjectID `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	Location         string              `bson:"location" json:"location"`
	SharedWith       []string            `bson:"shared_with" json:"sharedWith"`
	Starred          bool                `bson:"starred" json:"starred"`
	Trashed          bool                `bson:"trashed" json:"trashed"`
	AvailableOffline bool                `bson:"available_offline" json:"availableOffline"`
	IsUploaded       bool                `bson:"is_uploaded" json:"isUploaded"`
	IsShortcut       bool                `bson:"is_shortcut" json:"isShortcut"`
	ShortcutTargetID *primitive.ObjectID `bson:"shortcut_target_id,omitempty" json:"shortcutTargetId,omitempty"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	UploadedAt       time.Time           `bson:"uploaded_at" json:"uploadedAt"`
	LastOpenedAt     time.Time           `bson:"last_opened_at" json:"lastOpenedAt"`
	SizeMb           float64             `bson:"size_mb" json:"sizeMb"`
	SizeBytes        int64               `bson:"size_bytes" json:"sizeBytes"`
	StoragePath      string              `bson:"storage_path,omitempty" json:"storagePath,omitempty"`
	OriginalName     string              `bson:"original_name,omitempty" json:"originalName,omitempty"`
	MimeType         string              `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	CreatedAt        time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updated_at" json:"updatedAt"`
}

// EffectiveSizeBytes returns SizeBytes when positive, otherwise the value
// derived from SizeMb.
func (f *File) EffectiveSizeBytes() int64 {
	if f.SizeBytes > 0 {
		return f.SizeBytes
	}
	return int64(f.SizeMb * 1024 * 1024)
}

// FolderRef is the reduced shape returned by the destination-picker listing.
type FolderRef struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	Name     string              `bson:"name" json:"name"`
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parentId,omitempty"`
}
