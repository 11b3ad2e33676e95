package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"nimbusdrive/models"
	"nimbusdrive/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FileService implements the state-changing operations over file records.
// Every operation reads current state, applies the transition, and writes it
// back; concurrent writes to the same record resolve last-write-wins.
type FileService struct {
	fileCollection *mongo.Collection
	blobStore      BlobStore
	viewService    *ViewService
	maxFileSize    int64
	quotaBytes     int64
}

func NewFileService(db *mongo.Database, blobStore BlobStore, viewService *ViewService, maxFileSize, quotaBytes int64) *FileService {
	return &FileService{
		fileCollection: db.Collection("files"),
		blobStore:      blobStore,
		viewService:    viewService,
		maxFileSize:    maxFileSize,
		quotaBytes:     quotaBytes,
	}
}

// CreateFileRequest is the payload for a placeholder create. Owner is never
// part of the payload; it is forced to the authenticated principal.
type CreateFileRequest struct {
	Name        string   `json:"name" binding:"required"`
	Type        string   `json:"type"`
	IsFolder    bool     `json:"isFolder"`
	ParentID    *string  `json:"parentId"`
	Location    string   `json:"location"`
	SharedWith  []string `json:"sharedWith"`
	Starred     bool     `json:"starred"`
	Description string   `json:"description"`
	SizeMb      float64  `json:"sizeMb"`
	SizeBytes   int64    `json:"sizeBytes"`
}

// UploadRequest carries an upload-backed create: the content stream goes to
// the blob store, the metadata row references the returned storage path.
type UploadRequest struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
	Name        string
	Type        string
	ParentID    *string
	Description string
}

func (s *FileService) Create(ctx context.Context, principal string, req CreateFileRequest) (*models.File, error) {
	name := strings.TrimSpace(req.Name)
	if err := utils.ValidateEntityName(name); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	isFolder := req.IsFolder || req.Type == models.TypeFolder

	entityType := req.Type
	if isFolder {
		entityType = models.TypeFolder
	} else if entityType == "" {
		entityType = models.TypeDocument
	}
	if err := utils.ValidateEntityType(entityType); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	parent, err := s.resolveParentFolder(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := models.File{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Owner:        principal,
		Type:         entityType,
		IsFolder:     isFolder,
		Location:     models.LocationMyDrive,
		SharedWith:   NormalizeRecipients(req.SharedWith),
		Starred:      req.Starred,
		Description:  strings.TrimSpace(req.Description),
		UploadedAt:   now,
		LastOpenedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if parent != nil {
		parentID := parent.ID
		doc.ParentID = &parentID
		doc.Location = parent.Location
	} else if req.Location != "" {
		doc.Location = req.Location
	}

	if !isFolder {
		doc.SizeMb = req.SizeMb
		if req.SizeBytes > 0 {
			doc.SizeBytes = req.SizeBytes
		} else {
			doc.SizeBytes = int64(math.Round(req.SizeMb * 1024 * 1024))
		}
	}

	if _, err := s.fileCollection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	return &doc, nil
}

func (s *FileService) Upload(ctx context.Context, principal string, req UploadRequest) (*models.File, error) {
	if req.Size > s.maxFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes: %w", req.Filename, s.maxFileSize, ErrValidation)
	}

	usage, err := s.viewService.ComputeUsage(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage quota: %w", err)
	}
	if usage.UsedBytes+req.Size > s.quotaBytes {
		return nil, fmt.Errorf("upload of %d bytes: %w", req.Size, ErrQuotaExceeded)
	}

	parent, err := s.resolveParentFolder(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	storagePath, err := s.blobStore.Save(ctx, req.Filename, req.Content, req.Size, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded content: %w", err)
	}

	entityType := req.Type
	if entityType == "" {
		entityType = MapMimeToType(req.ContentType)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Filename
	}

	now := time.Now()
	doc := models.File{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Owner:        principal,
		Type:         entityType,
		Location:     models.LocationMyDrive,
		SharedWith:   []string{},
		Description:  strings.TrimSpace(req.Description),
		UploadedAt:   now,
		LastOpenedAt: now,
		SizeMb:       math.Round(float64(req.Size)/(1024*1024)*100) / 100,
		SizeBytes:    req.Size,
		StoragePath:  storagePath,
		OriginalName: req.Filename,
		MimeType:     req.ContentType,
		IsUploaded:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if parent != nil {
		parentID := parent.ID
		doc.ParentID = &parentID
		doc.Location = parent.Location
	}

	if _, err := s.fileCollection.InsertOne(ctx, doc); err != nil {
		// Roll the orphaned blob back; the metadata row is the source of truth.
		if delErr := s.blobStore.Delete(ctx, storagePath); delErr != nil {
			utils.LogWarning("failed to clean up blob %s after insert failure: %v", storagePath, delErr)
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}
	return &doc, nil
}

// Get fetches a record and touches its recency signal.
func (s *FileService) Get(ctx context.Context, id string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	file.LastOpenedAt = now
	_, err = s.fileCollection.UpdateOne(ctx, bson.M{"_id": file.ID},
		bson.M{"$set": bson.M{"last_opened_at": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to update last opened time: %w", err)
	}
	return file, nil
}

// Open resolves a record to its blob content for download or preview.
// Shortcuts resolve through their target; the shortcut itself carries no
// content.
func (s *FileService) Open(ctx context.Context, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	resolved := file
	if file.IsShortcut {
		if file.ShortcutTargetID == nil {
			return nil, nil, fmt.Errorf("shortcut %s has no target: %w", id, ErrNotFound)
		}
		resolved, err = s.findByID(ctx, file.ShortcutTargetID.Hex())
		if err != nil {
			return nil, nil, err
		}
	}

	if resolved.StoragePath == "" {
		return nil, nil, fmt.Errorf("file %s has no stored content: %w", resolved.ID.Hex(), ErrValidation)
	}

	now := time.Now()
	if _, err := s.fileCollection.UpdateOne(ctx, bson.M{"_id": file.ID},
		bson.M{"$set": bson.M{"last_opened_at": now}}); err != nil {
		utils.LogWarning("failed to touch last opened time for %s: %v", id, err)
	}

	content, err := s.blobStore.Open(ctx, resolved.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return resolved, content, nil
}

func (s *FileService) Rename(ctx context.Context, id, name string) (*models.File, error) {
	trimmed := strings.TrimSpace(name)
	if err := utils.ValidateEntityName(trimmed); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Name = trimmed
	file.UpdatedAt = time.Now()
	return s.persist(ctx, file, bson.M{"name": file.Name, "updated_at": file.UpdatedAt})
}

func (s *FileService) UpdateDescription(ctx context.Context, id, description string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Description = strings.TrimSpace(description)
	file.UpdatedAt = time.Now()
	return s.persist(ctx, file, bson.M{"description": file.Description, "updated_at": file.UpdatedAt})
}

// Move re-parents a record. A nil or root parent id moves it to the My Drive
// root; a bare location value relabels without re-parenting. A folder may
// never move into itself or one of its descendants.
func (s *FileService) Move(ctx context.Context, id string, parentID *string, location string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if parentID != nil {
		parent, err := s.resolveParentFolder(ctx, parentID)
		if err != nil {
			return nil, err
		}
		err = ValidateMoveDestination(file, parent, func(oid primitive.ObjectID) (*models.File, error) {
			return s.findByID(ctx, oid.Hex())
		})
		if err != nil {
			return nil, err
		}
		ApplyMove(file, parent, now)
		if parent == nil && location != "" {
			file.Location = location
		}
	} else if location != "" {
		file.Location = location
		file.UpdatedAt = now
	} else {
		return file, nil
	}

	return s.persist(ctx, file, bson.M{
		"parent_id":  file.ParentID,
		"location":   file.Location,
		"updated_at": file.UpdatedAt,
	})
}

// Copy duplicates a leaf file under a name made unique within
// (owner, parent) by numeric suffix probing. Folders are not copyable.
func (s *FileService) Copy(ctx context.Context, id string) (*models.File, error) {
	original, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if original.Trashed {
		return nil, fmt.Errorf("cannot copy a trashed item: %w", ErrValidation)
	}
	if original.IsFolder {
		return nil, fmt.Errorf("folders cannot be copied: %w", ErrValidation)
	}

	var name string
	for attempt := 0; ; attempt++ {
		name = CopyName(original.Name, attempt)
		count, err := s.fileCollection.CountDocuments(ctx, bson.M{
			"owner":     original.Owner,
			"parent_id": original.ParentID,
			"name":      name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to probe copy name: %w", err)
		}
		if count == 0 {
			break
		}
	}

	// The storage path is reused; content is not duplicated in the blob store.
	copyDoc := BuildCopy(*original, name, time.Now())
	if _, err := s.fileCollection.InsertOne(ctx, copyDoc); err != nil {
		return nil, fmt.Errorf("failed to create copy record: %w", err)
	}
	return &copyDoc, nil
}

func (s *FileService) Share(ctx context.Context, id string, recipients []string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ApplyShare(file, recipients, time.Now())
	return s.persist(ctx, file, bson.M{
		"shared_with": file.SharedWith,
		"updated_at":  file.UpdatedAt,
	})
}

func (s *FileService) ToggleStar(ctx context.Context, id string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Starred = !file.Starred
	file.UpdatedAt = time.Now()
	return s.persist(ctx, file, bson.M{"starred": file.Starred, "updated_at": file.UpdatedAt})
}

func (s *FileService) ToggleOffline(ctx context.Context, id string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file.AvailableOffline = !file.AvailableOffline
	file.UpdatedAt = time.Now()
	return s.persist(ctx, file, bson.M{
		"available_offline": file.AvailableOffline,
		"updated_at":        file.UpdatedAt,
	})
}

func (s *FileService) Trash(ctx context.Context, id string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ApplyTrash(file, time.Now())
	return s.persist(ctx, file, bson.M{
		"trashed":    file.Trashed,
		"location":   file.Location,
		"updated_at": file.UpdatedAt,
	})
}

func (s *FileService) Restore(ctx context.Context, id string) (*models.File, error) {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ApplyRestore(file, time.Now())
	return s.persist(ctx, file, bson.M{
		"trashed":    file.Trashed,
		"location":   file.Location,
		"updated_at": file.UpdatedAt,
	})
}

// Delete removes exactly one record. Children of a deleted folder are not
// cascaded. The blob is removed only once no other record references the
// same storage path (copies share content).
func (s *FileService) Delete(ctx context.Context, id string) error {
	file, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	if file.StoragePath != "" {
		refs, err := s.fileCollection.CountDocuments(ctx, bson.M{"storage_path": file.StoragePath})
		if err != nil {
			utils.LogWarning("failed to count blob references for %s: %v", file.StoragePath, err)
			return nil
		}
		if refs == 0 {
			if err := s.blobStore.Delete(ctx, file.StoragePath); err != nil {
				utils.LogWarning("failed to delete blob %s: %v", file.StoragePath, err)
			}
		}
	}
	return nil
}

func (s *FileService) CreateShortcut(ctx context.Context, principal, targetID string, parentID *string) (*models.File, error) {
	target, err := s.findByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	parent, err := s.resolveParentFolder(ctx, parentID)
	if err != nil {
		return nil, err
	}

	shortcut := BuildShortcut(*target, principal, parent, time.Now())
	if _, err := s.fileCollection.InsertOne(ctx, shortcut); err != nil {
		return nil, fmt.Errorf("failed to create shortcut record: %w", err)
	}
	return &shortcut, nil
}

// BatchResult reports the outcome of one id within a batch operation.
type BatchResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *FileService) TrashMany(ctx context.Context, ids []string) []BatchResult {
	return s.batch(ids, func(id string) error {
		_, err := s.Trash(ctx, id)
		return err
	})
}

func (s *FileService) RestoreMany(ctx context.Context, ids []string) []BatchResult {
	return s.batch(ids, func(id string) error {
		_, err := s.Restore(ctx, id)
		return err
	})
}

func (s *FileService) DeleteMany(ctx context.Context, ids []string) []BatchResult {
	return s.batch(ids, func(id string) error {
		return s.Delete(ctx, id)
	})
}

func (s *FileService) MoveMany(ctx context.Context, ids []string, parentID *string) []BatchResult {
	return s.batch(ids, func(id string) error {
		_, err := s.Move(ctx, id, parentID, "")
		return err
	})
}

// batch fans the single-item operation out per id with no ordering guarantee
// and no rollback across ids; each id succeeds or fails on its own.
func (s *FileService) batch(ids []string, op func(id string) error) []BatchResult {
	results := make([]BatchResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if err := op(id); err != nil {
				results[i] = BatchResult{ID: id, Error: err.Error()}
				return
			}
			results[i] = BatchResult{ID: id, Success: true}
		}(i, id)
	}
	wg.Wait()

	return results
}

func (s *FileService) findByID(ctx context.Context, id string) (*models.File, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("invalid file id %q: %w", id, ErrNotFound)
	}

	var file models.File
	err = s.fileCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &file, nil
}

// resolveParentFolder maps a parent id payload to a folder record. Nil,
// empty, or "root" resolve to the My Drive root. Anything else must be an
// existing, non-trashed folder at the moment of resolution.
func (s *FileService) resolveParentFolder(ctx context.Context, parentID *string) (*models.File, error) {
	if parentID == nil {
		return nil, nil
	}

	normalized := strings.TrimSpace(*parentID)
	if normalized == "" || normalized == "root" {
		return nil, nil
	}

	oid, err := primitive.ObjectIDFromHex(normalized)
	if err != nil {
		return nil, fmt.Errorf("parent id %q: %w", normalized, ErrInvalidParent)
	}

	var parent models.File
	err = s.fileCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&parent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("parent %s does not exist: %w", normalized, ErrInvalidParent)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !parent.IsFolder || parent.Trashed {
		return nil, fmt.Errorf("parent %s is not an active folder: %w", normalized, ErrInvalidParent)
	}
	return &parent, nil
}

func (s *FileService) persist(ctx context.Context, file *models.File, fields bson.M) (*models.File, error) {
	_, err := s.fileCollection.UpdateOne(ctx, bson.M{"_id": file.ID}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("failed to update file record: %w", err)
	}
	return file, nil
}
