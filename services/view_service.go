package services

import (
	"context"
	"fmt"
	"time"

	"nimbusdrive/models"
	"nimbusdrive/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ViewService composes the five perspectives (home, mydrive, shared,
// starred, trash) into deterministic, filtered, ordered result sets.
type ViewService struct {
	fileCollection *mongo.Collection
	quotaBytes     int64
}

// StorageUsage is the global quota signal reported with every listing. It is
// computed over all of the principal's non-trashed entities, independent of
// the current view's filters.
type StorageUsage struct {
	UsedMb     float64 `json:"usedMb"`
	UsedBytes  int64   `json:"usedBytes"`
	QuotaMb    int64   `json:"quotaMb"`
	QuotaBytes int64   `json:"quotaBytes"`
}

type ListResult struct {
	Files  []models.File
	Total  int64
	Limit  int64
	Skip   int64
	Facets Facets
	Usage  StorageUsage
}

func NewViewService(db *mongo.Database, quotaBytes int64) *ViewService {
	return &ViewService{
		fileCollection: db.Collection("files"),
		quotaBytes:     quotaBytes,
	}
}

// ListFiles runs the full listing contract: predicate composition, sort,
// pagination (or the Home recency window), page-scoped facets, and global
// storage usage. Facet and usage failures degrade to empty/zero instead of
// failing the call.
func (s *ViewService) ListFiles(ctx context.Context, principal string, q ListQuery) (*ListResult, error) {
	filter, err := BuildListFilter(principal, q, time.Now())
	if err != nil {
		return nil, err
	}

	limit, skip := ClampPagination(q.View, q.Limit, q.Skip)
	sortDoc := BuildListSort(q.View, q.Sort)

	findOptions := options.Find().
		SetSort(sortDoc).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.fileCollection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := []models.File{}
	if err = cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}

	total, err := s.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if q.View == ViewHome && total > HomeWindowSize {
		total = HomeWindowSize
	}

	usage, err := s.ComputeUsage(ctx, principal)
	if err != nil {
		utils.LogWarning("storage usage computation failed, reporting zero: %v", err)
		usage = StorageUsage{QuotaBytes: s.quotaBytes, QuotaMb: s.quotaBytes / (1024 * 1024)}
	}

	return &ListResult{
		Files:  files,
		Total:  total,
		Limit:  limit,
		Skip:   skip,
		Facets: ComputeFacets(files),
		Usage:  usage,
	}, nil
}

// ComputeUsage sums effective sizes (size_bytes when positive, otherwise
// size_mb converted) over the principal's own non-trashed entities. It is
// recomputed from scratch on every call; there is no cached counter to
// drift.
func (s *ViewService) ComputeUsage(ctx context.Context, principal string) (StorageUsage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": principal, "trashed": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"total_mb": bson.M{"$sum": "$size_mb"},
			"total_bytes": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$size_bytes", 0}},
				"$size_bytes",
				bson.M{"$multiply": bson.A{"$size_mb", 1024 * 1024}},
			}}},
		}}},
	}

	cursor, err := s.fileCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return StorageUsage{}, fmt.Errorf("failed to aggregate storage usage: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalMb    float64 `bson:"total_mb"`
		TotalBytes int64   `bson:"total_bytes"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return StorageUsage{}, fmt.Errorf("failed to decode storage usage: %w", err)
	}

	usage := StorageUsage{
		QuotaBytes: s.quotaBytes,
		QuotaMb:    s.quotaBytes / (1024 * 1024),
	}
	if len(rows) > 0 {
		usage.UsedMb = rows[0].TotalMb
		usage.UsedBytes = rows[0].TotalBytes
	}
	return usage, nil
}

// ListFolders returns the reduced {id, name, parentId} projection of the
// principal's non-trashed folders, used to populate move and shortcut
// destination pickers.
func (s *ViewService) ListFolders(ctx context.Context, principal string) ([]models.FolderRef, error) {
	filter := bson.M{
		"owner":     principal,
		"is_folder": true,
		"trashed":   false,
	}

	projection := bson.M{"_id": 1, "name": 1, "parent_id": 1}
	cursor, err := s.fileCollection.Find(ctx, filter,
		options.Find().SetProjection(projection).SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer cursor.Close(ctx)

	folders := []models.FolderRef{}
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	return folders, nil
}

// EnsureIndexes creates the indexes the listing paths lean on.
func (s *ViewService) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "trashed", Value: 1}},
			Options: options.Index().SetName("owner_trashed_index"),
		},
		{
			Keys:    bson.D{{Key: "shared_with", Value: 1}},
			Options: options.Index().SetName("shared_with_index"),
		},
		{
			Keys:    bson.D{{Key: "last_opened_at", Value: -1}},
			Options: options.Index().SetName("last_opened_desc_index"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("owner_parent_name_index"),
		},
	}

	for _, model := range indexes {
		if _, err := s.fileCollection.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create file index: %w", err)
		}
	}
	return nil
}
