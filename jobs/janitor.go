package jobs

import (
	"context"
	"log"
	"time"

	"nimbusdrive/models"
	"nimbusdrive/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Janitor periodically purges expired sessions, stale reset tokens, and
// trashed items past their retention window.
type Janitor struct {
	fileCollection *mongo.Collection
	sessionColl    *mongo.Collection
	resetTokenColl *mongo.Collection
	blobStore      services.BlobStore
	interval       time.Duration
	trashRetention time.Duration
	logger         *log.Logger
}

func NewJanitor(db *mongo.Database, blobStore services.BlobStore, interval, trashRetention time.Duration) *Janitor {
	return &Janitor{
		fileCollection: db.Collection("files"),
		sessionColl:    db.Collection("sessions"),
		resetTokenColl: db.Collection("password_reset_tokens"),
		blobStore:      blobStore,
		interval:       interval,
		trashRetention: trashRetention,
		logger:         log.New(log.Writer(), "[JANITOR] ", log.LstdFlags),
	}
}

// Start blocks and runs a sweep on startup and then on every tick. Run it in
// its own goroutine; cancel the context to stop.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Printf("Starting janitor (interval %v, trash retention %v)", j.interval, j.trashRetention)

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Println("Janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	now := time.Now()

	if deleted, err := j.purgeExpired(sweepCtx, j.sessionColl, now); err != nil {
		j.logger.Printf("Error purging sessions: %v", err)
	} else if deleted > 0 {
		j.logger.Printf("Purged %d expired sessions", deleted)
	}

	if deleted, err := j.purgeExpired(sweepCtx, j.resetTokenColl, now); err != nil {
		j.logger.Printf("Error purging reset tokens: %v", err)
	} else if deleted > 0 {
		j.logger.Printf("Purged %d expired reset tokens", deleted)
	}

	if j.trashRetention <= 0 {
		return
	}

	deleted, err := j.purgeTrash(sweepCtx, now.Add(-j.trashRetention))
	if err != nil {
		j.logger.Printf("Error purging trash: %v", err)
		return
	}
	if deleted > 0 {
		j.logger.Printf("Purged %d trashed items", deleted)
	}
}

func (j *Janitor) purgeExpired(ctx context.Context, coll *mongo.Collection, now time.Time) (int64, error) {
	result, err := coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// purgeTrash removes trashed items whose last update predates the cutoff.
// Blobs are only removed from storage once no other record references the
// same storage path, so copies sharing content stay intact.
func (j *Janitor) purgeTrash(ctx context.Context, cutoff time.Time) (int64, error) {
	cursor, err := j.fileCollection.Find(ctx, bson.M{
		"trashed":    true,
		"updated_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var expired []models.File
	if err := cursor.All(ctx, &expired); err != nil {
		return 0, err
	}

	var purged int64
	for _, file := range expired {
		if _, err := j.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
			j.logger.Printf("Error deleting record %s: %v", file.ID.Hex(), err)
			continue
		}
		purged++

		if file.StoragePath == "" || j.blobStore == nil {
			continue
		}

		refs, err := j.fileCollection.CountDocuments(ctx, bson.M{"storage_path": file.StoragePath})
		if err != nil {
			j.logger.Printf("Error counting references for %s: %v", file.StoragePath, err)
			continue
		}
		if refs > 0 {
			continue
		}

		if err := j.blobStore.Delete(ctx, file.StoragePath); err != nil {
			j.logger.Printf("Error deleting blob %s: %v", file.StoragePath, err)
		}
	}

	return purged, nil
}
