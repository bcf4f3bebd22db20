package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipper/internal/model"
)

func TestDashboardBuildsAndCaches(t *testing.T) {
	db := newMemDB()
	c := newFakeCache()
	db.addUser(model.User{ID: "user-1", Credits: 42})
	db.addFile(model.UploadedFile{ID: "file-1", UserID: "user-1", Uploaded: true})
	db.addClip(model.Clip{ID: "clip-a", UserID: "user-1", S3Key: "clips/a.mp4", UploadedFileID: strPtr("file-1")})
	db.addClip(model.Clip{ID: "clip-b", UserID: "user-1", S3Key: "clips/b.mp4", UploadedFileID: strPtr("file-1")})
	svc := NewDashboardService(db, db, db, c, testLogger)

	d, err := svc.GetDashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.Credits != 42 || len(d.Clips) != 2 || len(d.UploadedFiles) != 1 || d.UploadedFiles[0].ClipCount != 2 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if cached, _ := c.Get(context.Background(), "user-1"); cached == nil {
		t.Fatal("dashboard was not cached")
	}

	// Served from cache until invalidated.
	db.addClip(model.Clip{ID: "clip-c", UserID: "user-1", S3Key: "clips/c.mp4"})
	d, _ = svc.GetDashboard(context.Background(), "user-1")
	if len(d.Clips) != 2 {
		t.Fatalf("expected cached view with 2 clips, got %d", len(d.Clips))
	}
	_ = c.Invalidate(context.Background(), "user-1")
	d, _ = svc.GetDashboard(context.Background(), "user-1")
	if len(d.Clips) != 3 {
		t.Fatalf("expected rebuilt view with 3 clips, got %d", len(d.Clips))
	}
}

func TestDashboardReflectsClipDeletion(t *testing.T) {
	db := newMemDB()
	c := newFakeCache()
	db.addUser(model.User{ID: "user-1"})
	db.addFile(model.UploadedFile{ID: "file-1", UserID: "user-1", Uploaded: true})
	db.addClip(model.Clip{ID: "clip-a", UserID: "user-1", S3Key: "clips/a.mp4", UploadedFileID: strPtr("file-1")})
	dash := NewDashboardService(db, db, db, c, testLogger)
	clips := NewClipService(db, db, &fakeObjectStore{}, c, time.Hour, testLogger)
	ctx := context.Background()

	if _, err := dash.GetDashboard(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := clips.DeleteClip(ctx, "clip-a", "user-1"); err != nil {
		t.Fatal(err)
	}
	d, err := dash.GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Clips) != 0 || len(d.UploadedFiles) != 0 {
		t.Fatalf("stale dashboard after delete: %+v", d)
	}
}

// clipsDeletedMidRead runs onList after the clips were read, the way a
// concurrent DeleteClip would land between the read and the cache write.
type clipsDeletedMidRead struct {
	*memDB
	onList func()
}

func (c *clipsDeletedMidRead) ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error) {
	clips, err := c.memDB.ListClipsByUser(ctx, userID)
	if c.onList != nil {
		c.onList()
		c.onList = nil
	}
	return clips, err
}

func TestDashboardNotCachedWhenInvalidatedDuringBuild(t *testing.T) {
	db := newMemDB()
	c := newFakeCache()
	db.addUser(model.User{ID: "user-1"})
	db.addFile(model.UploadedFile{ID: "file-1", UserID: "user-1", Uploaded: true})
	db.addClip(model.Clip{ID: "clip-a", UserID: "user-1", S3Key: "clips/a.mp4", UploadedFileID: strPtr("file-1")})
	ctx := context.Background()

	clips := NewClipService(db, db, &fakeObjectStore{}, c, time.Hour, testLogger)
	racing := &clipsDeletedMidRead{memDB: db, onList: func() {
		if _, err := clips.DeleteClip(ctx, "clip-a", "user-1"); err != nil {
			t.Errorf("DeleteClip: %v", err)
		}
	}}
	dash := NewDashboardService(db, db, racing, c, testLogger)

	d, err := dash.GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if len(d.Clips) != 1 {
		t.Fatalf("expected the snapshot read before the delete, got %+v", d)
	}
	if cached, _ := c.Get(ctx, "user-1"); cached != nil {
		t.Fatalf("stale snapshot was cached: %+v", cached)
	}

	d, err = dash.GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if len(d.Clips) != 0 {
		t.Fatalf("expected rebuilt view without the deleted clip, got %+v", d)
	}
	if cached, _ := c.Get(ctx, "user-1"); cached == nil {
		t.Fatal("fresh dashboard was not cached")
	}
}

func TestDashboardEmptyListsAndMissingUser(t *testing.T) {
	db := newMemDB()
	db.addUser(model.User{ID: "user-1"})
	svc := NewDashboardService(db, db, db, newFakeCache(), testLogger)

	d, err := svc.GetDashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if d.Clips == nil || d.UploadedFiles == nil {
		t.Fatal("lists should be empty, not nil")
	}
	if _, err := svc.GetDashboard(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
