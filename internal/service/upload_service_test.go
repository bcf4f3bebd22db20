package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestInitiateUpload(t *testing.T) {
	db := newMemDB()
	store := &fakeObjectStore{}
	c := newFakeCache()
	svc := NewUploadService(db, store, c, 15*time.Minute, testLogger)

	file, url, err := svc.InitiateUpload(context.Background(), "user-1", "Holiday.MOV", "video/quicktime")
	if err != nil {
		t.Fatalf("InitiateUpload: %v", err)
	}
	if file.Uploaded {
		t.Fatal("new uploads must not be marked uploaded")
	}
	if want := "uploads/" + file.ID + "/original.mov"; file.S3Key != want {
		t.Fatalf("S3Key = %q, want %q", file.S3Key, want)
	}
	if !strings.Contains(url, file.S3Key) {
		t.Fatalf("URL %q does not reference key", url)
	}
	if store.lastTTL != 15*time.Minute {
		t.Fatalf("unexpected TTL %v", store.lastTTL)
	}
	if !db.hasFile(file.ID) {
		t.Fatal("uploaded file record not stored")
	}
	if c.invalidated("user-1") != 1 {
		t.Fatal("expected dashboard cache invalidation")
	}
}

func TestUploadKeyDefaultsToMP4(t *testing.T) {
	if got := uploadKey("abc", "noext"); got != "uploads/abc/original.mp4" {
		t.Fatalf("uploadKey = %q", got)
	}
}

func TestInitiateUploadPresignFailureCleansUp(t *testing.T) {
	db := newMemDB()
	store := &fakeObjectStore{presignErr: errors.New("no credentials")}
	svc := NewUploadService(db, store, newFakeCache(), time.Minute, testLogger)

	_, _, err := svc.InitiateUpload(context.Background(), "user-1", "a.mp4", "video/mp4")
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	files, _ := db.ListUploadedFilesByUser(context.Background(), "user-1")
	if len(files) != 0 {
		t.Fatalf("expected record cleanup, found %d files", len(files))
	}
}

func TestInitiateUploadWithoutCaller(t *testing.T) {
	svc := NewUploadService(newMemDB(), &fakeObjectStore{}, newFakeCache(), time.Minute, testLogger)
	if _, _, err := svc.InitiateUpload(context.Background(), "", "a.mp4", "video/mp4"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
