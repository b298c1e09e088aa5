package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/storage"
	"github.com/mkovalev/filevault/internal/storage/memory"
	"github.com/mkovalev/filevault/internal/util"
)

func newFileServiceEnv(t *testing.T) *FileService {
	t.Helper()

	svc, err := NewFileService(
		memory.NewFileStore(),
		&util.UploadConfig{Dir: t.TempDir(), MaxSizeByte: 1 << 20},
		zap.NewNop().Sugar(),
	)
	if err != nil {
		t.Fatalf("new file service: %v", err)
	}
	return svc
}

func TestFileSaveThenGet(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, 1, "report.pdf", "application/pdf", strings.NewReader("v1 content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.SizeBytes != int64(len("v1 content")) {
		t.Errorf("size = %d, want %d", saved.SizeBytes, len("v1 content"))
	}

	got, err := svc.Get(ctx, 1, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OriginalName != "report.pdf" || got.MimeType != "application/pdf" {
		t.Errorf("unexpected metadata: %+v", got)
	}

	blob, err := os.ReadFile(svc.BlobPath(got))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(blob) != "v1 content" {
		t.Errorf("blob = %q, want %q", blob, "v1 content")
	}
}

func TestFileUpdateReplacesBlobAndMetadata(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, 1, "report.pdf", "application/pdf", strings.NewReader("v1 content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	oldPath := svc.BlobPath(saved)

	updated, err := svc.Update(ctx, 1, saved.ID, "report.txt", "text/plain", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ID != saved.ID {
		t.Errorf("id changed: %d -> %d", saved.ID, updated.ID)
	}
	if updated.OriginalName != "report.txt" || updated.MimeType != "text/plain" {
		t.Errorf("metadata not replaced: %+v", updated)
	}
	if updated.SizeBytes != 2 {
		t.Errorf("size = %d, want 2", updated.SizeBytes)
	}
	if updated.StoredName == saved.StoredName {
		t.Error("stored name was reused for the replacement blob")
	}

	blob, err := os.ReadFile(svc.BlobPath(updated))
	if err != nil {
		t.Fatalf("read new blob: %v", err)
	}
	if string(blob) != "v2" {
		t.Errorf("blob = %q, want %q", blob, "v2")
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old blob still on disk: %v", err)
	}
}

func TestFileUpdateUnknownOrForeignFile(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, 1, "report.pdf", "application/pdf", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := svc.Update(ctx, 1, saved.ID+99, "x.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, storage.ErrFileNotFound) {
		t.Errorf("unknown id: err = %v, want ErrFileNotFound", err)
	}
	if _, err := svc.Update(ctx, 2, saved.ID, "x.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, storage.ErrFileNotFound) {
		t.Errorf("foreign owner: err = %v, want ErrFileNotFound", err)
	}

	// The owner's blob must be untouched by the failed attempts.
	blob, err := os.ReadFile(svc.BlobPath(saved))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(blob) != "v1" {
		t.Errorf("blob = %q, want %q", blob, "v1")
	}
}

func TestFileListPagination(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("doc-%d.txt", i)
		if _, err := svc.Save(ctx, 1, name, "text/plain", strings.NewReader(name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	if _, err := svc.Save(ctx, 2, "other.txt", "text/plain", strings.NewReader("other")); err != nil {
		t.Fatalf("save foreign file: %v", err)
	}

	first, err := svc.List(ctx, 1, 1, 2)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first.Items) != 2 || first.Total != 5 || first.TotalPages != 3 {
		t.Fatalf("page 1 = %d items, total %d, pages %d; want 2/5/3",
			len(first.Items), first.Total, first.TotalPages)
	}
	if first.Items[0].OriginalName != "doc-4.txt" {
		t.Errorf("first item = %s, want newest doc-4.txt", first.Items[0].OriginalName)
	}

	last, err := svc.List(ctx, 1, 3, 2)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(last.Items) != 1 || last.Items[0].OriginalName != "doc-0.txt" {
		t.Errorf("page 3 = %+v, want the single oldest file", last.Items)
	}

	beyond, err := svc.List(ctx, 1, 9, 2)
	if err != nil {
		t.Fatalf("list page 9: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 5 {
		t.Errorf("out-of-range page = %d items, total %d; want 0/5", len(beyond.Items), beyond.Total)
	}
}

func TestFileListDefaults(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	page, err := svc.List(ctx, 1, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 || page.ListSize != 10 {
		t.Errorf("defaults = page %d size %d, want 1/10", page.Page, page.ListSize)
	}
	if page.Total != 0 || page.TotalPages != 1 {
		t.Errorf("empty listing = total %d pages %d, want 0/1", page.Total, page.TotalPages)
	}
}

func TestFileDeleteRemovesBlob(t *testing.T) {
	svc := newFileServiceEnv(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, 1, "report.pdf", "application/pdf", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.Delete(ctx, 1, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1, saved.ID); !errors.Is(err, storage.ErrFileNotFound) {
		t.Errorf("get after delete: err = %v, want ErrFileNotFound", err)
	}
	if _, err := os.Stat(svc.BlobPath(saved)); !os.IsNotExist(err) {
		t.Errorf("blob still on disk: %v", err)
	}
}
