package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rhel-assessment-service/internal/app"
	"rhel-assessment-service/internal/domain"
)

func TestSlotStoreReadWriteDelete(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSlotStore(newClient(mr))

	if _, ok, err := store.Read(ctx, "records"); err != nil || ok {
		t.Fatalf("expected missing slot, ok=%v err=%v", ok, err)
	}
	if err := store.Write(ctx, "records", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := mr.Get("archive:records"); got != "[]" {
		t.Fatalf("expected slot key written, got %q", got)
	}
	if err := store.Delete(ctx, "records"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("archive:records") {
		t.Fatalf("expected slot removed")
	}
}

func TestArchiveOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	archive := app.NewSlotArchive(NewSlotStore(newClient(mr)), app.DefaultArchiveSlot, nil)

	record := domain.ResultRecord{ID: "r1", Name: "Ada", Email: "ada@example.com", Score: 90, Date: time.Now().UTC()}
	if err := archive.Append(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}
	records, err := archive.List(ctx)
	if err != nil || len(records) != 1 || records[0].ID != "r1" {
		t.Fatalf("expected appended record, got %v err=%v", records, err)
	}

	// Corrupt the slot behind the archive's back.
	if err := mr.Set("archive:"+app.DefaultArchiveSlot, "<<garbage>>"); err != nil {
		t.Fatalf("corrupt slot: %v", err)
	}
	records, err = archive.List(ctx)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected corrupt slot to read as empty, got %v err=%v", records, err)
	}

	if err := archive.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("archive:" + app.DefaultArchiveSlot) {
		t.Fatalf("expected slot removed after clear")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
