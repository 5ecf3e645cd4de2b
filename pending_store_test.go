package goSignup

import (
	"context"
	"errors"
	"testing"
	"time"
)

func samplePendingRecord(recordID string) *pendingRegistration {
	now := time.Now()
	return &pendingRegistration{
		RecordID:  recordID,
		Identity:  "alice@example.com",
		Name:      "Alice Example",
		PassHash:  "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		OTPHash:   "$argon2id$v=19$m=8192,t=1,p=1$b3Rwc2FsdG90cHNhbHQxNg$b3RwaGFzaG90cGhhc2gxNg",
		Birthday:  "1990-01-02",
		Phone:     "01712345678",
		Address:   "1 Example Road",
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestPendingRecordCodecRoundTrip(t *testing.T) {
	original := samplePendingRecord("r1")

	encoded, err := encodePendingRegistration(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := decodePendingRegistration(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *decoded != *original {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestPendingRecordDecodeRejectsGarbage(t *testing.T) {
	if _, err := decodePendingRegistration(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := decodePendingRegistration([]byte{0xFF, 0x01, 0x02}); err == nil {
		t.Fatal("expected error for unknown version")
	}

	encoded, err := encodePendingRegistration(samplePendingRecord("r1"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := decodePendingRegistration(encoded[:len(encoded)/2]); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestPendingStoreSaveFindRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")
	ctx := context.Background()
	record := samplePendingRecord("r1")

	if err := store.Save(ctx, record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if *got != *record {
		t.Fatalf("stored record mismatch:\n got %+v\nwant %+v", got, record)
	}

	ttl := mr.TTL("preg:alice@example.com")
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected key TTL %v", ttl)
	}
}

func TestPendingStoreFindMissing(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")

	_, err := store.Find(context.Background(), "nobody@example.com")
	if !errors.Is(err, errPendingNotFound) {
		t.Fatalf("expected errPendingNotFound, got %v", err)
	}
}

func TestPendingStoreLazyExpiryDeletesRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")
	ctx := context.Background()

	record := samplePendingRecord("r1")
	record.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := store.Save(ctx, record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := store.Find(ctx, "alice@example.com")
	if !errors.Is(err, errPendingNotFound) {
		t.Fatalf("expected errPendingNotFound, got %v", err)
	}
	if rdb.Exists(ctx, "preg:alice@example.com").Val() != 0 {
		t.Fatal("expired record must be purged on read")
	}

	exists, err := store.Exists(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Fatal("expired record must not report as existing")
	}
}

func TestPendingStoreDeleteByIDRequiresMatchingGeneration(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")
	ctx := context.Background()

	if err := store.Save(ctx, samplePendingRecord("r2"), time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Stale generation: the fresher record survives.
	if err := store.DeleteByID(ctx, "alice@example.com", "r1"); err != nil {
		t.Fatalf("DeleteByID with stale id failed: %v", err)
	}
	if rdb.Exists(ctx, "preg:alice@example.com").Val() != 1 {
		t.Fatal("mismatched generation must not delete the record")
	}

	if err := store.DeleteByID(ctx, "alice@example.com", "r2"); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if rdb.Exists(ctx, "preg:alice@example.com").Val() != 0 {
		t.Fatal("matching generation must delete the record")
	}

	// Deleting an absent key is a no-op.
	if err := store.DeleteByID(ctx, "alice@example.com", "r2"); err != nil {
		t.Fatalf("DeleteByID on missing key failed: %v", err)
	}
}

func TestPendingStoreReplaceRequiresLiveRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")
	ctx := context.Background()

	err := store.Replace(ctx, samplePendingRecord("r1"), time.Hour)
	if !errors.Is(err, errPendingNotFound) {
		t.Fatalf("expected errPendingNotFound for absent key, got %v", err)
	}

	if err := store.Save(ctx, samplePendingRecord("r1"), time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Replace(ctx, samplePendingRecord("r2"), time.Hour); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got.RecordID != "r2" {
		t.Fatalf("expected replacement generation r2, got %q", got.RecordID)
	}
}

func TestPendingStoreSaveOverwrites(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newPendingRegistrationStore(rdb, "preg")
	ctx := context.Background()

	if err := store.Save(ctx, samplePendingRecord("r1"), time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, samplePendingRecord("r2"), time.Hour); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got.RecordID != "r2" {
		t.Fatalf("expected latest generation r2, got %q", got.RecordID)
	}
}
