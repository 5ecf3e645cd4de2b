package goSignup

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingRecordVersionV1 = 1
	pendingStoreMaxRetries = 4
)

var (
	errPendingNotFound         = errors.New("pending registration record not found")
	errPendingRedisUnavailable = errors.New("pending registration redis unavailable")
)

// pendingRegistration is the durable shape of an unverified signup.
// OTPHash is a PHC-encoded argon2id string; the plaintext code is never
// stored. RecordID distinguishes record generations so a verify that
// raced a resend cannot delete the fresher record.
type pendingRegistration struct {
	RecordID  string
	Identity  string
	Name      string
	PassHash  string
	OTPHash   string
	Birthday  string
	Phone     string
	Address   string
	CreatedAt int64
	ExpiresAt int64
}

type pendingRegistrationStore struct {
	redis  *redis.Client
	prefix string
}

func newPendingRegistrationStore(redisClient *redis.Client, prefix string) *pendingRegistrationStore {
	return &pendingRegistrationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *pendingRegistrationStore) key(identity string) string {
	return s.prefix + ":" + identity
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *pendingRegistrationStore) Save(
	ctx context.Context,
	record *pendingRegistration,
	ttl time.Duration,
) error {
	encoded, err := encodePendingRegistration(record)
	if err != nil {
		return err
	}

	// SET overwrites atomically, keeping at most one live record per
	// identity even when signups for the same key interleave.
	if err := s.redis.Set(ctx, s.key(record.Identity), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errPendingRedisUnavailable, err)
	}

	return nil
}

// Find describes the find operation and its observable behavior.
//
// Find may return an error when input validation, dependency calls, or security checks fail.
// Find does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *pendingRegistrationStore) Find(ctx context.Context, identity string) (*pendingRegistration, error) {
	key := s.key(identity)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", errPendingRedisUnavailable, err)
	}

	record, err := decodePendingRegistration(data)
	if err != nil {
		return nil, err
	}

	// Redis key TTL is the backstop; the explicit check makes a record
	// whose window has passed unobservable even before the purge lands.
	if time.Now().Unix() > record.ExpiresAt {
		if err := s.deleteExpired(ctx, key, record.RecordID); err != nil {
			return nil, err
		}
		return nil, errPendingNotFound
	}

	return record, nil
}

// Exists describes the exists operation and its observable behavior.
//
// Exists may return an error when input validation, dependency calls, or security checks fail.
// Exists does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *pendingRegistrationStore) Exists(ctx context.Context, identity string) (bool, error) {
	_, err := s.Find(ctx, identity)
	if err != nil {
		if errors.Is(err, errPendingNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Replace describes the replace operation and its observable behavior.
//
// Replace may return an error when input validation, dependency calls, or security checks fail.
// Replace does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *pendingRegistrationStore) Replace(
	ctx context.Context,
	record *pendingRegistration,
	ttl time.Duration,
) error {
	encoded, err := encodePendingRegistration(record)
	if err != nil {
		return err
	}

	key := s.key(record.Identity)

	for i := 0; i < pendingStoreMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			// Replace only while a record still exists: a concurrent
			// verify that consumed the registration must win.
			if _, err := tx.Get(ctx, key).Bytes(); err != nil {
				return err
			}

			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return errPendingNotFound
			}
			return fmt.Errorf("%w: %v", errPendingRedisUnavailable, err)
		}

		return nil
	}

	return errPendingNotFound
}

// DeleteByID removes the record for identity only while its RecordID
// still matches. A record that was concurrently replaced or already
// consumed is left alone and the call reports success.
func (s *pendingRegistrationStore) DeleteByID(ctx context.Context, identity, recordID string) error {
	key := s.key(identity)

	for i := 0; i < pendingStoreMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodePendingRegistration(data)
			if err != nil {
				return err
			}
			if record.RecordID != recordID {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("%w: %v", errPendingRedisUnavailable, err)
		}

		return nil
	}

	return fmt.Errorf("%w: delete contention", errPendingRedisUnavailable)
}

func (s *pendingRegistrationStore) deleteExpired(ctx context.Context, key, recordID string) error {
	for i := 0; i < pendingStoreMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodePendingRegistration(data)
			if err != nil {
				return err
			}
			if record.RecordID != recordID {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %v", errPendingRedisUnavailable, err)
		}

		return nil
	}

	return nil
}

func encodePendingRegistration(record *pendingRegistration) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(pendingRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	fields := []string{
		record.RecordID,
		record.Identity,
		record.Name,
		record.PassHash,
		record.OTPHash,
		record.Birthday,
		record.Phone,
		record.Address,
	}
	for _, field := range fields {
		if len(field) > 65535 {
			return nil, errors.New("pending registration field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodePendingRegistration(data []byte) (*pendingRegistration, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != pendingRecordVersionV1 {
		return nil, errors.New("invalid pending registration record version")
	}

	record := &pendingRegistration{}

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	fields := []*string{
		&record.RecordID,
		&record.Identity,
		&record.Name,
		&record.PassHash,
		&record.OTPHash,
		&record.Birthday,
		&record.Phone,
		&record.Address,
	}
	for _, field := range fields {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}

		raw := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
