package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goSignup "github.com/MrEthical07/goSignup"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "acct"
	storeMaxRetries  = 4
)

var errRedisUnavailable = errors.New("account redis unavailable")

type accountRecord struct {
	AccountID      string `json:"account_id"`
	Identity       string `json:"identity"`
	Name           string `json:"name"`
	CredentialHash string `json:"credential_hash"`
	Birthday       string `json:"birthday,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Verified       bool   `json:"verified"`
	Admin          bool   `json:"admin"`
	CreatedAt      int64  `json:"created_at"`
}

// RedisStore is a Redis-backed [goSignup.AccountStore]. It keeps one
// record key per account ID plus an identity index key, and enforces
// identity uniqueness inside a WATCH transaction on the index.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(redisClient *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) recordKey(accountID string) string {
	return s.prefix + ":id:" + accountID
}

func (s *RedisStore) identityKey(identity string) string {
	return s.prefix + ":ident:" + identity
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Create(ctx context.Context, input goSignup.CreateAccountInput) (goSignup.Account, error) {
	if input.Identity == "" {
		return goSignup.Account{}, errors.New("empty identity")
	}

	record := accountRecord{
		AccountID:      uuid.NewString(),
		Identity:       input.Identity,
		Name:           input.Name,
		CredentialHash: input.CredentialHash,
		Birthday:       input.Birthday,
		Phone:          input.Phone,
		Address:        input.Address,
		Verified:       input.Verified,
		Admin:          false,
		CreatedAt:      time.Now().Unix(),
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return goSignup.Account{}, err
	}

	identKey := s.identityKey(input.Identity)

	for i := 0; i < storeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, identKey).Result()
			if err != nil {
				return err
			}
			if exists > 0 {
				return goSignup.ErrStoreDuplicateIdentity
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, identKey, record.AccountID, 0)
				pipe.Set(ctx, s.recordKey(record.AccountID), encoded, 0)
				return nil
			})
			return err
		}, identKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, goSignup.ErrStoreDuplicateIdentity) {
				return goSignup.Account{}, err
			}
			return goSignup.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
		}

		return toAccount(record), nil
	}

	// Contention on the identity key means another create for the same
	// identity just won.
	return goSignup.Account{}, goSignup.ErrStoreDuplicateIdentity
}

// FindByIdentity describes the findbyidentity operation and its observable behavior.
//
// FindByIdentity may return an error when input validation, dependency calls, or security checks fail.
// FindByIdentity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) FindByIdentity(ctx context.Context, identity string) (goSignup.Account, error) {
	accountID, err := s.redis.Get(ctx, s.identityKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return goSignup.Account{}, goSignup.ErrAccountNotFound
		}
		return goSignup.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return s.findByID(ctx, accountID)
}

func (s *RedisStore) findByID(ctx context.Context, accountID string) (goSignup.Account, error) {
	data, err := s.redis.Get(ctx, s.recordKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return goSignup.Account{}, goSignup.ErrAccountNotFound
		}
		return goSignup.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	var record accountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return goSignup.Account{}, err
	}

	return toAccount(record), nil
}

// UpdateCredentialHash describes the updatecredentialhash operation and its observable behavior.
//
// UpdateCredentialHash may return an error when input validation, dependency calls, or security checks fail.
// UpdateCredentialHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) UpdateCredentialHash(ctx context.Context, accountID string, newHash string) error {
	key := s.recordKey(accountID)

	for i := 0; i < storeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			var record accountRecord
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			record.CredentialHash = newHash

			encoded, err := json.Marshal(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return goSignup.ErrAccountNotFound
			}
			return fmt.Errorf("%w: %v", errRedisUnavailable, err)
		}

		return nil
	}

	return fmt.Errorf("%w: update contention", errRedisUnavailable)
}

func toAccount(record accountRecord) goSignup.Account {
	return goSignup.Account{
		AccountID:      record.AccountID,
		Identity:       record.Identity,
		Name:           record.Name,
		CredentialHash: record.CredentialHash,
		Birthday:       record.Birthday,
		Phone:          record.Phone,
		Address:        record.Address,
		Verified:       record.Verified,
		Admin:          record.Admin,
		CreatedAt:      record.CreatedAt,
	}
}
