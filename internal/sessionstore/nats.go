package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/glpi/internal/constants"
)

// bucket is the subset of a JetStream key-value bucket the store needs.
type bucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type jetStreamBucket struct {
	kv jetstream.KeyValue
}

func (b jetStreamBucket) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Value(), nil
}

func (b jetStreamBucket) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Put(ctx, key, value)

	return err
}

func (b jetStreamBucket) Delete(ctx context.Context, key string) error {
	return b.kv.Delete(ctx, key)
}

// NATSStore keeps sessions in a JetStream key-value bucket.
type NATSStore struct {
	conn   *nats.Conn
	bucket bucket
}

var _ Store = (*NATSStore)(nil)

// NewNATSStore connects to url and opens (or creates) the bucket.
func NewNATSStore(ctx context.Context, url, bucketName string, ttl time.Duration) (*NATSStore, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	if bucketName == "" {
		bucketName = constants.SessionBucket
	}

	conn, err := nats.Connect(url, nats.Name("glpi-cli"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucketName,
		Description: "GLPI CLI sessions",
		TTL:         ttl,
	})
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to open KV bucket '%s': %w", bucketName, err)
	}

	return &NATSStore{conn: conn, bucket: jetStreamBucket{kv: kv}}, nil
}

// NewNATSStoreFromKeyValue uses an already opened bucket. The caller owns the connection.
func NewNATSStoreFromKeyValue(kv jetstream.KeyValue) *NATSStore {
	return &NATSStore{bucket: jetStreamBucket{kv: kv}}
}

// natsKey maps a profile name onto a valid KV key: allowed characters only,
// not empty, no leading, trailing or doubled dots.
func natsKey(profile string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '=', r == '.', r == '/':
			return r
		default:
			return '_'
		}
	}, profile)

	for strings.Contains(key, "..") {
		key = strings.ReplaceAll(key, "..", "._")
	}

	if strings.HasPrefix(key, ".") {
		key = "_" + key[1:]
	}

	if strings.HasSuffix(key, ".") {
		key = key[:len(key)-1] + "_"
	}

	if key == "" {
		key = "_"
	}

	return key
}

// Load implements Store.
func (s *NATSStore) Load(ctx context.Context, profile string) (*Session, error) {
	value, err := s.bucket.Get(ctx, natsKey(profile))
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return nil, fmt.Errorf("profile '%s': %w", profile, constants.ErrSessionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session from NATS: %w", err)
	}

	var session Session

	err = json.Unmarshal(value, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Save implements Store.
func (s *NATSStore) Save(ctx context.Context, profile string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.bucket.Put(ctx, natsKey(profile), data)
	if err != nil {
		return fmt.Errorf("failed to save session to NATS: %w", err)
	}

	return nil
}

// Delete implements Store.
func (s *NATSStore) Delete(ctx context.Context, profile string) error {
	err := s.bucket.Delete(ctx, natsKey(profile))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete session from NATS: %w", err)
	}

	return nil
}

// Close drains the connection when the store owns it.
func (s *NATSStore) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Drain()
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	return nil
}
