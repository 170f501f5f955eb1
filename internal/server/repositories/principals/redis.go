package principals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisRepository.
const DefaultRedisPrefix = "videotube"

const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldFullName     = "full_name"
	fieldPasswordHash = "password_hash"
	fieldRefreshToken = "refresh_token"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

const (
	createStatusExists  int64 = 0
	createStatusCreated int64 = 1
)

// KEYS: principal hash, username index, email index.
// ARGV: id, username, email, full name, password hash, timestamp.
const createPrincipalScript = `
if redis.call("EXISTS", KEYS[1]) == 1
  or redis.call("EXISTS", KEYS[2]) == 1
  or redis.call("EXISTS", KEYS[3]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1],
  "id", ARGV[1],
  "username", ARGV[2],
  "email", ARGV[3],
  "full_name", ARGV[4],
  "password_hash", ARGV[5],
  "refresh_token", "",
  "created_at", ARGV[6],
  "updated_at", ARGV[6])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[1])
return 1
`

var createPrincipalLua = redis.NewScript(createPrincipalScript)

// KEYS: principal hash. ARGV: token, timestamp.
const bindRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "refresh_token", ARGV[1], "updated_at", ARGV[2])
return 1
`

var bindRefreshLua = redis.NewScript(bindRefreshScript)

// RedisRepository stores each principal as a hash with one index key per
// lookup key. Multi-key writes run as Lua scripts so they are atomic on the
// server.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{redis: rdb, prefix: prefix, now: time.Now}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + ":principal:" + id
}

func (r *RedisRepository) usernameKey(username string) string {
	return r.prefix + ":username:" + username
}

func (r *RedisRepository) emailKey(email string) string {
	return r.prefix + ":email:" + email
}

func (r *RedisRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	now := r.now().UTC()

	status, err := createPrincipalLua.Run(ctx, r.redis,
		[]string{r.key(p.ID), r.usernameKey(p.Username), r.emailKey(p.Email)},
		p.ID, p.Username, p.Email, p.FullName, p.PasswordHash, now.Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if status == createStatusExists {
		return nil, common.ErrAlreadyExists
	}

	p.CreatedAt, p.UpdatedAt = now, now
	p.RefreshToken = ""
	return p, nil
}

func (r *RedisRepository) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	id, err := r.redis.Get(ctx, r.usernameKey(login)).Result()
	if errors.Is(err, redis.Nil) {
		id, err = r.redis.Get(ctx, r.emailKey(login)).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	fields, err := r.redis.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	return decodePrincipal(fields)
}

func (r *RedisRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	vals, err := r.redis.HMGet(ctx, r.key(id),
		fieldID, fieldUsername, fieldEmail, fieldFullName, fieldCreatedAt, fieldUpdatedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if vals[0] == nil {
		return nil, common.ErrorNotFound
	}

	fields := map[string]string{}
	for i, name := range []string{fieldID, fieldUsername, fieldEmail, fieldFullName, fieldCreatedAt, fieldUpdatedAt} {
		if s, ok := vals[i].(string); ok {
			fields[name] = s
		}
	}

	p, err := decodePrincipal(fields)
	if err != nil {
		return nil, err
	}
	return p.Profile(), nil
}

func (r *RedisRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	status, err := bindRefreshLua.Run(ctx, r.redis,
		[]string{r.key(id)},
		token, r.now().UTC().Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if status == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func decodePrincipal(fields map[string]string) (*models.Principal, error) {
	p := &models.Principal{
		ID:           fields[fieldID],
		Username:     fields[fieldUsername],
		Email:        fields[fieldEmail],
		FullName:     fields[fieldFullName],
		PasswordHash: fields[fieldPasswordHash],
		RefreshToken: fields[fieldRefreshToken],
	}

	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("redis error: corrupt %s: %w", fieldCreatedAt, err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("redis error: corrupt %s: %w", fieldUpdatedAt, err)
	}

	return p, nil
}
