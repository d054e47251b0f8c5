package policies

import (
	"context"

	"multinvest-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DestroyUserSessions removes every session of a user: each session:<sid> key
// and the user_sessions:<user_id> set itself.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) error {
	if rdb == nil || userID == "" {
		return nil
	}
	key := middleware.UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sid := range sessionIDs {
		keys = append(keys, middleware.SessionRedisPrefix+sid)
	}
	keys = append(keys, key)
	return rdb.Del(ctx, keys...).Err()
}
