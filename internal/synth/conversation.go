package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// historyTurns is how many earlier exchanges a follow-up sees.
	historyTurns = 2
	// maxStoredTurns caps each session; older turns are trimmed on append.
	maxStoredTurns  = 20
	sessionTTL      = 24 * time.Hour
	maxTurnAnswer   = 1500
	conversationKey = "correlate:conv"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Turn is one question and the raw answer given to it.
type Turn struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Conversations keeps per-session history, scoped by organization.
type Conversations interface {
	// History returns up to n most recent turns, oldest first.
	History(ctx context.Context, orgID int64, sessionID string, n int) ([]Turn, error)
	Append(ctx context.Context, orgID int64, sessionID string, turn Turn) error
}

func newSessionID() string {
	return uuid.NewString()
}

// RedisConversations stores each session as a capped list that expires a day
// after its last turn.
type RedisConversations struct {
	client *redis.Client
}

func NewRedisConversations(client *redis.Client) *RedisConversations {
	return &RedisConversations{client: client}
}

func sessionKey(orgID int64, sessionID string) string {
	return fmt.Sprintf("%s:%d:%s", conversationKey, orgID, sessionID)
}

func (c *RedisConversations) History(ctx context.Context, orgID int64, sessionID string, n int) ([]Turn, error) {
	raw, err := c.client.LRange(ctx, sessionKey(orgID, sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	turns := make([]Turn, 0, len(raw))
	for _, r := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (c *RedisConversations) Append(ctx context.Context, orgID int64, sessionID string, turn Turn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	key := sessionKey(orgID, sessionID)
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, b)
		p.LTrim(ctx, key, -maxStoredTurns, -1)
		p.Expire(ctx, key, sessionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

// MemoryConversations keeps sessions in process. Used when Redis is not
// configured and in tests; sessions do not expire.
type MemoryConversations struct {
	mu       sync.Mutex
	sessions map[string][]Turn
}

func NewMemoryConversations() *MemoryConversations {
	return &MemoryConversations{sessions: make(map[string][]Turn)}
}

func (c *MemoryConversations) History(_ context.Context, orgID int64, sessionID string, n int) ([]Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	turns := c.sessions[sessionKey(orgID, sessionID)]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]Turn(nil), turns...), nil
}

func (c *MemoryConversations) Append(_ context.Context, orgID int64, sessionID string, turn Turn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := sessionKey(orgID, sessionID)
	turns := append(c.sessions[key], turn)
	if len(turns) > maxStoredTurns {
		turns = turns[len(turns)-maxStoredTurns:]
	}
	c.sessions[key] = turns
	return nil
}
