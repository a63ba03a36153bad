package redis_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haltestellenmonitor/internal/domain"
	redisRepo "github.com/haltestellenmonitor/internal/repository/redis"
)

func TestActivityPlatform_Disabled(t *testing.T) {
	p := redisRepo.NewActivityPlatform(nil, nil, false, "", zap.NewNop())

	assert.False(t, p.ActivitiesEnabled())
	_, err := p.Request(context.Background(), domain.ActivityAttributes{}, domain.ActivityContent{})
	assert.ErrorIs(t, err, domain.ErrActivitiesDisabled)
}

func TestActivityPlatform_PushTokenUpdates(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	logger := zap.NewNop()
	streams := redisRepo.NewStreamRepository(client, logger)
	p := redisRepo.NewActivityPlatform(client, streams, true, "test:stream:activity:tokens:", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	act, err := p.Request(ctx, domain.ActivityAttributes{Name: "Hauptbahnhof", StopID: "33000028"},
		domain.ActivityContent{StaleDate: time.Now().Add(30 * time.Minute)})
	require.NoError(t, err)
	require.NotEmpty(t, act.ID())

	stream := "test:stream:activity:tokens:" + act.ID()
	defer client.Del(context.Background(), stream)

	// токен, опубликованный до подписки, тоже доходит
	require.NoError(t, streams.PublishToStream(ctx, stream, []byte{0xde, 0xad}))

	tokens, err := act.PushTokenUpdates(ctx)
	require.NoError(t, err)

	select {
	case tok := <-tokens:
		assert.Equal(t, []byte{0xde, 0xad}, tok)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for token")
	}

	exists, err := client.Exists(ctx, "activity:"+act.ID()).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	ttl, err := client.TTL(ctx, "activity:"+act.ID()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, act.End(ctx))
	require.NoError(t, act.End(ctx))

	select {
	case _, ok := <-tokens:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("Token channel not closed after End")
	}

	exists, err = client.Exists(ctx, "activity:"+act.ID()).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

// failCommand роняет указанную команду, остальные проходят
type failCommand struct {
	name string
}

func (h failCommand) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h failCommand) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if strings.EqualFold(cmd.Name(), h.name) {
			err := errors.New("READONLY You can't write against a read only replica")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h failCommand) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestActivityPlatform_ExpiryFailureLogged(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	client.AddHook(failCommand{name: "expireat"})

	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	streams := redisRepo.NewStreamRepository(client, logger)
	p := redisRepo.NewActivityPlatform(client, streams, true, "test:stream:activity:tokens:", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	act, err := p.Request(ctx, domain.ActivityAttributes{Name: "Albertplatz", StopID: "33000007"},
		domain.ActivityContent{StaleDate: time.Now().Add(30 * time.Minute)})
	require.NoError(t, err)
	defer client.Del(context.Background(), "activity:"+act.ID())

	entries := logs.FilterMessage("Failed to set activity expiry").All()
	require.Len(t, entries, 1)
	assert.Equal(t, act.ID(), entries[0].ContextMap()["activity_id"])
}
