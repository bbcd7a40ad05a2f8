package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptchaService_GenerateAndConsume(t *testing.T) {
	svc, err := NewCaptchaServiceRotate(time.Minute, 5, 160)
	require.NoError(t, err)
	defer svc.Stop()

	ch, err := svc.GenerateRotate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ch.ID)
	assert.NotEmpty(t, ch.MasterImageBase64)
	assert.NotEmpty(t, ch.ThumbImageBase64)

	impl := svc.(*captchaServiceImpl)
	assert.Equal(t, 1, impl.store.Len())

	// the first attempt consumes the challenge whatever the answer
	svc.VerifyRotate(context.Background(), ch.ID, -1000)
	assert.Equal(t, 0, impl.store.Len())
	assert.False(t, svc.VerifyRotate(context.Background(), ch.ID, 0))
}

func TestChallengeStore(t *testing.T) {
	store := newChallengeStore(time.Minute, time.Hour)
	defer store.Close()

	store.Set("a", 90)
	angle, ok := store.Take("a")
	assert.True(t, ok)
	assert.Equal(t, 90, angle)

	_, ok = store.Take("a")
	assert.False(t, ok)

	store.Set("b", 45)
	store.sweep(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, store.Len())

	// closing twice is safe
	store.Close()
}
