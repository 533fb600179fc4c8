package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeFeedValidation(t *testing.T) {
	_, err := NewChangeFeed(Config{Topic: "predicate-changes"})
	assert.Error(t, err, "brokers required")

	_, err = NewChangeFeed(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err, "topic required")

	feed, err := NewChangeFeed(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "predicate-changes",
	})
	require.NoError(t, err)
	defer feed.Close()

	assert.Equal(t, time.Second, feed.writer.BatchTimeout, "default batch timeout")
}
