package kafka

import (
	"context"
	"time"

	"coursehub/logger"
	"coursehub/repository"

	"github.com/google/uuid"
)

var (
	dlqRetryTicker *time.Ticker
	stopDLQRetry   chan bool
)

// StartDLQAutoRetry periodically republishes unresolved DLQ messages
// whose retry budget is not yet exhausted.
func StartDLQAutoRetry(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	dlqRetryTicker = time.NewTicker(interval)
	stopDLQRetry = make(chan bool)

	go func() {
		for {
			select {
			case <-dlqRetryTicker.C:
				retryUnresolvedDLQMessages()
			case <-stopDLQRetry:
				logger.Info("DLQ auto-retry stopped")
				return
			}
		}
	}()

	logger.Info("DLQ auto-retry scheduler initialized (interval %s)", interval)
}

func retryUnresolvedDLQMessages() {
	producerMutex.Lock()
	store := dlqStore
	producerMutex.Unlock()
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	messages, err := store.NextRetryable(ctx, 10)
	if err != nil {
		logger.Error("Error querying DLQ messages for retry: %v", err)
		return
	}

	resolved := 0
	for _, m := range messages {
		succeeded := retryOne(ctx, store, m.MessageID, m.Topic, m.Key, m.Value)
		if succeeded {
			resolved++
		}
	}

	if len(messages) > 0 {
		logger.Info("DLQ auto-retry completed: processed %d messages, %d resolved", len(messages), resolved)
	}
}

func retryOne(ctx context.Context, store repository.DLQStore, id uuid.UUID, topic, key string, value []byte) bool {
	err := publishRaw(topic, key, value)
	if markErr := store.MarkRetried(ctx, id, err == nil); markErr != nil {
		logger.Error("Error updating DLQ message %s after retry: %v", id, markErr)
	}
	if err != nil {
		logger.Warn("DLQ retry for message %s failed: %v", id, err)
		return false
	}
	return true
}

// RetryMessage republishes one parked message on demand (admin action).
func RetryMessage(ctx context.Context, store repository.DLQStore, m repository.DLQMessage) bool {
	return retryOne(ctx, store, m.MessageID, m.Topic, m.Key, m.Value)
}

// StopDLQAutoRetry stops the automatic DLQ retry mechanism
func StopDLQAutoRetry() {
	if dlqRetryTicker != nil {
		dlqRetryTicker.Stop()
	}
	if stopDLQRetry != nil {
		close(stopDLQRetry)
		stopDLQRetry = nil
	}
}
