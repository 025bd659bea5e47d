package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"coursehub/config"
	"coursehub/logger"

	"github.com/segmentio/kafka-go"
)

var (
	consumer        *kafka.Reader
	consumerMutex   sync.Mutex
	consumerRunning bool
	stopConsumer    chan bool
	// emailProcessor handles email.send events read from the emails topic
	emailProcessor func(map[string]interface{}) error
)

var kafkaDisabledErr = errors.New("kafka is disabled or not initialized")

// InitConsumer initializes a Kafka reader for the emails topic.
func InitConsumer() error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	if config.AppConfig.KafkaBrokers == "" {
		logger.Info("Kafka consumer is disabled (KAFKA_BROKERS is empty)")
		return nil
	}

	brokers := validBrokers()
	if len(brokers) == 0 {
		logger.Warn("No valid Kafka brokers configured for consumer")
		return nil
	}

	consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:          brokers,
		Topic:            "emails",
		GroupID:          "coursehub-consumer-group",
		StartOffset:      -1,
		CommitInterval:   time.Second,
		MaxBytes:         10e6,
		SessionTimeout:   20 * time.Second,
		ReadBackoffMin:   100 * time.Millisecond,
		ReadBackoffMax:   1 * time.Second,
		QueueCapacity:    100,
		RebalanceTimeout: 60 * time.Second,
	})

	stopConsumer = make(chan bool)
	logger.Info("Kafka consumer initialized. Brokers=%v, Topic=emails, ConsumerGroup=coursehub-consumer-group", brokers)
	return nil
}

// RegisterEmailProcessor registers the callback that handles email.send events
func RegisterEmailProcessor(fn func(map[string]interface{}) error) {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()
	emailProcessor = fn
}

// StartConsumer starts consuming messages in a separate goroutine.
// This runs continuously until StopConsumer() is called.
func StartConsumer() {
	consumerMutex.Lock()
	if consumer == nil {
		consumerMutex.Unlock()
		logger.Warn("Consumer not initialized, cannot start")
		return
	}
	if consumerRunning {
		consumerMutex.Unlock()
		logger.Warn("Consumer already running")
		return
	}
	consumerRunning = true
	consumerMutex.Unlock()

	go consumeMessages()
	logger.Info("Kafka consumer started")
}

func consumeMessages() {
	consumerMutex.Lock()
	stop := stopConsumer
	consumerMutex.Unlock()

	defer func() {
		consumerMutex.Lock()
		consumerRunning = false
		consumerMutex.Unlock()
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg, err := consumer.ReadMessage(ctx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Warn("Kafka consumer read error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		handleMessage(msg)
	}
}

// handleMessage dispatches one consumed message; failures are parked in
// the DLQ so delivery can be retried later.
func handleMessage(msg kafka.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		logger.Error("Error unmarshaling consumed message: %v", err)
		return
	}

	event, _ := payload["event"].(string)
	if event != "email.send" {
		logger.Debug("Ignoring event %q on emails topic", event)
		return
	}

	consumerMutex.Lock()
	processor := emailProcessor
	consumerMutex.Unlock()

	if processor == nil {
		logger.Warn("No email processor registered; dropping email.send event")
		return
	}

	if err := processor(payload); err != nil {
		logger.Error("Email processing failed: %v", err)
		if dlqStore != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if dlqErr := dlqStore.Store(ctx, msg.Topic, string(msg.Key), msg.Value, err.Error()); dlqErr != nil {
				logger.Error("Failed to park failed email in DLQ: %v", dlqErr)
			}
			cancel()
		}
	}
}

// StopConsumer stops the consumer loop and closes the reader
func StopConsumer() error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	if stopConsumer != nil {
		close(stopConsumer)
		stopConsumer = nil
	}
	if consumer != nil {
		err := consumer.Close()
		consumer = nil
		return err
	}
	return nil
}
