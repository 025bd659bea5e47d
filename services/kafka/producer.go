package kafka

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/repository"

	"github.com/segmentio/kafka-go"
)

var (
	producer      *kafka.Writer
	producerMutex sync.Mutex
	isConnected   bool
	dlqStore      repository.DLQStore
)

// RegisterDLQStore wires the store that parks messages whose publish
// retries were exhausted.
func RegisterDLQStore(store repository.DLQStore) {
	producerMutex.Lock()
	defer producerMutex.Unlock()
	dlqStore = store
}

// InitProducer initializes a Kafka writer using brokers from the config
func InitProducer() {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if config.AppConfig.KafkaBrokers == "" {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return
	}

	brokers := validBrokers()
	if len(brokers) == 0 {
		logger.Warn("No valid Kafka brokers configured")
		return
	}

	ensureTopicsExist(brokers)

	producer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka producer initialized. Brokers=%v, Topic=%s", brokers, config.AppConfig.KafkaTopic)
	isConnected = true
}

func validBrokers() []string {
	brokers := strings.Split(config.AppConfig.KafkaBrokers, ",")
	var valid []string
	for _, b := range brokers {
		if b := strings.TrimSpace(b); b != "" {
			valid = append(valid, b)
		}
	}
	return valid
}

// ensureTopicsExist creates the required topics if they don't already
// exist. Runs in a background goroutine to avoid blocking initialization.
func ensureTopicsExist(brokers []string) {
	go func() {
		maxRetries := 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)
			} else {
				time.Sleep(1 * time.Second)
			}

			conn, err := kafka.Dial("tcp", brokers[0])
			if err != nil {
				if attempt == maxRetries-1 {
					logger.Warn("Could not connect to Kafka broker for topic creation after %d attempts: %v (topics may need manual creation)", maxRetries, err)
				}
				continue
			}

			requiredTopics := []string{config.AppConfig.KafkaTopic, "emails"}
			if t := strings.TrimSpace(config.AppConfig.KafkaDLQTopic); t != "" {
				requiredTopics = append(requiredTopics, t)
			}

			successCount := 0
			for _, topic := range requiredTopics {
				err := conn.CreateTopics(kafka.TopicConfig{
					Topic:             topic,
					NumPartitions:     1,
					ReplicationFactor: 1,
				})
				if err == nil || strings.Contains(err.Error(), "already exists") {
					successCount++
				}
			}

			conn.Close()

			if successCount >= len(requiredTopics) {
				return
			}
		}
	}()
}

// Publish marshals value to JSON and publishes to the given topic with key.
// Uses exponential backoff retry logic (3 attempts). If Kafka is disabled
// or not initialized, returns nil (best-effort). Messages that exhaust
// their retries are parked in the DLQ store.
func Publish(topic, key string, value interface{}) error {
	producerMutex.Lock()
	if producer == nil && config.AppConfig.KafkaBrokers != "" {
		producerMutex.Unlock()
		InitProducer()
		producerMutex.Lock()
	}
	defer producerMutex.Unlock()

	if producer == nil || config.AppConfig.KafkaBrokers == "" {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Error marshaling Kafka message: %v", err)
		return err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := producer.WriteMessages(ctx, msg)
		cancel()

		if err == nil {
			isConnected = true
			return nil
		}

		lastErr = err
		logger.Warn("Kafka publish attempt %d failed: %v", attempt+1, err)
		isConnected = false

		if attempt < 2 {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)
		}
	}

	// Park the message for later redelivery (database only, no recursion)
	if dlqStore != nil {
		logger.Info("Sending failed message to DLQ. Topic: %s, Key: %s", topic, key)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if dlqErr := dlqStore.Store(ctx, topic, key, payload, lastErr.Error()); dlqErr != nil {
			logger.Error("Failed to park message in DLQ: %v", dlqErr)
		}
		cancel()
	}

	return lastErr
}

// publishRaw republishes an already-marshaled message, used by the DLQ
// retry path. No DLQ fallback here to avoid loops.
func publishRaw(topic, key string, payload []byte) error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer == nil {
		return kafkaDisabledErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return producer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

// IsConnected returns true if Kafka producer is connected and ready
func IsConnected() bool {
	producerMutex.Lock()
	defer producerMutex.Unlock()
	return isConnected && producer != nil
}

// Close gracefully closes the Kafka producer
func Close() error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer != nil {
		return producer.Close()
	}
	return nil
}
