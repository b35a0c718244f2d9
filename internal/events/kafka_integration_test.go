//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"example.com/activitydirectory/internal/domain"
	"example.com/activitydirectory/internal/registry"
)

func TestSignupEventReachesKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.RunContainer(ctx, testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "roster_events"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	writer := NewKafkaWriter(brokers, topic)
	t.Cleanup(func() { _ = writer.Close() })

	service := domain.NewService(
		registry.NewInMemoryRegistry(domain.SeedActivities()),
		domain.WithPublisher(NewKafkaPublisher(writer, topic, 30*time.Second)),
	)
	_, err = service.SignUp(ctx, "Chess Club", "student@mergington.edu")
	require.NoError(t, err)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "Chess Club", string(msg.Key))

	var event RosterChanged
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	require.Equal(t, string(domain.RosterChangeSignedUp), event.EventType)
	require.Equal(t, "student@mergington.edu", event.Email)
	require.Equal(t, 1, event.RosterSize)
}
