package kafka_test

import (
	"testing"

	"driveease/infras/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ToKafkaMessage(t *testing.T) {
	message := kafka.Message{
		Key:     "booking-1",
		Value:   map[string]any{"event": "booking.confirmed", "amount": 2000},
		Headers: map[string]string{"event": "booking.confirmed"},
	}

	msg, err := message.ToKafkaMessage("booking.notifications")

	require.NoError(t, err)
	assert.Equal(t, "booking.notifications", msg.Topic)
	assert.Equal(t, []byte("booking-1"), msg.Key)
	assert.JSONEq(t, `{"event":"booking.confirmed","amount":2000}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event", msg.Headers[0].Key)
	assert.Equal(t, []byte("booking.confirmed"), msg.Headers[0].Value)
}

func TestMessage_ToKafkaMessage_Unmarshalable(t *testing.T) {
	message := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := message.ToKafkaMessage("booking.notifications")

	assert.Error(t, err)
}
