package rabbitmq_test

import (
	"context"
	"errors"
	"testing"

	"wardrobe/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type fakeAcknowledger struct {
	acked  []uint64
	nacked []uint64
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	return nil
}

func TestDispatch_AcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, RoutingKey: "order.placed", Body: []byte(`{}`)}

	var seen string
	rabbitmq.Dispatch(context.Background(), func(_ context.Context, d amqp.Delivery) error {
		seen = d.RoutingKey
		return nil
	}, msg)

	assert.Equal(t, "order.placed", seen)
	assert.Equal(t, []uint64{7}, ack.acked)
	assert.Empty(t, ack.nacked)
}

func TestDispatch_NacksOnFailure(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 9}

	rabbitmq.Dispatch(context.Background(), func(context.Context, amqp.Delivery) error {
		return errors.New("bad payload")
	}, msg)

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{9}, ack.nacked)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := rabbitmq.NewClient(rabbitmq.Config{URL: "not-a-url", Exchange: "x", Queue: "q"})
	assert.ErrorContains(t, err, "failed to connect to RabbitMQ")
}
