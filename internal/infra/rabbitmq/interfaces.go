package rabbitmq

import "context"

// PublisherInterface is the event port the order flows publish through;
// the amqp-backed Publisher is the production implementation, tests
// substitute a mock.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
