package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/config"
	"github.com/thaoanhhaa1/kltn-backend/pkg/tools"
)

// Handler 消费回调，返回的 error 只做日志，消息已经 auto-ack（at-most-once）
type Handler func(ctx context.Context, body []byte) error

// Client RabbitMQ 客户端，进程启动时构造一次
type Client struct {
	url string
}

func NewClient(cfg *config.Config) (*Client, error) {
	url := cfg.GetString(config.RabbitMQUrl)
	if url == "" {
		return nil, fmt.Errorf("%s is required", config.RabbitMQUrl)
	}

	return &Client{url: url}, nil
}

// SubscribeFanout 绑定一个独占队列到 fanout exchange 并阻塞消费。
// 连接断开或 ctx 取消时返回，重连和退避由上层 worker 负责。
func (c *Client) SubscribeFanout(ctx context.Context, exchange string, handler Handler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer tools.ErrorWithPrintContext(conn.Close, "close rabbitmq connection")

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer tools.ErrorWithPrintContext(channel.Close, "close rabbitmq channel")

	if err := channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		false, // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	// 独占匿名队列，断线即销毁，fanout 下每个实例各收一份
	queue, err := channel.QueueDeclare(
		"",    // name
		false, // durable
		false, // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	deliveries, err := channel.Consume(
		queue.Name,
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue.Name, err)
	}

	log.Infof("Subscribed to exchange %s via queue %s", exchange, queue.Name)

	// 单消费者顺序处理，一次一条
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for exchange %s", exchange)
			}
			if err := handler(ctx, delivery.Body); err != nil {
				log.Errorf("Failed to process message from %s: %v", exchange, err)
			}
		}
	}
}
