package kafka

import (
	"fmt"

	"payment-service/src/pkg/log"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type producer struct {
	producer *k.Producer
	log      log.Log
}

func NewProducer(cfg *k.ConfigMap, logger log.Log) (Producer, error) {
	p, err := k.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	pr := &producer{
		producer: p,
		log:      logger,
	}

	go pr.handleDeliveryReports()

	return pr, nil
}

func (p *producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *k.Message:
			if ev.TopicPartition.Error != nil {
				p.log.Error("kafka-producer",
					fmt.Sprintf("delivery failed: %v", ev.TopicPartition.Error),
					"handleDeliveryReports", *ev.TopicPartition.Topic)
			}
		case k.Error:
			p.log.Error("kafka-producer", ev.Error(), "handleDeliveryReports", "")
		}
	}
}

func (p *producer) Publish(message *k.Message) error {
	deliveryChan := make(chan k.Event, 1)
	if err := p.producer.Produce(message, deliveryChan); err != nil {
		return err
	}

	e := <-deliveryChan
	m, ok := e.(*k.Message)
	if !ok {
		return fmt.Errorf("unexpected delivery event: %v", e)
	}
	if m.TopicPartition.Error != nil {
		return m.TopicPartition.Error
	}

	return nil
}

func (p *producer) PublishChannel(topic string, message []byte) {
	err := p.producer.Produce(&k.Message{
		TopicPartition: k.TopicPartition{Topic: &topic, Partition: k.PartitionAny},
		Value:          message,
	}, nil)
	if err != nil {
		p.log.Error("kafka-producer", fmt.Sprintf("produce failed: %v", err), "PublishChannel", topic)
	}
}
