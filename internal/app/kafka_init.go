package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/messaging/kafka"
)

const kafkaClientID = "restaurant-orders"

// initKafkaProducer создаёт producer для DLQ. Пустой список брокеров или ошибка
// подключения не останавливают сервис: возвращается nil.
func initKafkaProducer(brokers []string, logger *log.Entry) *kafka.Producer {
	if len(brokers) == 0 {
		logger.Info("kafka brokers are not configured, dead-letter publishing is disabled")
		return nil
	}

	producer, err := kafka.NewProducer(brokers, kafkaClientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}
	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
