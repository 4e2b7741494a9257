package kafka

// TopicPreparationDLQ: topic по умолчанию для уведомлений, не доставленных сервису приготовления.
const TopicPreparationDLQ = "orders.preparation.dlq"

// Заголовки сообщений dead-letter topic.
const (
	HeaderOutboxID    = "x-outbox-id"
	HeaderEventType   = "x-event-type"
	HeaderAggregateID = "x-aggregate-id"
)
