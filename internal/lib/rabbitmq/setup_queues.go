package rabbitmq

// Ключи маршрутизации событий аутентификации.
const (
	RoutingKeyUserRegistered = "user.registered"
	RoutingKeyUserLoggedIn   = "user.logged_in"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetAuthQueues возвращает очереди, в которые попадают события аутентификации.
func GetAuthQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "auth.registered", RoutingKey: RoutingKeyUserRegistered},
		{QueueName: "auth.logged_in", RoutingKey: RoutingKeyUserLoggedIn},
	}
}
