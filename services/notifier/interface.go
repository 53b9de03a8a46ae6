package notifier

// Notifier is the push channel the coordination engine publishes state
// changes to. Publish is fire-and-forget: delivery is best-effort to the
// subscribers connected at publish time, there is no replay, and a failure
// to deliver never surfaces to the caller.
type Notifier interface {
	Publish(topic string, payload interface{})
}

// Nop is a Notifier that discards every event.
type Nop struct{}

func (Nop) Publish(string, interface{}) {}
