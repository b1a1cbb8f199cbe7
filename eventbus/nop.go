package eventbus

// NopBus is an event bus that discards everything published to it,
// used whenever no bus was configured
var NopBus EventBus = &nopBus{}

type nopBus struct{}

func (n *nopBus) Close() error                { return nil }
func (n *nopBus) Publish(Event)               {}
func (n *nopBus) Subscribe(...EventHandler)   {}
func (n *nopBus) Unsubscribe(...EventHandler) {}
func (n *nopBus) Len() int                    { return 0 }
