package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/esb/msgs"
)

// ConnTopic is the topic (under the prefix) carrying connection state.
const ConnTopic = "esb/conn"

// Notifier implements esb.ConnNotifier by publishing ConnStateChanged
// events. The current state is retained on the broker and cleared by a
// will message when the bridge goes away.
type Notifier struct {
	Queue *Queue

	lock  sync.Mutex
	last  []byte
	valid bool
}

// NewNotifier creates a Notifier from a broker URL. When the URL carries
// no client-id, a stable one is derived from the machine ID.
func NewNotifier(brokerURL string) (*Notifier, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		id, err := machineid.ID()
		if err != nil {
			return nil, err
		}
		opts.SetClientID("esb:" + id)
	}
	opts.SetBinaryWill(topicPrefix+ConnTopic, nil, 1, true)
	n := &Notifier{Queue: NewQueue(opts, topicPrefix)}
	n.Queue.OnConnect = func(*Queue) { n.republish() }
	return n, nil
}

// ConnStateChanged implements esb.ConnNotifier. Bus failures are logged
// and never surface into the protocol engine.
func (n *Notifier) ConnStateChanged(ctx context.Context, connected bool) {
	payload, err := json.Marshal(&msgs.ConnStateChanged{Connected: connected})
	if err != nil {
		panic(err)
	}
	n.lock.Lock()
	n.last, n.valid = payload, true
	n.lock.Unlock()
	n.Queue.PubWith(ConnTopic, payload, 1, true)
}

// republish restores the retained state after a reconnect.
func (n *Notifier) republish() {
	n.lock.Lock()
	payload, valid := n.last, n.valid
	n.lock.Unlock()
	if valid {
		n.Queue.PubWith(ConnTopic, payload, 1, true)
	}
}

// Run implements framework.Runnable. It keeps the broker connection for
// the lifetime of the context and clears the retained state on the way
// out.
func (n *Notifier) Run(ctx context.Context) error {
	if token := n.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	glog.V(1).Info("clearing retained link state")
	n.Queue.PubWith(ConnTopic, nil, 1, true)
	n.Queue.Close()
	return ctx.Err()
}
