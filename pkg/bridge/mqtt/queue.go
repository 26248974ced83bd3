package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received. topic has the
// queue prefix removed.
type Handler func(topic string, payload []byte)

// Queue wraps an MQTT client with a topic prefix.
type Queue struct {
	Client      paho.Client
	TopicPrefix string
	// OnConnect is called after each (re)connect and resubscription.
	OnConnect func(*Queue)

	lock sync.RWMutex
	subs map[string][]Handler
}

// MatchTopic matches topic with a subscription pattern.
func MatchTopic(topic, pattern string) bool {
	levels, filters := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for n, filter := range filters {
		if filter == "#" && n == len(filters)-1 {
			return true
		}
		if n >= len(levels) {
			return false
		}
		if filter != "+" && filter != levels[n] {
			return false
		}
	}
	return len(levels) == len(filters)
}

// ClientOptionsFromURL parses mqtt://[user:pass@]host:port/prefix/?client-id=ID.
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	opts := paho.NewClientOptions().
		AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, strings.TrimPrefix(u.Path, "/"), nil
}

// NewQueue creates Queue.
func NewQueue(opts *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string][]Handler)}
	opts.SetOnConnectHandler(q.connected)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("mqtt connection lost: %v", err)
	})
	q.Client = paho.NewClient(opts)
	return q
}

// NewQueueFromURL creates Queue from a broker URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, prefix), nil
}

// Connect connects and waits for the result.
func (q *Queue) Connect() error {
	token := q.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub registers handler on pattern. Subscriptions made before Connect
// are sent on connect.
func (q *Queue) Sub(pattern string, handler Handler) {
	q.lock.Lock()
	_, exists := q.subs[pattern]
	q.subs[pattern] = append(q.subs[pattern], handler)
	q.lock.Unlock()
	if !exists && q.Client.IsConnected() {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+pattern)
		q.Client.Subscribe(q.TopicPrefix+pattern, 0, q.dispatch)
	}
}

// Pub publishes payload.
func (q *Queue) Pub(topic string, payload []byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, 0, retain, payload)
}

func (q *Queue) connected(paho.Client) {
	glog.Info("mqtt connected")
	filters := make(map[string]byte)
	q.lock.RLock()
	for pattern := range q.subs {
		filters[q.TopicPrefix+pattern] = 0
	}
	q.lock.RUnlock()
	if len(filters) > 0 {
		glog.V(2).Infof("SUB %v", filters)
		q.Client.SubscribeMultiple(filters, q.dispatch)
	}
	if q.OnConnect != nil {
		q.OnConnect(q)
	}
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	glog.V(2).Infof("RCV %q", topic)
	var handlers []Handler
	q.lock.RLock()
	for pattern, hs := range q.subs {
		if MatchTopic(topic, pattern) {
			handlers = append(handlers, hs...)
		}
	}
	q.lock.RUnlock()
	for _, h := range handlers {
		h(topic, msg.Payload())
	}
}
