package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/logger"
)

const opTimeout = 10 * time.Second

// Client wraps the Paho MQTT client.
type Client struct {
	client paho.Client
	url    string
	mu     sync.Mutex
}

// NewClient creates a new MQTT client but does not connect.
func NewClient(clientID, url string) *Client {
	log := logger.For("mqtt")
	opts := paho.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			log.Infow("connected", "broker", url)
			events.Emit("info", "mqtt.connected", "", map[string]interface{}{"broker": url})
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("connection lost", "broker", url, "error", err)
			events.Emit("warn", "mqtt.disconnected", err.Error(), map[string]interface{}{"broker": url})
		})

	return &Client{
		client: paho.NewClient(opts),
		url:    url,
	}
}

// URL returns the broker URL.
func (c *Client) URL() string {
	return c.url
}

// Connect attempts to connect to the broker.
// Returns an error if connection fails, but does not block indefinitely.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(opTimeout) {
		return &ConnectTimeoutError{}
	}
	return token.Error()
}

// Publish sends payload to topic with QoS 1.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(opTimeout) {
		return &PublishTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(1000)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// ConnectTimeoutError indicates connection timed out.
type ConnectTimeoutError struct{}

func (e *ConnectTimeoutError) Error() string {
	return "mqtt connect timeout"
}

// PublishTimeoutError indicates a publish was not acknowledged in time.
type PublishTimeoutError struct {
	Topic string
}

func (e *PublishTimeoutError) Error() string {
	return "mqtt publish timeout: " + e.Topic
}
