// Package env builds a running link from flags, environment variables
// and an optional YAML file.
package env

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/amulet.go/pkg/bridge/mqtt"
	fx "github.com/robotalks/amulet.go/pkg/framework"
	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/node"
	"github.com/robotalks/amulet.go/pkg/sim"
	"github.com/robotalks/amulet.go/pkg/transport/serial"
	"github.com/robotalks/amulet.go/pkg/transport/websocket"
)

// PortSim selects the in-process simulated display.
const PortSim = "sim"

// Config provides options to set up a link.
type Config struct {
	// Port is a serial device, PortSim, or a ws:// URL.
	Port   string        `yaml:"port"`
	Serial serial.Config `yaml:"serial"`

	// MQTTBrokerURL enables the MQTT bridge,
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string `yaml:"mqtt"`
	MQTTFormat    string `yaml:"mqtt_format"`
	NodeID        string `yaml:"node_id"`

	Link link.Config `yaml:"link"`

	// ConfigFile is loaded by NewEnv over the other fields.
	ConfigFile string `yaml:"-"`
}

var defaultConfig = Config{
	Port:       PortSim,
	Serial:     serial.DefaultConfig(),
	MQTTFormat: "text",
	Link:       link.DefaultConfig(),
}

func init() {
	if val := os.Getenv("AMULET_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("AMULET_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Serial.BaudRate = baud
		}
	}
	if val := os.Getenv("AMULET_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("AMULET_CONFIG"); val != "" {
		defaultConfig.ConfigFile = val
	}
	defaultConfig.NodeID = MachineID()
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.Port, "port", c.Port, "Serial device, sim, or ws:// URL")
	flag.IntVar(&c.Serial.BaudRate, "baud", c.Serial.BaudRate, "Serial baud rate")
	flag.StringVar(&c.Serial.Parity, "parity", c.Serial.Parity, "Serial parity: none, odd, even, mark, space")
	flag.StringVar(&c.Serial.StopBits, "stop-bits", c.Serial.StopBits, "Serial stop bits: 1, 1.5, 2")
	flag.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&c.MQTTFormat, "mqtt-format", c.MQTTFormat, "MQTT payload format: text, proto")
	flag.StringVar(&c.NodeID, "node-id", c.NodeID, "Node ID in MQTT topics")
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file")
	flag.BoolVar(&c.Link.Extended, "extended", c.Link.Extended, "Two-byte locations")
	flag.IntVar(&c.Link.Retries, "retries", c.Link.Retries, "Resends when no reply")
	flag.DurationVar(&c.Link.Timeout, "timeout", c.Link.Timeout, "Reply timeout")
	flag.IntVar(&c.Link.MaxStringLength, "max-string", c.Link.MaxStringLength, "Max string length")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile reads YAML from path over c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Load reads ConfigFile over c when it's set.
func (c *Config) Load() error {
	if c.ConfigFile == "" {
		return nil
	}
	return c.LoadFile(c.ConfigFile)
}

// Env is a link ready to be added to a loop.
type Env struct {
	Config  *Config
	Engine  *link.Engine
	Node    *node.Node
	Display *sim.Display
	Bridge  *mqtt.Bridge

	closer io.Closer
}

// NewEnv opens the port and creates the engine.
func (c *Config) NewEnv() (*Env, error) {
	if err := c.Load(); err != nil {
		return nil, err
	}
	env := &Env{Config: c}
	var transport link.Transport
	switch {
	case c.Port == PortSim:
		t, display, err := sim.NewPiped(c.Link)
		if err != nil {
			return nil, err
		}
		transport, env.Display = t, display
	case strings.HasPrefix(c.Port, "ws://"), strings.HasPrefix(c.Port, "wss://"):
		t, err := websocket.Dial(c.Port)
		if err != nil {
			return nil, err
		}
		t.TxCapacity = c.Link.TxBufferSize
		transport, env.closer = t, t
	case c.Port == "":
		return nil, fmt.Errorf("port must be specified")
	default:
		conf := c.Serial
		conf.Port = c.Port
		t, err := serial.Open(conf)
		if err != nil {
			return nil, err
		}
		t.TxCapacity = c.Link.TxBufferSize
		transport, env.closer = t, t
	}
	engine, err := link.New(transport, c.Link)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Engine = engine
	env.Node = node.New(engine)
	if c.MQTTBrokerURL != "" {
		if env.Bridge, err = c.newBridge(env.Node); err != nil {
			env.Close()
			return nil, err
		}
	}
	return env, nil
}

func (c *Config) newBridge(n *node.Node) (*mqtt.Bridge, error) {
	codec, err := mqtt.CodecByName(c.MQTTFormat)
	if err != nil {
		return nil, err
	}
	q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
	}
	return mqtt.New(q, n, codec, c.NodeID), nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(l *fx.Loop) {
	l.Add(e.Node)
	if e.Display != nil {
		l.AddRunnable(e.Display)
	}
	if e.Bridge != nil {
		l.Add(e.Bridge)
	}
}

// Close releases the port.
func (e *Env) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}
