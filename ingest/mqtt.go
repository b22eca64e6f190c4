package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/config"
	"github.com/Cyndi121404/Henhacks2026/models"
	"github.com/Cyndi121404/Henhacks2026/services"
)

var (
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosswalk_mqtt_messages_received_total",
		Help: "Total number of MQTT messages received by the ingest bridge.",
	})
	messagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosswalk_mqtt_messages_failed_total",
		Help: "Total number of MQTT messages rejected or failed to store.",
	})
)

// envelope is the same {table, record} shape the HTTP write endpoint takes,
// so a crosswalk unit can publish events over MQTT instead of HTTP.
type envelope struct {
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// Bridge subscribes to the configured topic and feeds every well-formed
// envelope through the same event writer the HTTP facade uses.
type Bridge struct {
	cfg    config.MQTTConfig
	writer *services.EventWriter
	logger *logrus.Logger
	client mqtt.Client
}

func NewBridge(cfg config.MQTTConfig, writer *services.EventWriter, logger *logrus.Logger) *Bridge {
	return &Bridge{cfg: cfg, writer: writer, logger: logger}
}

func (b *Bridge) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.cfg.URL)
	opts.SetClientID("crosswalk-gateway-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		messagesReceived.Inc()
		if err := b.Handle(ctx, message.Payload()); err != nil {
			messagesFailed.Inc()
			b.logger.WithError(err).Warn("mqtt event rejected")
		}
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(b.cfg.Topic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			b.logger.WithError(token.Error()).Error("mqtt subscribe failed")
			return
		}
		b.logger.WithField("topic", b.cfg.Topic).Info("ingest bridge subscribed")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		b.logger.WithError(err).Warn("mqtt connection lost")
	}

	b.client = mqtt.NewClient(opts)
	token := b.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Handle writes one published envelope. Split out from the subscription
// callback so it can be exercised without a broker.
func (b *Bridge) Handle(ctx context.Context, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	table := strings.ToUpper(env.Table)
	switch table {
	case models.CrossingEvent{}.TableName():
		var ev models.CrossingEvent
		if len(env.Record) > 0 {
			if err := json.Unmarshal(env.Record, &ev); err != nil {
				return fmt.Errorf("invalid crossing record: %w", err)
			}
		}
		_, err := b.writer.WriteCrossing(ctx, ev)
		return err

	case models.ViolationEvent{}.TableName():
		var ev models.ViolationEvent
		if len(env.Record) > 0 {
			if err := json.Unmarshal(env.Record, &ev); err != nil {
				return fmt.Errorf("invalid violation record: %w", err)
			}
		}
		_, err := b.writer.WriteViolation(ctx, ev)
		return err

	default:
		return fmt.Errorf("unknown table: %s", table)
	}
}

func (b *Bridge) Stop() {
	if b.client != nil {
		b.client.Disconnect(250)
	}
}
