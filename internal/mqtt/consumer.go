package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"homesentry-data/internal/config"
	"homesentry-data/internal/domain"
	"homesentry-data/internal/service"
)

// Consumer subscribes to the device report topic and dispatches each
// message through the ingestion service. Topic layout is
// homesentry/{mac}/{stream}; the payload is the same JSON body the
// matching POST /api/log/{stream} endpoint accepts. When the payload
// omits its identity field the MAC from the topic fills in.
type Consumer struct {
	cfg    *config.MQTTConfig
	client *Client
	ingest service.IngestService
	logger *zap.Logger
}

func NewConsumer(cfg *config.MQTTConfig, client *Client, ingest service.IngestService, logger *zap.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		client: client,
		ingest: ingest,
		logger: logger,
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("MQTT consumer started", zap.String("topic", c.cfg.Topic))

	<-ctx.Done()
	return nil
}

// Stop unsubscribes. The shared client is disconnected by its owner.
func (c *Consumer) Stop() {
	if err := c.client.Unsubscribe(c.cfg.Topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("MQTT consumer stopped")
}

func (c *Consumer) handleMessage(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	mac, stream := parts[1], parts[2]

	c.logger.Debug("Received MQTT report",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)))

	// The paho callback has no request context; ingestion must not be
	// cut short by the subscription lifecycle.
	ctx := context.Background()
	var err error

	switch stream {
	case "event":
		rep := &domain.EventReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.BridgeMAC = orTopicMAC(rep.BridgeMAC, mac)
		_, err = c.ingest.LogEvent(ctx, rep)
	case "climate":
		rep := &domain.ClimateReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.SensorMAC = orTopicMAC(rep.SensorMAC, mac)
		_, err = c.ingest.LogClimate(ctx, rep)
	case "battery":
		rep := &domain.BatteryReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.DeviceMAC = orTopicMAC(rep.DeviceMAC, mac)
		_, err = c.ingest.LogBattery(ctx, rep)
	case "alarm":
		rep := &domain.AlarmReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.BridgeMAC = orTopicMAC(rep.BridgeMAC, mac)
		_, err = c.ingest.LogAlarm(ctx, rep)
	case "state":
		rep := &domain.BridgeStateReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.BridgeMAC = orTopicMAC(rep.BridgeMAC, mac)
		rep.Raw = payload
		_, err = c.ingest.LogBridgeState(ctx, rep)
	case "metrics":
		rep := &domain.MetricsReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.BridgeMAC = orTopicMAC(rep.BridgeMAC, mac)
		_, err = c.ingest.LogMetrics(ctx, rep)
	case "sensor-state":
		rep := &domain.SensorStateReport{}
		if err = json.Unmarshal(payload, rep); err != nil {
			break
		}
		rep.SensorMAC = orTopicMAC(rep.SensorMAC, mac)
		rep.Raw = payload
		_, err = c.ingest.SensorState(ctx, rep)
	default:
		return fmt.Errorf("unknown stream kind: %s", stream)
	}

	if err != nil {
		return fmt.Errorf("failed to handle %s report: %w", stream, err)
	}
	return nil
}

func orTopicMAC(field *string, mac string) *string {
	if field != nil && strings.TrimSpace(*field) != "" {
		return field
	}
	return &mac
}
