package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/internal/config"

	mqtt "github.com/soypat/natiu-mqtt"
)

// DetectionMessage is the JSON payload published for every frame with
// detections
type DetectionMessage struct {
	Frame      uint64          `json:"frame"`
	Time       time.Time       `json:"time"`
	Detections []DetectionJSON `json:"detections"`
}

// DetectionJSON is a single detection with its box normalized to the model
// input
type DetectionJSON struct {
	Xmin  float32 `json:"xmin"`
	Ymin  float32 `json:"ymin"`
	Xmax  float32 `json:"xmax"`
	Ymax  float32 `json:"ymax"`
	Score float32 `json:"score"`
	Label string  `json:"label"`
}

func newDetectionMessage(frame uint64, ts time.Time, dets []tflitedetect.Detection) DetectionMessage {

	msg := DetectionMessage{
		Frame:      frame,
		Time:       ts,
		Detections: make([]DetectionJSON, len(dets)),
	}

	for i, d := range dets {
		msg.Detections[i] = DetectionJSON{
			Xmin:  d.Box.Xmin,
			Ymin:  d.Box.Ymin,
			Xmax:  d.Box.Xmax,
			Ymax:  d.Box.Ymax,
			Score: d.Score,
			Label: d.Label,
		}
	}

	return msg
}

func mqttclient(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	in_chan <-chan DetectionMessage,
) error {

	logger := parent_logger.With("coroutine", "mqttclient")

	client := mqtt.NewClient(
		mqtt.ClientConfig{
			Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 2048)},
			OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
				message, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				logger.Debug("Received", "topic", string(varPub.TopicName), "message", message)
				return nil
			},
		})

	timeout := time.Second * time.Duration(cfg.MQTT.ConnectTimeoutSec)

	connection, err := net.DialTimeout("tcp", cfg.MQTT.Address, timeout)
	if err != nil {
		logger.Error("Can't reach broker", "address", cfg.MQTT.Address, "error", err)
		return fmt.Errorf("%w: %w", ErrBrokerRefused, err)
	}

	connection_ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var vars mqtt.VariablesConnect
	vars.SetDefaultMQTT([]byte(cfg.MQTT.ClientID))

	if err := client.Connect(connection_ctx, connection, &vars); err != nil {
		connection.Close()
		logger.Error("Connect failed", "address", cfg.MQTT.Address, "error", err)
		return fmt.Errorf("%w: %w", ErrBrokerRefused, err)
	}

	defer client.Disconnect(errors.New("shutting down"))

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}

	logger.Info("Connected", "address", cfg.MQTT.Address, "topic", cfg.MQTT.Topic)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled

		case msg := <-in_chan:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Error("Can't encode detections", "frame", msg.Frame, "error", err)
				continue
			}

			err = client.PublishPayload(flags, mqtt.VariablesPublish{
				TopicName: []byte(cfg.MQTT.Topic),
			}, payload)

			if err != nil {
				logger.Error("Publish failed", "frame", msg.Frame, "error", err)
				return err
			}
		}
	}
}
