package events

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Publisher pushes next-prayer transitions to an MQTT broker so external
// displays (mosque screens, home devices) can follow along without polling
// the bot.
type Publisher struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client}, nil
}

type nextPrayerEvent struct {
	Region string `json:"region"`
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
}

// PublishNextPrayer announces the upcoming prayer for a region on
// prayers/<region>/next. Publish failures are logged, never propagated: the
// freshness loop must not depend on the broker.
func (p *Publisher) PublishNextPrayer(region, prayer, timeHHMM, date string) {
	payload, err := json.Marshal(nextPrayerEvent{
		Region: region,
		Prayer: prayer,
		Time:   timeHHMM,
		Date:   date,
	})
	if err != nil {
		return
	}
	topic := fmt.Sprintf("prayers/%s/next", region)
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("MQTT publish failed")
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
