// Package mqtt provides MQTT announce connectivity for wingroute.
//
// This package manages:
//   - Connection to an MQTT broker for the duration of one run
//   - Retained publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health checks
//
// # Architecture
//
// The tool publishes the latest routing snapshot to retained topics so
// studio machinery (session templates, wall displays, other capture
// hosts) can pick it up without polling the console themselves:
//
//	wingroute → MQTT Broker → recording workstations
//
// The client is publish-only; there is no subscribe surface.
//
// # Security Considerations
//
//   - TLS is available for non-local brokers (cfg.Broker.TLS=true)
//   - Credentials come from config or WINGROUTE_MQTT_PASSWORD
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.PublishRetained(mqtt.TopicSnapshot, summaryJSON)
package mqtt
