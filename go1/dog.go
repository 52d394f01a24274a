// Package go1 is a client for the Unitree Go1 quadruped's onboard MQTT
// broker.
//
// The robot runs a broker on its access point (port 1883). Movement is
// commanded by publishing a four-axis velocity vector to controller/stick;
// gait and posture changes go to controller/action. The robot publishes
// telemetry on firmware/version and bms/state, which this client subscribes
// to and parses into State.
package go1

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	brokerPort = 1883

	topicAction   = "controller/action"
	topicStick    = "controller/stick"
	topicFirmware = "firmware/version"
	topicBMS      = "bms/state"

	// Stick commands are republished at this rate for the duration of a
	// timed move; the robot stops when the stream ends.
	stickHz = 10
)

// Dog is a connected Go1. All command methods are safe for use from a
// single goroutine; timed moves block for their full duration.
type Dog struct {
	client mqtt.Client
	host   string

	mu  sync.RWMutex
	bms BMS
	fw  Robot
}

// Dial connects to the dog's broker and subscribes to telemetry. The probe
// is bounded: if the broker cannot be reached within timeout, Dial fails
// instead of blocking.
func Dial(host string, timeout time.Duration) (*Dog, error) {
	d := &Dog{host: host}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", host, brokerPort)).
		SetClientID(fmt.Sprintf("robotwalk-%d", rand.Intn(1000))).
		SetKeepAlive(5 * time.Second).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false)

	d.client = mqtt.NewClient(opts)

	token := d.client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("go1: connect to %s timed out after %s", host, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("go1: connect to %s: %w", host, err)
	}

	d.client.Subscribe(topicFirmware, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fw := ParseRobot(msg.Payload())
		d.mu.Lock()
		d.fw = fw
		d.mu.Unlock()
	})
	d.client.Subscribe(topicBMS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		bms := ParseBMS(msg.Payload())
		d.mu.Lock()
		d.bms = bms
		d.mu.Unlock()
	})

	return d, nil
}

// Close tears down the broker connection.
func (d *Dog) Close() error {
	d.client.Disconnect(250)
	return nil
}

// Host returns the broker address the dog was dialed on.
func (d *Dog) Host() string {
	return d.host
}

// BMS returns the last battery telemetry seen.
func (d *Dog) BMS() BMS {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bms
}

// Firmware returns the last firmware/model telemetry seen.
func (d *Dog) Firmware() Robot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fw
}

// ChangeMode stops any motion and switches the controller action.
func (d *Dog) ChangeMode(m Mode) error {
	if err := d.Stop(); err != nil {
		return err
	}
	return d.publish(topicAction, 1, []byte(m))
}

// Move publishes one stick vector. Axes: x lateral, y yaw, z pitch,
// w forward. Values are clamped to [-1, 1].
func (d *Dog) Move(x, y, z, w float64) error {
	buf := make([]byte, 16)
	for i, v := range []float64{x, y, z, w} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(clamp(v))))
	}
	return d.publish(topicStick, 0, buf)
}

// Stop zeroes the stick.
func (d *Dog) Stop() error {
	return d.Move(0, 0, 0, 0)
}

// moveOverTime streams a stick vector at stickHz for the duration, then
// stops. It blocks for the full duration.
func (d *Dog) moveOverTime(x, y, z, w, seconds float64) error {
	ticks := int(seconds * stickHz)
	interval := time.Second / stickHz
	for i := 0; i < ticks; i++ {
		if err := d.Move(x, y, z, w); err != nil {
			d.Stop()
			return err
		}
		time.Sleep(interval)
	}
	return d.Stop()
}

// GoForward walks forward at speed for the given seconds.
func (d *Dog) GoForward(speed, seconds float64) error {
	return d.moveOverTime(0, 0, 0, speed, seconds)
}

// GoBackward walks backward at speed for the given seconds.
func (d *Dog) GoBackward(speed, seconds float64) error {
	return d.GoForward(-speed, seconds)
}

// GoRight strides sideways to the right; the heading does not change.
func (d *Dog) GoRight(speed, seconds float64) error {
	return d.moveOverTime(speed, 0, 0, 0, seconds)
}

// GoLeft strides sideways to the left.
func (d *Dog) GoLeft(speed, seconds float64) error {
	return d.GoRight(-speed, seconds)
}

// TurnRight yaws clockwise in place.
func (d *Dog) TurnRight(speed, seconds float64) error {
	return d.moveOverTime(0, speed, 0, 0, seconds)
}

// TurnLeft yaws counter-clockwise in place.
func (d *Dog) TurnLeft(speed, seconds float64) error {
	return d.TurnRight(-speed, seconds)
}

func (d *Dog) publish(topic string, qos byte, payload []byte) error {
	token := d.client.Publish(topic, qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("go1: publish %s: %w", topic, err)
	}
	return nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
