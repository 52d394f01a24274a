package actuator

import (
	"log"
	"time"

	"github.com/cherypallysaisurya/robotwalk/go1"
	"github.com/cherypallysaisurya/robotwalk/robot/config"
)

// standSettle is how long the dog needs to stabilize in stand before it can
// accept a gait change.
const standSettle = 2 * time.Second

// Select picks the actuator variant for the config. It runs exactly once,
// at program construction:
//
//   - simulator mode selects Simulated; no hardware probing happens at all
//   - real mode with the mock override set selects Mock unconditionally,
//     without touching the network
//   - real mode otherwise probes the hardware link with a bounded timeout
//     and falls back to Mock on any failure
//
// Select never returns an error for absent hardware: construction must
// behave identically whether or not a robot is reachable. The second return
// reports whether the mock fallback was taken.
func Select(cfg *config.Config) (Actuator, bool) {
	gait := GaitFromConfig(cfg)

	if cfg.Mode == config.ModeSimulator {
		return NewSimulated(), false
	}

	if cfg.HardwareMock {
		log.Printf("hardware mock forced (%s) - no connection attempted", config.EnvHardwareMock)
		return NewMock(gait), true
	}

	dog, err := go1.Dial(cfg.Host, cfg.ProbeTimeout)
	if err != nil {
		log.Printf("robot not reachable, using mock: %v", err)
		return NewMock(gait), true
	}

	if err := initSequence(dog); err != nil {
		log.Printf("robot initialization failed, using mock: %v", err)
		dog.Close()
		return NewMock(gait), true
	}

	log.Printf("real robot initialized (host: %s)", cfg.Host)
	return NewHardware(dog, gait), false
}

// initSequence brings the dog into a walkable state: stand, settle, then
// switch to the walking gait.
func initSequence(dog *go1.Dog) error {
	if err := dog.ChangeMode(go1.ModeStand); err != nil {
		return err
	}
	time.Sleep(standSettle)
	return dog.ChangeMode(go1.ModeWalk)
}
