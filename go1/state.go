package go1

import (
	"encoding/binary"
	"fmt"
)

// BMS is the battery management telemetry published on bms/state.
type BMS struct {
	Version      string
	Status       uint8
	SoC          uint8 // state of charge, percent
	Current      int32 // mA, negative while discharging
	Cycles       uint16
	Temps        []uint8 // 4 probe temperatures, Celsius
	CellVoltages []uint16
	Voltage      uint32 // mV, sum of cell voltages
}

// ParseBMS decodes a bms/state payload. Short payloads return a zero-value
// BMS rather than an error; the robot occasionally publishes truncated
// frames during startup.
func ParseBMS(payload []byte) BMS {
	var b BMS
	if len(payload) < 34 {
		return b
	}
	b.Version = fmt.Sprintf("%d.%d", payload[0], payload[1])
	b.Status = payload[2]
	b.SoC = payload[3]
	b.Current = int32(binary.LittleEndian.Uint32(payload[4:8]))
	b.Cycles = binary.LittleEndian.Uint16(payload[8:10])
	b.Temps = append([]uint8(nil), payload[10:14]...)
	b.CellVoltages = make([]uint16, 10)
	for i := range b.CellVoltages {
		v := binary.LittleEndian.Uint16(payload[14+i*2 : 16+i*2])
		b.CellVoltages[i] = v
		b.Voltage += uint32(v)
	}
	return b
}

// Robot is the identity and gait telemetry published on firmware/version.
type Robot struct {
	Product         string // e.g. "Go1_EDU"
	SerialID        string
	HardwareVersion string
	SoftwareVersion string
	Mode            uint8
	GaitType        uint8
	State           string // walk, run, climb when in sport mode
	Obstacles       []uint8
}

var productNames = map[byte]string{1: "Laikago", 2: "Aliengo", 3: "A1", 4: "Go1", 5: "B1"}
var productModels = map[byte]string{1: "AIR", 2: "PRO", 3: "EDU", 4: "PC", 5: "XX"}

// ParseRobot decodes a firmware/version payload.
func ParseRobot(payload []byte) Robot {
	var r Robot
	r.State = "invalid"

	if len(payload) > 30 {
		r.Mode = payload[28]
		r.GaitType = payload[29]
		if len(payload) >= 34 {
			r.Obstacles = append([]uint8(nil), payload[30:34]...)
		}
		if r.Mode == 2 {
			switch r.GaitType {
			case 1:
				r.State = "walk"
			case 2:
				r.State = "run"
			case 3:
				r.State = "climb"
			}
		}
	}

	if len(payload) >= 44 {
		name, okName := productNames[payload[0]]
		model, okModel := productModels[payload[1]]
		if okName && okModel {
			r.Product = fmt.Sprintf("%s_%s", name, model)
		}
		if payload[2] < 255 {
			r.SerialID = fmt.Sprintf("%d-%d-%d[%d]", payload[2], payload[3], payload[4], payload[5])
		}
		if payload[36] < 255 {
			r.HardwareVersion = fmt.Sprintf("%d.%d.%d", payload[36], payload[37], payload[38])
		}
		r.SoftwareVersion = fmt.Sprintf("%d.%d.%d", payload[39], payload[40], payload[41])
	}

	return r
}
