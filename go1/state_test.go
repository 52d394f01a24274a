package go1

import (
	"encoding/binary"
	"testing"
)

func buildBMSPayload(soc uint8, current int32, cells []uint16) []byte {
	payload := make([]byte, 34)
	payload[0] = 1
	payload[1] = 2
	payload[2] = 0
	payload[3] = soc
	binary.LittleEndian.PutUint32(payload[4:8], uint32(current))
	binary.LittleEndian.PutUint16(payload[8:10], 42)
	copy(payload[10:14], []byte{25, 26, 27, 28})
	for i, v := range cells {
		binary.LittleEndian.PutUint16(payload[14+i*2:], v)
	}
	return payload
}

func TestParseBMS(t *testing.T) {
	cells := []uint16{4100, 4101, 4102, 4103, 4104, 4105, 4106, 4107, 4108, 4109}
	b := ParseBMS(buildBMSPayload(87, -1500, cells))

	if b.Version != "1.2" {
		t.Errorf("version = %s, want 1.2", b.Version)
	}
	if b.SoC != 87 {
		t.Errorf("soc = %d, want 87", b.SoC)
	}
	if b.Current != -1500 {
		t.Errorf("current = %d, want -1500", b.Current)
	}
	if b.Cycles != 42 {
		t.Errorf("cycles = %d, want 42", b.Cycles)
	}

	var wantVoltage uint32
	for _, v := range cells {
		wantVoltage += uint32(v)
	}
	if b.Voltage != wantVoltage {
		t.Errorf("voltage = %d, want %d", b.Voltage, wantVoltage)
	}
}

func TestParseBMS_Truncated(t *testing.T) {
	b := ParseBMS([]byte{1, 2, 3})
	if b.SoC != 0 || b.Version != "" {
		t.Errorf("truncated payload must parse to zero value, got %+v", b)
	}
}

func TestParseRobot(t *testing.T) {
	payload := make([]byte, 44)
	payload[0] = 4 // Go1
	payload[1] = 3 // EDU
	payload[2] = 1
	payload[3] = 2
	payload[4] = 3
	payload[5] = 4
	payload[28] = 2 // sport mode
	payload[29] = 1 // walk gait
	copy(payload[30:34], []byte{255, 255, 255, 255})
	copy(payload[36:39], []byte{1, 0, 1})
	copy(payload[39:42], []byte{3, 8, 0})

	r := ParseRobot(payload)
	if r.Product != "Go1_EDU" {
		t.Errorf("product = %s, want Go1_EDU", r.Product)
	}
	if r.SerialID != "1-2-3[4]" {
		t.Errorf("serial = %s, want 1-2-3[4]", r.SerialID)
	}
	if r.State != "walk" {
		t.Errorf("state = %s, want walk", r.State)
	}
	if r.HardwareVersion != "1.0.1" || r.SoftwareVersion != "3.8.0" {
		t.Errorf("versions = %s / %s, want 1.0.1 / 3.8.0", r.HardwareVersion, r.SoftwareVersion)
	}
}

func TestParseRobot_ShortPayload(t *testing.T) {
	r := ParseRobot(make([]byte, 10))
	if r.State != "invalid" || r.Product != "" {
		t.Errorf("short payload must stay mostly zero, got %+v", r)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{1.7, 1},
		{-2, -1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.in); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
