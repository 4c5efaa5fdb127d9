package gps

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Variant describes how a receiver model is brought up: its factory baud rate
// and the commands that trim its output to GGA and RMC.
type Variant struct {
	Name     string
	Baud     int
	Gap      time.Duration
	Commands [][]byte
}

var variants = map[string]Variant{
	// GlobalSat EM-506 (SiRF IV).
	"em506": {
		Name: "em506",
		Baud: 4800,
		Gap:  20 * time.Millisecond,
		Commands: [][]byte{
			[]byte("$PSRF103,02,00,00,01*26\r\n"), // GSA off
			[]byte("$PSRF103,03,00,00,01*27\r\n"), // GSV off
		},
	},
	// ADH Technology GT-735T, configured with u-blox UBX CFG-MSG and saved
	// with CFG-CFG.
	"gt735t": {
		Name: "gt735t",
		Baud: 9600,
		Gap:  250 * time.Millisecond,
		Commands: [][]byte{
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x01\x01\x00\x01\x01\x01\x01\x05\x3A"), // GLL off
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x02\x01\x00\x01\x01\x01\x01\x06\x41"), // GSA off
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x03\x01\x00\x01\x01\x01\x01\x07\x48"), // GSV off
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x05\x01\x00\x01\x01\x01\x01\x09\x56"), // VTG off
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x08\x00\x00\x00\x00\x00\x00\x07\x5B"), // ZDA off
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x00\x01\x01\x01\x01\x01\x01\x05\x38"), // GGA on
			[]byte("\xB5\x62\x06\x01\x08\x00\xF0\x04\x01\x01\x01\x01\x01\x01\x09\x54"), // RMC on
			[]byte("\xB5\x62\x06\x09\x0C\x00\x00\x00\x00\x00\xFF\xFF\x00\x00\x00\x00\x00\x00\x19\x80"), // save
		},
	},
	// GT-735T firmware that prefers SiRF-style NMEA commands.
	"gt735t-nmea": {
		Name: "gt735t-nmea",
		Baud: 9600,
		Gap:  100 * time.Millisecond,
		Commands: [][]byte{
			[]byte("$PSRF103,01,00,00,01*25\r\n"), // GLL off
			[]byte("$PSRF103,02,00,00,01*26\r\n"), // GSA off
			[]byte("$PSRF103,03,00,00,01*27\r\n"), // GSV off
			[]byte("$PSRF103,05,00,00,01*21\r\n"), // VTG off
			[]byte("$PSRF103,08,00,00,01*2C\r\n"), // ZDA off
			[]byte("$PSRF103,00,01,00,01*25\r\n"), // GGA on
			[]byte("$PSRF103,04,01,00,01*21\r\n"), // RMC on
		},
	},
	// Receiver already emits what we need.
	"none": {
		Name: "none",
		Baud: 9600,
	},
}

func LookupVariant(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, errors.Errorf("gps: unknown receiver model %q", name)
	}
	return v, nil
}
