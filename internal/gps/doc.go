// Package gps turns a serial NMEA stream into a Fix.
//
// The adapter is polled, not threaded: Drain consumes whatever bytes the port
// already holds and returns at once. Only RMC and GGA are folded into the Fix;
// other sentences count toward readiness and are otherwise ignored.
package gps
