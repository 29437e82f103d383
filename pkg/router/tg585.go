package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rtstat-tools/rtstat/pkg/parse"
	"github.com/rtstat-tools/rtstat/pkg/session"
	"github.com/rtstat-tools/rtstat/pkg/util"
)

func init() {
	Register("TG585v8", func() Profile { return &TG585v8{} })
}

// TG585v8 is the profile for the Thomson TG585 v8 DSL gateway, usually
// found on 192.168.1.254. Factory firmware grants administrator access
// with the default credentials below.
type TG585v8 struct{}

func (*TG585v8) Name() string            { return "Thomson TG585 v8" }
func (*TG585v8) DefaultUsername() string { return "Administrator" }
func (*TG585v8) DefaultPassword() string { return "" }

const (
	cmdXDSLInfo = "xdsl info"
	cmdIfList   = "ip iflist"

	keyModemState = "Modem state"
	keyUptime     = "Up time (Days hh:mm:ss)"
	keyBandwidth  = "Bandwidth (Down/Up - kbit/s)"
	keyXDSLType   = "xDSL Type"
)

// XDSLInfo queries the DSL link: modem state, uptime, line type, and the
// negotiated downstream/upstream bandwidth.
func (p *TG585v8) XDSLInfo(s *session.Session) (map[string]Metrics, error) {
	if err := s.ResetLevel(); err != nil {
		return nil, err
	}
	out, err := s.Send(cmdXDSLInfo)
	if err != nil {
		return nil, err
	}
	kv := parse.KeyValue(strings.Split(out, "\n"), ':')

	state, ok := kv[keyModemState]
	if !ok {
		return nil, util.NewDataFormatError(cmdXDSLInfo, keyModemState)
	}
	xdslType, ok := kv[keyXDSLType]
	if !ok {
		return nil, util.NewDataFormatError(cmdXDSLInfo, keyXDSLType)
	}
	uptime, err := parseUptime(kv[keyUptime])
	if err != nil {
		return nil, util.NewDataFormatError(cmdXDSLInfo, keyUptime)
	}
	down, up, err := parseBandwidth(kv[keyBandwidth])
	if err != nil {
		return nil, util.NewDataFormatError(cmdXDSLInfo, keyBandwidth)
	}

	return map[string]Metrics{
		"xdsl-info": {
			"state":          state,
			"uptime":         uptime,
			"type":           xdslType,
			"bandwidth-down": down,
			"bandwidth-up":   up,
		},
	}, nil
}

// IfListInfo queries per-interface traffic counters. The device prints a
// dot-padded table; column 3 is the interface name, columns 5 and 6 the
// transmitted and received byte counters.
func (p *TG585v8) IfListInfo(s *session.Session) (map[string]Metrics, error) {
	if err := s.ResetLevel(); err != nil {
		return nil, err
	}
	out, err := s.Send(cmdIfList)
	if err != nil {
		return nil, err
	}

	info := Metrics{}
	lines := strings.Split(out, "\n")
	if len(lines) > 0 {
		lines = lines[1:] // header line
	}
	for _, line := range lines {
		tokens := parse.Columns(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) < 6 {
			return nil, util.NewDataFormatError(cmdIfList, "interface row")
		}
		tx, err := strconv.ParseInt(tokens[4], 10, 64)
		if err != nil {
			return nil, util.NewDataFormatError(cmdIfList, "tx")
		}
		rx, err := strconv.ParseInt(tokens[5], 10, 64)
		if err != nil {
			return nil, util.NewDataFormatError(cmdIfList, "rx")
		}
		info[tokens[2]] = Metrics{"tx": tx, "rx": rx}
	}

	return map[string]Metrics{"iflist": info}, nil
}

// AllInfo runs every query and merges the groups. Group names are unique
// by construction, so later groups only overwrite on an exact collision.
func (p *TG585v8) AllInfo(s *session.Session) (map[string]Metrics, error) {
	all := make(map[string]Metrics)
	queries := []func(*session.Session) (map[string]Metrics, error){
		p.XDSLInfo,
		p.IfListInfo,
	}
	for _, q := range queries {
		groups, err := q(s)
		if err != nil {
			return nil, err
		}
		for name, m := range groups {
			all[name] = m
		}
	}
	return all, nil
}

// parseUptime converts the device's "D, hh:mm:ss" uptime text to whole
// seconds, e.g. "5, 03:20:10" -> 5*86400 + 3*3600 + 20*60 + 10.
func parseUptime(s string) (int64, error) {
	dayPart, hmsPart, ok := strings.Cut(s, ",")
	if !ok {
		return 0, fmt.Errorf("uptime %q: no day/time separator", s)
	}
	dayFields := strings.Fields(dayPart)
	if len(dayFields) == 0 {
		return 0, fmt.Errorf("uptime %q: empty day count", s)
	}
	days, err := strconv.ParseInt(dayFields[0], 10, 64)
	if err != nil {
		return 0, err
	}

	hms := strings.Split(strings.TrimSpace(hmsPart), ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("uptime %q: want hh:mm:ss", s)
	}
	var parts [3]int64
	for i, f := range hms {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, err
		}
		parts[i] = v
	}

	return days*86400 + parts[0]*3600 + parts[1]*60 + parts[2], nil
}

// parseBandwidth converts "down/up" in kbit/s to bytes per second for each
// direction, truncating: kbit/s * 1000 / 8.
func parseBandwidth(s string) (down, up int64, err error) {
	downPart, upPart, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("bandwidth %q: no down/up separator", s)
	}
	d, err := strconv.ParseInt(strings.TrimSpace(downPart), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	u, err := strconv.ParseInt(strings.TrimSpace(upPart), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return d * 1000 / 8, u * 1000 / 8, nil
}
