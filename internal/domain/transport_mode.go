package domain

import (
	"fmt"
	"strings"
)

// TransportMode - вид транспорта в терминах TRIAS PtMode
type TransportMode string

const (
	ModeTram       TransportMode = "tram"
	ModeBus        TransportMode = "bus"
	ModeTrolleybus TransportMode = "trolleybus"
	ModeUrbanRail  TransportMode = "urbanRail"
	ModeRail       TransportMode = "rail"
	ModeCableway   TransportMode = "cableway"
	ModeWater      TransportMode = "water"
	ModeTaxi       TransportMode = "taxi"
)

// AllModes returns the modes in display order.
func AllModes() []TransportMode {
	return []TransportMode{
		ModeTram,
		ModeBus,
		ModeTrolleybus,
		ModeUrbanRail,
		ModeRail,
		ModeCableway,
		ModeWater,
		ModeTaxi,
	}
}

var modeIcons = map[TransportMode]string{
	ModeTram:       "🚊",
	ModeBus:        "🚌",
	ModeTrolleybus: "🚎",
	ModeUrbanRail:  "🚈",
	ModeRail:       "🚆",
	ModeCableway:   "🚡",
	ModeWater:      "⛴️",
	ModeTaxi:       "🚕",
}

// Icon returns the emoji used in titles and live activities.
func (m TransportMode) Icon() string {
	if icon, ok := modeIcons[m]; ok {
		return icon
	}
	return "🚏"
}

func (m TransportMode) Valid() bool {
	_, ok := modeIcons[m]
	return ok
}

// ParseTransportMode accepts the TRIAS spelling in any case, plus the
// "trolleyBus" variant some EFA versions emit.
func ParseTransportMode(s string) (TransportMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, m := range AllModes() {
		if strings.ToLower(string(m)) == key {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransportMode, s)
}

// ModeFromProductClass maps EFA product classes of the rapidJSON payload.
func ModeFromProductClass(class int) TransportMode {
	switch class {
	case 0, 13, 14, 15, 16:
		return ModeRail
	case 1:
		return ModeUrbanRail
	case 2, 3, 4:
		return ModeTram
	case 5, 6, 7, 11:
		return ModeBus
	case 8:
		return ModeCableway
	case 9:
		return ModeWater
	case 10:
		return ModeTaxi
	default:
		return ModeBus
	}
}
