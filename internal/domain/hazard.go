package domain

import "fmt"

// Hazard identifies one of the three severe report datasets.
type Hazard int

const (
	HazardTornado Hazard = iota
	HazardWind
	HazardHail
)

func (h Hazard) String() string {
	switch h {
	case HazardTornado:
		return "tornado"
	case HazardWind:
		return "wind"
	case HazardHail:
		return "hail"
	default:
		return fmt.Sprintf("hazard(%d)", int(h))
	}
}

// ParseHazard accepts the singular and plural spellings used in file names and URLs.
func ParseHazard(s string) (Hazard, error) {
	switch s {
	case "tornado", "tornadoes", "torn":
		return HazardTornado, nil
	case "wind":
		return HazardWind, nil
	case "hail":
		return HazardHail, nil
	default:
		return 0, fmt.Errorf("unknown hazard %q", s)
	}
}

// Canonical attribute names. These match the SPC database column names so a
// record can be written back out in the shape it was read.
const (
	AttrEventID    = "om"
	AttrTime       = "datetime"
	AttrState      = "st"
	AttrStateFIPS  = "stf"
	AttrStateSeq   = "stn"
	AttrMagnitude  = "mag"
	AttrInjuries   = "inj"
	AttrFatalities = "fat"
	AttrLoss       = "loss"
	AttrCropLoss   = "closs"
	AttrStartLat   = "slat"
	AttrStartLon   = "slon"
	AttrEndLat     = "elat"
	AttrEndLon     = "elon"
	AttrLength     = "len"
	AttrWidth      = "wid"
	AttrNumStates  = "ns"
	AttrStateNum   = "sn"
	AttrSegmentNum = "sg"
	AttrCounties   = "cty_fips"
	AttrFScaleMod  = "fc"
	AttrMagType    = "mt"
)

var tornadoAliases = map[string]string{
	"state":      AttrState,
	"magnitude":  AttrMagnitude,
	"fatalities": AttrFatalities,
	"injuries":   AttrInjuries,
	"length":     AttrLength,
	"width":      AttrWidth,
	"start_lat":  AttrStartLat,
	"end_lat":    AttrEndLat,
	"start_lon":  AttrStartLon,
	"end_lon":    AttrEndLon,
	"counties":   AttrCounties,
	"time":       AttrTime,
}

var reportAliases = map[string]string{
	"state":      AttrState,
	"magnitude":  AttrMagnitude,
	"fatalities": AttrFatalities,
	"injuries":   AttrInjuries,
	"lat":        AttrStartLat,
	"lon":        AttrStartLon,
	"counties":   AttrCounties,
	"time":       AttrTime,
}

// Resolve maps a public attribute name to the canonical field name for the
// hazard's record kind. Names that are not aliases are returned unchanged.
func (h Hazard) Resolve(name string) string {
	aliases := reportAliases
	if h == HazardTornado {
		aliases = tornadoAliases
	}
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// HasAttribute reports whether name resolves to an attribute of the hazard's
// records.
func (h Hazard) HasAttribute(name string) bool {
	canonical := h.Resolve(name)
	switch h {
	case HazardTornado:
		_, ok := segmentFields[canonical]
		return ok
	case HazardWind:
		if canonical == AttrMagType {
			return true
		}
		_, ok := reportFields[canonical]
		return ok
	default:
		_, ok := reportFields[canonical]
		return ok
	}
}
