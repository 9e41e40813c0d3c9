package domain

// Mode is the retrieval strategy selected for a single request. It is derived
// once per request and never carried across turns.
type Mode string

const (
	ModePlain     Mode = "PLAIN"
	ModeLocalOnly Mode = "LOCAL_ONLY"
	ModeWebOnly   Mode = "WEB_ONLY"
	ModeHybrid    Mode = "HYBRID"
)

// SelectMode classifies a request by which information sources it will consult.
// Pure function of the two inputs.
func SelectMode(webRequested, localAvailable bool) Mode {
	switch {
	case webRequested && localAvailable:
		return ModeHybrid
	case webRequested:
		return ModeWebOnly
	case localAvailable:
		return ModeLocalOnly
	default:
		return ModePlain
	}
}
