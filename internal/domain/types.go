package domain

import "time"

// Mode selects the advice preset: Normal packs for efficiency, Chaos packs
// for laughs at a higher sampling temperature.
type Mode string

const (
	ModeNormal Mode = "Normal"
	ModeChaos  Mode = "Chaos"
)

// ParseMode maps user input to a Mode, defaulting to Normal.
func ParseMode(s string) Mode {
	if s == string(ModeChaos) {
		return ModeChaos
	}
	return ModeNormal
}

// Advice is one model response: free-text packing instructions and an
// optional annotated image (base64 PNG). The text is opaque model output.
type Advice struct {
	Text     string
	ImageB64 string
}

// HistoryEntry records one completed organize exchange.
type HistoryEntry struct {
	ID           string
	Mode         Mode
	Backend      string
	Advice       string
	FridgeKey    string
	GroceriesKey string
	CreatedAt    time.Time
}
