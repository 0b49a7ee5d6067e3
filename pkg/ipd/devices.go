package ipd

// DeviceRecord is the parameter snapshot of a recognized native processor.
// Params holds display-ready values keyed by parameter name.
type DeviceRecord struct {
	TrackID   string
	TrackName string
	Level     int
	Index     int
	Type      string
	DeviceID  string
	Modified  bool
	Params    map[string]float64
}

// PluginPreset is the raw preset payload of a hosted plugin, handed to preset codecs.
type PluginPreset struct {
	TrackID   string
	TrackName string
	Level     int
	Index     int
	Host      string
	Plugin    string
	PresetID  string
	Payload   []byte
}
