package project

import (
	"math"
	"strconv"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"go.uber.org/zap"
)

const (
	defaultTempo  = 120.0
	defaultVolume = 0.85
	masterID      = "master_1"
)

// run is the state of one Build call. Nothing in it outlives the call.
type run struct {
	log     *zap.Logger
	doc     *ipd.Document
	targets *Targets
	pending *Pending
	presets PresetSink

	returnID   int
	audioFiles map[string]struct{}
}

func newRun(opts Options) *run {
	log := opts.logger().Named("project")
	r := &run{
		log:        log,
		doc:        ipd.NewDocument(),
		targets:    NewTargets(log.Named("targets")),
		pending:    NewPending(),
		presets:    opts.Presets,
		returnID:   1,
		audioFiles: make(map[string]struct{}),
	}
	if r.presets == nil {
		r.presets = docPresets{doc: r.doc}
	}
	return r
}

func (r *run) walkMaster(live *tree.Node) {
	log := r.log.Named("master")
	master := live.Child("MasterTrack")
	if master == nil {
		master = live.Child("MainTrack")
	}

	r.doc.Master = ipd.Track{
		ID:    masterID,
		Name:  "Master",
		Color: white,
		Vol:   defaultVolume,
	}
	r.doc.TempoBPM = defaultTempo

	if master == nil {
		log.Warn("master track not found, using defaults")
		return
	}

	mixer := master.Path("DeviceChain", "Mixer")
	r.doc.Master.Name = tree.Value(master.Child("Name"), "EffectiveName", "Master")
	r.doc.Master.Color = paletteColor(tree.Int(master, "Color", -1), white)
	r.doc.Master.Vol = tree.ParamFloat(mixer, "Volume", defaultVolume)
	r.doc.Master.Pan = tree.ParamFloat(mixer, "Pan", 0)

	if tempo := tree.ParamFloat(mixer, "Tempo", defaultTempo); tempo > 0 && !math.IsInf(tempo, 1) {
		r.doc.TempoBPM = tempo
	} else {
		log.Warn("invalid tempo, using default", zap.Float64("tempo", tempo))
	}

	sc := scope{TrackName: r.doc.Master.Name, Location: []string{"master", masterID}}
	r.walkDevices(master.Path("DeviceChain", "DeviceChain", "Devices"), sc, 1)
	r.resolveMixer(mixer, sc)
	n := collectEnvelopes(master, r.pending, log)

	log.Debug("master",
		zap.String("name", r.doc.Master.Name),
		zap.Float64("tempo", r.doc.TempoBPM),
		zap.Int("envelopes", n))
}

func (r *run) walkTracks(live *tree.Node) {
	for _, n := range live.Child("Tracks").Elements() {
		r.walkTrack(n)
	}
}

func (r *run) walkTrack(n *tree.Node) {
	rawID := n.Attr("Id", "")
	log := r.log.With(zap.String("tag", n.Tag), zap.String("id", rawID))
	if rawID == "" {
		log.Warn("skip track without id")
		return
	}

	kind := classifyTrack(n)
	if kind == ipd.KindUnknown {
		log.Warn("skip unrecognized track", zap.String("name", trackName(n)))
		return
	}

	mixer := n.Path("DeviceChain", "Mixer")
	track := ipd.Track{
		Kind:  kind,
		Name:  trackName(n),
		Color: paletteColor(tree.Int(n, "Color", -1), grey),
		Vol:   tree.ParamFloat(mixer, "Volume", defaultVolume),
		Pan:   tree.ParamFloat(mixer, "Pan", 0),
	}
	if parent := tree.Value(n, "TrackGroupId", "-1"); parent != "-1" && kind != ipd.KindReturn {
		track.GroupParent = "group_" + parent
	}

	var location string
	switch kind {
	case ipd.KindNote:
		track.ID, location = "midi_"+rawID, "track"
	case ipd.KindAudio:
		track.ID, location = "audio_"+rawID, "track"
	case ipd.KindGroup:
		track.ID, location = "group_"+rawID, "group"
	case ipd.KindReturn:
		track.ID, location = "return_"+strconv.Itoa(r.returnID), "return"
		r.returnID++
	}

	if _, dup := r.doc.Track(track.ID); dup {
		log.Warn("skip duplicate track id", zap.String("track", track.ID))
		return
	}
	r.doc.Tracks = append(r.doc.Tracks, track)

	log = log.With(zap.String("track", track.ID))
	log.Debug("track", zap.Stringer("kind", kind), zap.String("name", track.Name),
		zap.Float64("vol", track.Vol), zap.Float64("pan", track.Pan))

	events := n.Path("DeviceChain", "MainSequencer", "ClipTimeable", "ArrangerAutomation", "Events")
	switch kind {
	case ipd.KindNote:
		if placements := r.midiClips(events, track, log); len(placements) > 0 {
			r.doc.Placements[track.ID] = placements
		}
	case ipd.KindAudio:
		r.audioClips(events)
	}

	sc := scope{TrackID: track.ID, TrackName: track.Name, Location: []string{location, track.ID}}
	r.walkDevices(n.Path("DeviceChain", "DeviceChain", "Devices"), sc, 1)
	r.resolveMixer(mixer, sc)
	collectEnvelopes(n, r.pending, log)
}

// resolveMixer registers the mixer's volume, pan, sends and tempo as a pseudo-device.
func (r *run) resolveMixer(mixer *tree.Node, sc scope) {
	if mixer == nil {
		return
	}
	resolveTargets(mixer, "Mixer", sc, [2]string{"Mixer", mixer.Attr("Id", "0")}, r.targets)
}

// walkDevices handles one device list. Group devices recurse at level+1 with the same scope.
func (r *run) walkDevices(devices *tree.Node, sc scope, level int) {
	for i, d := range devices.Elements() {
		index := i + 1
		log := r.log.With(
			zap.String("track", sc.TrackName),
			zap.String("device", d.Tag),
			zap.Int("level", level),
			zap.Int("index", index))

		if !enabled(d) {
			log.Debug("skip disabled device")
			continue
		}

		details := [2]string{d.Tag, d.Attr("Id", "0")}
		n := resolveTargets(d, targetPrefix(d), sc, details, r.targets)

		switch dev := classifyDevice(d).(type) {
		case NativeDevice:
			r.doc.Devices = append(r.doc.Devices, ipd.DeviceRecord{
				TrackID:   sc.TrackID,
				TrackName: sc.TrackName,
				Level:     level,
				Index:     index,
				Type:      dev.Type,
				DeviceID:  details[1],
				Modified:  dev.Snapshot.Modified(),
				Params:    dev.Snapshot.Params(),
			})
			log.Debug("native device", zap.Bool("modified", dev.Snapshot.Modified()), zap.Int("targets", n))
		case GroupDevice:
			log.Debug("enter group", zap.Int("branches", len(dev.Branches)))
			for _, branch := range dev.Branches {
				r.walkDevices(branch, sc, level+1)
			}
		case PluginDevice:
			if len(dev.Payload) == 0 {
				log.Info("plugin without preset payload", zap.String("plugin", dev.Plugin))
				continue
			}
			r.presets.Preset(ipd.PluginPreset{
				TrackID:   sc.TrackID,
				TrackName: sc.TrackName,
				Level:     level,
				Index:     index,
				Host:      dev.Host,
				Plugin:    dev.Plugin,
				PresetID:  dev.PresetID,
				Payload:   dev.Payload,
			})
			log.Debug("plugin preset", zap.String("plugin", dev.Plugin), zap.Int("bytes", len(dev.Payload)))
		case Unrecognized:
			log.Debug("skip unrecognized device", zap.String("name", dev.Name), zap.Int("targets", n))
		}
	}
}
