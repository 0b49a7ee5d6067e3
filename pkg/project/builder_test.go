package project

import (
	"strings"
	"testing"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveSet = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton MajorVersion="5" MinorVersion="11.0_433" Creator="Ableton Live 11.3">
<LiveSet>
	<Tracks>
		<MidiTrack Id="12">
			<Name><EffectiveName Value="Lead"/></Name>
			<Color Value="13"/>
			<TrackGroupId Value="30"/>
			<AutomationEnvelopes><Envelopes>
				<AutomationEnvelope Id="0">
					<EnvelopeTarget><PointeeId Value="9001"/></EnvelopeTarget>
					<Automation><Events>
						<FloatEvent Id="1" Time="1" Value="1"/>
						<FloatEvent Id="0" Time="0" Value="0"/>
					</Events></Automation>
				</AutomationEnvelope>
				<AutomationEnvelope Id="1">
					<EnvelopeTarget><PointeeId Value="4242"/></EnvelopeTarget>
					<Automation><Events><FloatEvent Time="0" Value="0.3"/></Events></Automation>
				</AutomationEnvelope>
				<AutomationEnvelope Id="2">
					<EnvelopeTarget><PointeeId Value="9003"/></EnvelopeTarget>
					<Automation><Events>
						<BoolEvent Time="0" Value="false"/>
						<BoolEvent Time="1" Value="true"/>
					</Events></Automation>
				</AutomationEnvelope>
				<AutomationEnvelope Id="3">
					<EnvelopeTarget><PointeeId Value="9005"/></EnvelopeTarget>
					<Automation><Events><FloatEvent Time="-2" Value="0.5"/></Events></Automation>
				</AutomationEnvelope>
			</Envelopes></AutomationEnvelopes>
			<DeviceChain>
				<Mixer Id="5">
					<Volume><Manual Value="0.7"/><AutomationTarget Id="9002"/></Volume>
					<Pan><Manual Value="-0.25"/><AutomationTarget Id="9004"/></Pan>
				</Mixer>
				<MainSequencer>
					<MidiControllers/>
					<ClipTimeable><ArrangerAutomation><Events>
						<MidiClip Id="0" Time="0">
							<CurrentStart Value="0"/>
							<CurrentEnd Value="1"/>
							<Name Value="Intro"/>
							<Color Value="1"/>
							<Disabled Value="false"/>
							<Notes>
								<KeyTracks>
									<KeyTrack Id="0">
										<Notes>
											<MidiNoteEvent Time="0" Duration="0.25" Velocity="80" OffVelocity="64" IsEnabled="true" NoteId="1"/>
											<MidiNoteEvent Time="0.25" Duration="0" Velocity="100" NoteId="2"/>
										</Notes>
										<MidiKey Value="60"/>
									</KeyTrack>
								</KeyTracks>
								<PerNoteEventStore><EventLists>
									<PerNoteEventList NoteId="1" CC="-2"><Events>
										<PerNoteEvent TimeOffset="0" Value="0"/>
										<PerNoteEvent TimeOffset="0.125" Value="170"/>
									</Events></PerNoteEventList>
									<PerNoteEventList NoteId="1" CC="74"><Events>
										<PerNoteEvent TimeOffset="0" Value="10"/>
									</Events></PerNoteEventList>
								</EventLists></PerNoteEventStore>
							</Notes>
						</MidiClip>
						<MidiClip Id="1" Time="4">
							<CurrentStart Value="4"/>
							<CurrentEnd Value="6"/>
							<Name Value="Loop"/>
							<Loop>
								<LoopStart Value="0"/>
								<LoopEnd Value="1"/>
								<StartRelative Value="0"/>
								<LoopOn Value="true"/>
							</Loop>
							<Notes><KeyTracks><KeyTrack Id="0">
								<Notes><MidiNoteEvent Time="0" Duration="0.5" Velocity="127" NoteId="1"/></Notes>
								<MidiKey Value="64"/>
							</KeyTrack></KeyTracks></Notes>
						</MidiClip>
						<MidiClip Id="2" Time="8">
							<CurrentStart Value="8"/>
							<CurrentEnd Value="9"/>
							<Notes/>
						</MidiClip>
					</Events></ArrangerAutomation></ClipTimeable>
				</MainSequencer>
				<DeviceChain><Devices>
					<Eq8 Id="3">
						<On><Manual Value="true"/><AutomationTarget Id="9000"/></On>
						<Bands.0>
							<ParameterA>
								<IsOn><Manual Value="true"/></IsOn>
								<Mode><Manual Value="3"/></Mode>
								<Gain><Manual Value="2.5"/><AutomationTarget Id="9001"/></Gain>
							</ParameterA>
						</Bands.0>
					</Eq8>
					<AudioEffectGroupDevice Id="4">
						<On><Manual Value="true"/><AutomationTarget Id="9010"/></On>
						<Branches><AudioEffectBranch><DeviceChain><AudioToAudioDeviceChain><Devices>
							<Limiter Id="0">
								<On><Manual Value="true"/><AutomationTarget Id="9003"/></On>
								<Gain><Manual Value="0"/></Gain>
								<Ceiling><Manual Value="-0.3"/></Ceiling>
								<Release><Manual Value="300"/></Release>
								<AutoRelease><Manual Value="true"/></AutoRelease>
								<LinkChannels><Manual Value="true"/></LinkChannels>
								<Lookahead><Manual Value="1"/></Lookahead>
							</Limiter>
						</Devices></AudioToAudioDeviceChain></DeviceChain></AudioEffectBranch></Branches>
					</AudioEffectGroupDevice>
					<PluginDevice Id="6">
						<PluginDesc><VstPluginInfo Id="0">
							<PlugName Value="Serum"/>
							<Preset><VstPreset Id="7"><Buffer>
								CAFE
								01
							</Buffer></VstPreset></Preset>
						</VstPluginInfo></PluginDesc>
						<ParameterList>
							<PluginFloatParameter Id="0">
								<ParameterName Value="Cutoff Freq"/>
								<ParameterValue><Manual Value="0.5"/><AutomationTarget Id="9005"/></ParameterValue>
							</PluginFloatParameter>
						</ParameterList>
					</PluginDevice>
					<Reverb Id="8">
						<On><Manual Value="false"/><AutomationTarget Id="9006"/></On>
					</Reverb>
					<Chorus2 Id="9"/>
				</Devices></DeviceChain>
			</DeviceChain>
		</MidiTrack>
		<AudioTrack Id="40">
			<Name><EffectiveName Value="Drums"/></Name>
			<DeviceChain>
				<MainSequencer>
					<Sample/>
					<ClipTimeable><ArrangerAutomation><Events>
						<AudioClip Id="0">
							<SampleRef><FileRef><RelativePath Value="Samples/kick.wav"/></FileRef></SampleRef>
						</AudioClip>
						<AudioClip Id="1">
							<SampleRef><FileRef><RelativePath Value="Samples/kick.wav"/></FileRef></SampleRef>
						</AudioClip>
						<AudioClip Id="2">
							<FreezeStart Value="1"/>
							<FreezeEnd Value="2"/>
							<SampleRef><FileRef><RelativePath Value="Freeze/frozen.wav"/></FileRef></SampleRef>
						</AudioClip>
					</Events></ArrangerAutomation></ClipTimeable>
				</MainSequencer>
			</DeviceChain>
		</AudioTrack>
		<GroupTrack Id="30">
			<Name><EffectiveName Value="Bus"/></Name>
			<TrackUnfolded Value="true"/>
			<TrackDelay><Value Value="0"/></TrackDelay>
		</GroupTrack>
		<ReturnTrack Id="20">
			<Name><EffectiveName Value="Reverb"/></Name>
			<TrackUnfolded Value="false"/>
			<TrackDelay><Value Value="0"/></TrackDelay>
		</ReturnTrack>
		<MidiTrack Id="50"/>
	</Tracks>
	<MasterTrack>
		<AutomationEnvelopes><Envelopes>
			<AutomationEnvelope Id="0">
				<EnvelopeTarget><PointeeId Value="8000"/></EnvelopeTarget>
				<Automation><Events><FloatEvent Time="0" Value="128"/></Events></Automation>
			</AutomationEnvelope>
		</Envelopes></AutomationEnvelopes>
		<DeviceChain>
			<Mixer Id="1">
				<Tempo><Manual Value="128"/><AutomationTarget Id="8000"/></Tempo>
				<Volume><Manual Value="1"/></Volume>
			</Mixer>
		</DeviceChain>
	</MasterTrack>
</LiveSet>
</Ableton>`

type presetRecorder []ipd.PluginPreset

func (p *presetRecorder) Preset(preset ipd.PluginPreset) {
	*p = append(*p, preset)
}

func buildFixture(t *testing.T, opts Options) *ipd.Document {
	t.Helper()
	root, err := tree.Decode(strings.NewReader(liveSet))
	require.NoError(t, err)
	doc, err := Build(root, opts)
	require.NoError(t, err)
	return doc
}

func TestBuildTracks(t *testing.T) {
	doc := buildFixture(t, Options{})

	assert.Equal(t, "Ableton Live 11.3", doc.Version)
	assert.Equal(t, 128.0, doc.TempoBPM)
	assert.Equal(t, ipd.Track{ID: "master_1", Name: "Master", Color: white, Vol: 1}, doc.Master)

	want := []ipd.Track{
		{ID: "midi_12", Kind: ipd.KindNote, Name: "Lead", Color: ipd.Color{1, 1, 1}, Vol: 0.7, Pan: -0.25, GroupParent: "group_30"},
		{ID: "audio_40", Kind: ipd.KindAudio, Name: "Drums", Color: grey, Vol: defaultVolume},
		{ID: "group_30", Kind: ipd.KindGroup, Name: "Bus", Color: grey, Vol: defaultVolume},
		{ID: "return_1", Kind: ipd.KindReturn, Name: "Reverb", Color: grey, Vol: defaultVolume},
	}
	if diff := cmp.Diff(want, doc.Tracks); diff != "" {
		t.Errorf("tracks mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"Samples/kick.wav"}, doc.AudioFiles)
}

func TestBuildPlacements(t *testing.T) {
	doc := buildFixture(t, Options{})

	lead := ipd.Note{
		ID: 1, Key: 60, DurationBeat: 1, Velocity: 0.8, OffVelocity: 0.64, Probability: 1, Enabled: true,
		PitchBend: []ipd.PitchPoint{{Beat: 0, Value: 0}, {Beat: 0.5, Value: 1}},
	}
	loop := ipd.Note{ID: 1, Key: 64, DurationBeat: 2, Velocity: 1.27, OffVelocity: 0.64, Probability: 1, Enabled: true}

	want := []ipd.Placement{
		{StartBeat: 0, DurationBeat: 4, Name: "Intro", Color: hexToRGB("FFA529"), Notes: []ipd.Note{lead}},
		{StartBeat: 16, DurationBeat: 4, Name: "Loop", Color: ipd.Color{1, 1, 1}, Notes: []ipd.Note{loop}},
		{StartBeat: 20, DurationBeat: 4, Name: "Loop", Color: ipd.Color{1, 1, 1}, Notes: []ipd.Note{loop}},
	}
	if diff := cmp.Diff(want, doc.Placements["midi_12"], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, doc.Placements, 1)
}

func TestBuildAutomation(t *testing.T) {
	doc := buildFixture(t, Options{})

	require.Len(t, doc.Automation.Groups, 2)

	master := doc.Automation.Groups[0]
	assert.Equal(t, []string{"master", "master_1"}, master.Location)
	assert.Equal(t, "Master", master.TrackName)
	require.Len(t, master.Params, 1)
	assert.Equal(t, "Mixer_Tempo", master.Params[0].Path)

	track, ok := doc.Automation.Lookup([]string{"track", "midi_12"}, "Lead")
	require.True(t, ok)

	var paths []string
	for _, p := range track.Params {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"Eq8_Bands0_ParameterA_Gain", "Limiter_On", "Serum_Cutoff_Freq"}, paths)

	gain, _ := track.Lookup("Eq8_Bands0_ParameterA_Gain")
	assert.Equal(t, ipd.ValueFloat, gain.Kind)
	assert.Equal(t, []ipd.PointList{{Points: []ipd.Breakpoint{{Tick: 0, Value: 0}, {Tick: 30, Value: 1}}}}, gain.PointLists)

	on, _ := track.Lookup("Limiter_On")
	assert.Equal(t, ipd.ValueBool, on.Kind)

	cutoff, _ := track.Lookup("Serum_Cutoff_Freq")
	assert.Equal(t, []ipd.Breakpoint{{Tick: 0, Value: 0.5}}, cutoff.PointLists[0].Points)

	assert.Equal(t, 4, doc.Automation.Len())
}

func TestBuildUnresolvedEnvelope(t *testing.T) {
	doc := buildFixture(t, Options{})

	for _, g := range doc.Automation.Groups {
		for _, p := range g.Params {
			for _, l := range p.PointLists {
				for _, pt := range l.Points {
					assert.NotEqual(t, 0.3, pt.Value, "envelope 4242 has no target and must not be bound")
				}
			}
		}
	}
}

func TestBuildDevices(t *testing.T) {
	doc := buildFixture(t, Options{})

	require.Len(t, doc.Devices, 2)

	eq := doc.Devices[0]
	assert.Equal(t, "Eq8", eq.Type)
	assert.Equal(t, 1, eq.Level)
	assert.Equal(t, 1, eq.Index)
	assert.Equal(t, "3", eq.DeviceID)
	assert.True(t, eq.Modified)
	assert.Equal(t, 2.5, eq.Params["Band1A_Gain"])

	limiter := doc.Devices[1]
	assert.Equal(t, "Limiter", limiter.Type)
	assert.Equal(t, 2, limiter.Level)
	assert.False(t, limiter.Modified)
	assert.Equal(t, "midi_12", limiter.TrackID)

	require.Len(t, doc.Presets, 1)
	assert.Equal(t, ipd.PluginPreset{
		TrackID: "midi_12", TrackName: "Lead", Level: 1, Index: 3,
		Host: "vst", Plugin: "Serum", PresetID: "7", Payload: []byte{0xca, 0xfe, 0x01},
	}, doc.Presets[0])
}

func TestBuildPresetSink(t *testing.T) {
	var rec presetRecorder
	doc := buildFixture(t, Options{Presets: &rec})

	assert.Empty(t, doc.Presets)
	require.Len(t, rec, 1)
	assert.Equal(t, "Serum", rec[0].Plugin)
}

func TestBuildMalformed(t *testing.T) {
	_, err := Build(tree.New("Ableton"), Options{})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Build(nil, Options{})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBuildDefaults(t *testing.T) {
	doc, err := Build(tree.New("LiveSet"), Options{})
	require.NoError(t, err)

	assert.Equal(t, defaultTempo, doc.TempoBPM)
	assert.Equal(t, "Master", doc.Master.Name)
	assert.Equal(t, defaultVolume, doc.Master.Vol)
	assert.Empty(t, doc.Tracks)
	assert.Zero(t, doc.Automation.Len())
}

func TestBuildIndependentRuns(t *testing.T) {
	a := buildFixture(t, Options{})
	b := buildFixture(t, Options{})

	assert.Equal(t, a.Automation.Len(), b.Automation.Len())
	assert.Equal(t, len(a.Devices), len(b.Devices))
}

const forwardSet = `<Ableton Creator="Ableton Live 11.3"><LiveSet>
	<Tracks>
		<MidiTrack Id="1">
			<Name><EffectiveName Value="A"/></Name>
			<AutomationEnvelopes><Envelopes>
				<AutomationEnvelope Id="0">
					<EnvelopeTarget><PointeeId Value="777"/></EnvelopeTarget>
					<Automation><Events>
						<FloatEvent Time="0" Value="0"/>
						<FloatEvent Time="2" Value="4"/>
					</Events></Automation>
				</AutomationEnvelope>
			</Envelopes></AutomationEnvelopes>
			<DeviceChain><MainSequencer><MidiControllers/></MainSequencer></DeviceChain>
		</MidiTrack>
		<MidiTrack Id="2">
			<Name><EffectiveName Value="B"/></Name>
			<DeviceChain>
				<Mixer Id="3">
					<Volume><Manual Value="0.5"/><AutomationTarget Id="778"/></Volume>
				</Mixer>
				<MainSequencer><MidiControllers/></MainSequencer>
				<DeviceChain><Devices>
					<Eq8 Id="4">
						<Bands.0><ParameterA>
							<Gain><Manual Value="0"/><AutomationTarget Id="777"/></Gain>
						</ParameterA></Bands.0>
					</Eq8>
				</Devices></DeviceChain>
			</DeviceChain>
		</MidiTrack>
	</Tracks>
	<MasterTrack>
		<AutomationEnvelopes><Envelopes>
			<AutomationEnvelope Id="0">
				<EnvelopeTarget><PointeeId Value="778"/></EnvelopeTarget>
				<Automation><Events><FloatEvent Time="1" Value="0.25"/></Events></Automation>
			</AutomationEnvelope>
		</Envelopes></AutomationEnvelopes>
		<DeviceChain><Mixer Id="1"><Tempo><Manual Value="120"/></Tempo></Mixer></DeviceChain>
	</MasterTrack>
</LiveSet></Ableton>`

// Envelopes may point at targets that are only registered later in the walk.
func TestBuildForwardReference(t *testing.T) {
	root, err := tree.Decode(strings.NewReader(forwardSet))
	require.NoError(t, err)
	doc, err := Build(root, Options{})
	require.NoError(t, err)

	_, ok := doc.Automation.Lookup([]string{"track", "midi_1"}, "A")
	assert.False(t, ok)

	g, ok := doc.Automation.Lookup([]string{"track", "midi_2"}, "B")
	require.True(t, ok)

	gain, ok := g.Lookup("Eq8_Bands0_ParameterA_Gain")
	require.True(t, ok)
	assert.Equal(t, []ipd.PointList{{Points: []ipd.Breakpoint{{Tick: 0, Value: 0}, {Tick: 60, Value: 4}}}}, gain.PointLists)

	vol, ok := g.Lookup("Mixer_Volume")
	require.True(t, ok)
	assert.Equal(t, []ipd.PointList{{Points: []ipd.Breakpoint{{Tick: 30, Value: 0.25}}}}, vol.PointLists)

	assert.Equal(t, 2, doc.Automation.Len())
}

func TestBuildInfiniteTempo(t *testing.T) {
	set := strings.Replace(forwardSet, `<Tempo><Manual Value="120"/>`, `<Tempo><Manual Value="Inf"/>`, 1)
	root, err := tree.Decode(strings.NewReader(set))
	require.NoError(t, err)
	doc, err := Build(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, defaultTempo, doc.TempoBPM)
}
