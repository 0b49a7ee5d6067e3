package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/midi"
	"github.com/Garik-/alsmidi/pkg/project"
	"github.com/Garik-/alsmidi/pkg/tree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type result struct {
	name    string
	tracks  int
	params  int
	presets int
	files   []string
	err     error
}

// fileName keeps bundle names usable as file names on every platform.
func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func outDir(cfg config, path string) string {
	if cfg.OutDir != "" {
		return cfg.OutDir
	}
	return filepath.Dir(path)
}

// presetFiles writes hosted plugin presets next to the MIDI files.
type presetFiles struct {
	dir   string
	base  string
	files []string
	err   error
}

func (p *presetFiles) Preset(preset ipd.PluginPreset) {
	if p.err != nil || len(preset.Payload) == 0 {
		return
	}
	name := fmt.Sprintf("%s_%s_%d_%d_%s.%s", p.base, preset.TrackName, preset.Level, preset.Index, preset.Plugin, preset.Host)
	path := filepath.Join(p.dir, fileName(name))
	if err := os.WriteFile(path, preset.Payload, 0o644); err != nil {
		p.err = errors.Wrapf(err, "write preset %s", path)
		return
	}
	p.files = append(p.files, path)
}

func convertFile(path string, cfg config) *result {
	out := &result{name: path}
	log := convertLog.With(zap.String("file", path))

	root, err := tree.Open(path)
	if err != nil {
		out.err = err
		return out
	}

	dir := outDir(cfg, path)
	base := baseName(path)

	opts := project.Options{Logger: log}
	var presets *presetFiles
	if cfg.Presets {
		presets = &presetFiles{dir: dir, base: base}
		opts.Presets = presets
	}

	doc, err := project.Build(root, opts)
	if err != nil {
		out.err = errors.Wrapf(err, "build %s", path)
		return out
	}
	out.tracks = len(doc.Tracks)
	out.params = doc.Automation.Len()
	out.presets = len(doc.Presets)

	if presets != nil {
		out.presets = len(presets.files)
		out.files = append(out.files, presets.files...)
		if presets.err != nil {
			out.err = presets.err
			return out
		}
	}

	encOpts := cfg.options(base)
	encOpts.Logger = log

	var bundles []*midi.Bundle
	if cfg.Notes {
		if b, ok := midi.EncodeNotes(doc, encOpts); ok {
			bundles = append(bundles, b)
		}
	}
	if cfg.Automation {
		bundles = append(bundles, midi.EncodeAutomation(doc, encOpts)...)
	}
	if len(bundles) == 0 {
		log.Info("nothing to convert")
		return out
	}

	for _, b := range bundles {
		files, err := writeBundle(dir, b, cfg)
		out.files = append(out.files, files...)
		if err != nil {
			out.err = err
			return out
		}
	}
	return out
}

func writeBundle(dir string, b *midi.Bundle, cfg config) ([]string, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}

	name := filepath.Join(dir, fileName(b.Name)+".mid")
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "write %s", name)
	}
	files := []string{name}

	if cfg.Check {
		if err := checkBundle(b, buf.Bytes()); err != nil {
			return files, errors.Wrapf(err, "check %s", name)
		}
	}

	if cfg.Dump {
		dump := filepath.Join(dir, fileName(b.Name)+".txt")
		f, err := os.Create(dump)
		if err != nil {
			return files, errors.Wrapf(err, "create %s", dump)
		}
		err = b.Dump(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return files, errors.Wrapf(err, "dump %s", dump)
		}
		files = append(files, dump)
	}
	return files, nil
}

// checkBundle decodes the written bytes and compares them with what was encoded.
func checkBundle(b *midi.Bundle, data []byte) error {
	got, err := midi.ReadBundle(bytes.NewReader(data), b.Name)
	if err != nil {
		return err
	}
	if got.TicksPerQuarterNote != b.TicksPerQuarterNote {
		return errors.Errorf("division %d, want %d", got.TicksPerQuarterNote, b.TicksPerQuarterNote)
	}
	if len(got.Streams) != len(b.Streams) {
		return errors.Errorf("%d tracks, want %d", len(got.Streams), len(b.Streams))
	}
	for i, s := range b.Streams {
		if n := len(got.Streams[i].Events); n != len(s.Events) {
			return errors.Errorf("track %d %q: %d events, want %d", i, s.Name, n, len(s.Events))
		}
	}
	return nil
}
