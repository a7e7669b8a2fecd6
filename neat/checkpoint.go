package neat

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// populationSaveData holds the parts of a Population worth persisting. The
// Config is not saved; it is supplied again on load so tuning can change
// between sessions. The innovation tracker is saved in full so markers issued
// after a resume never collide with markers already in the genomes.
type populationSaveData struct {
	Species        []*Species
	Generation     int
	CurrentSpecies int
	CurrentGenome  int
	BestGenome     *Genome
	Innovations    *InnovationTracker
	NumInputs      int
	NumOutputs     int
	PopulationSize int
	NextGenomeKey  int
	NextSpeciesKey int
}

// SaveFileName returns the checkpoint path for a run name under the
// configured save directory.
func (p *Population) SaveFileName(name string) string {
	return filepath.Join(p.Config.Neat.SaveDirectory, name+".neat")
}

// Save writes the full evolution state to a gzip-compressed gob file named
// after the run, under the configured save directory.
func (p *Population) Save(name string) error {
	return p.SaveTo(p.SaveFileName(name))
}

// SaveTo writes the full evolution state to an explicit path. An existing
// file is replaced.
func (p *Population) SaveTo(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create save file %q: %w", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	data := populationSaveData{
		Species:        p.Species,
		Generation:     p.Generation,
		CurrentSpecies: p.CurrentSpecies,
		CurrentGenome:  p.CurrentGenome,
		BestGenome:     p.BestGenome,
		Innovations:    p.Innovations,
		NumInputs:      p.NumInputs,
		NumOutputs:     p.NumOutputs,
		PopulationSize: p.PopulationSize,
		NextGenomeKey:  p.NextGenomeKey,
		NextSpeciesKey: p.NextSpeciesKey,
	}

	if err := gob.NewEncoder(gz).Encode(data); err != nil {
		return fmt.Errorf("failed to encode save data: %w", err)
	}
	return nil
}

// Load restores a saved run. The configuration is re-linked into every
// genome because gob does not follow the shared config pointer. A missing
// file surfaces the underlying fs.ErrNotExist so callers can start a fresh
// run; a present but unreadable file surfaces ErrCorruptSaveData.
func Load(name string, cfg *Config) (*Population, error) {
	p, err := NewPopulation(cfg)
	if err != nil {
		return nil, err
	}

	path := p.SaveFileName(name)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open checkpoint %q: %w", path, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a gzip stream: %v", ErrCorruptSaveData, path, err)
	}
	defer gz.Close()

	var data populationSaveData
	if err := gob.NewDecoder(gz).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %q: %v", ErrCorruptSaveData, path, err)
	}
	if data.Innovations == nil || len(data.Species) == 0 {
		return nil, fmt.Errorf("%w: %q holds no population", ErrCorruptSaveData, path)
	}

	p.Species = data.Species
	p.Generation = data.Generation
	p.CurrentSpecies = data.CurrentSpecies
	p.CurrentGenome = data.CurrentGenome
	p.BestGenome = data.BestGenome
	p.Innovations = data.Innovations
	p.NumInputs = data.NumInputs
	p.NumOutputs = data.NumOutputs
	p.PopulationSize = data.PopulationSize
	p.NextGenomeKey = data.NextGenomeKey
	p.NextSpeciesKey = data.NextSpeciesKey

	for _, sp := range p.Species {
		if sp.Representative != nil {
			relinkGenome(sp.Representative, &p.Config.Genome)
		}
		for _, g := range sp.Members {
			relinkGenome(g, &p.Config.Genome)
		}
	}
	if p.BestGenome != nil {
		relinkGenome(p.BestGenome, &p.Config.Genome)
	}

	p.logger.Info("save file loaded", "path", path, "generation", p.Generation)
	return p, nil
}

func relinkGenome(g *Genome, cfg *GenomeConfig) {
	g.Config = cfg
	g.computeDepths()
}

// encodeGenomePayload serializes a single genome, gzip over gob, for the run
// archive's champion column.
func encodeGenomePayload(g *Genome) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(g); err != nil {
		return nil, fmt.Errorf("failed to encode genome: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGenomePayload restores a genome serialized by the run archive and
// re-links it to the given configuration.
func DecodeGenomePayload(payload []byte, cfg *GenomeConfig) (*Genome, error) {
	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSaveData, err)
	}
	defer gz.Close()

	var g Genome
	if err := gob.NewDecoder(gz).Decode(&g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSaveData, err)
	}
	relinkGenome(&g, cfg)
	return &g, nil
}
