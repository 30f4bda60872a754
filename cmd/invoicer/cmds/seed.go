package cmds

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"invoicer/internal/types"

	"github.com/goccy/go-yaml"
)

//go:embed sample_clients.yml
var sampleClients []byte

type seedFile struct {
	Clients []types.ClientInput `yaml:"clients"`
}

// ParseSeed decodes a YAML client fixture.
func ParseSeed(b []byte) ([]types.ClientInput, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "seed fixture")
	}
	return f.Clients, nil
}

// LoadSeed reads the fixture at path, or the built-in sample clients when path is empty.
func LoadSeed(path string) ([]types.ClientInput, error) {
	if path == "" {
		return ParseSeed(sampleClients)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(b)
}

func (a *App) runSeed(ctx context.Context, args []string) error {
	fs := newFlagSet("seed", a.Out)
	file := fs.String("file", "", "YAML fixture, the built-in sample clients when omitted")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	seed, err := LoadSeed(*file)
	if err != nil {
		return err
	}
	n, err := a.Clients.SeedIfEmpty(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%d sample client(s) added\n", n)
	return nil
}
