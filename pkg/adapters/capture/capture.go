package capture

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout written by Save.
type File struct {
	Commands []domain.Envelope `json:"commands"`
}

// Load reads a capture file.
func Load(path string) ([]domain.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	cmds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse capture %s: %w", path, err)
	}
	return cmds, nil
}

// Parse decodes capture content. JSON is valid YAML, so one decoder serves both.
func Parse(data []byte) ([]domain.Command, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var records []any
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		records = v
	case map[string]any:
		list, ok := v["commands"].([]any)
		if !ok {
			return nil, fmt.Errorf("missing commands list")
		}
		records = list
	default:
		return nil, fmt.Errorf("unexpected capture root %T", doc)
	}

	cmds := make([]domain.Command, 0, len(records))
	for i, rec := range records {
		env, err := decodeEnvelope(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		cmds = append(cmds, domain.Decode(env))
	}
	return cmds, nil
}

func decodeEnvelope(rec any) (domain.Envelope, error) {
	var env domain.Envelope
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &env,
		WeaklyTypedInput: true,
		DecodeHook:       base64Bytes,
	})
	if err != nil {
		return env, err
	}
	if err := dec.Decode(rec); err != nil {
		return env, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return env, nil
}

// base64Bytes decodes strings bound for []byte fields, matching how
// encoding/json writes them.
func base64Bytes(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]byte(nil)) {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(data.(string))
}

// Save writes cmds as a JSON capture that Load reads back.
func Save(path string, cmds []domain.Command) error {
	f := File{Commands: make([]domain.Envelope, 0, len(cmds))}
	for _, c := range cmds {
		f.Commands = append(f.Commands, domain.Encode(c))
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal capture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	return nil
}

// Recorder wraps a stream and keeps a copy of every command received.
type Recorder struct {
	ports.Stream

	mu   sync.Mutex
	cmds []domain.Command
}

// Record starts recording s.
func Record(s ports.Stream) *Recorder {
	return &Recorder{Stream: s}
}

func (r *Recorder) Recv() (domain.Command, error) {
	cmd, err := r.Stream.Recv()
	if err == nil {
		r.mu.Lock()
		r.cmds = append(r.cmds, cmd)
		r.mu.Unlock()
	}
	return cmd, err
}

// Commands returns the commands received so far.
func (r *Recorder) Commands() []domain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Command(nil), r.cmds...)
}
