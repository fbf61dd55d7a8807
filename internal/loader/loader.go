// Package loader reads scorecard documents from YAML or JSON and checks their
// shape against an embedded CUE schema before decoding.
package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/huangsam/scorecard/schema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/scorecard.cue
var schemaFS embed.FS

// Format is the serialization of a scorecard document.
type Format string

// Supported document formats.
const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// DocumentError lists everything wrong with the shape of a document.
type DocumentError struct {
	Path     string
	Problems []string
}

func (e *DocumentError) Error() string {
	where := e.Path
	if where == "" {
		where = "scorecard"
	}
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", where, e.Problems[0])
	}
	return fmt.Sprintf("%s: %d problems: %s", where, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Loader turns documents into ScorecardConfig values.
type Loader struct {
	mu  sync.Mutex // cue.Context is not safe for concurrent use
	ctx *cue.Context
	def cue.Value
}

// New compiles the embedded schema.
func New() (*Loader, error) {
	src, err := schemaFS.ReadFile("schemas/scorecard.cue")
	if err != nil {
		return nil, fmt.Errorf("could not read embedded schema: %w", err)
	}
	ctx := cuecontext.New()
	inst := ctx.CompileBytes(src, cue.Filename("scorecard.cue"))
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("could not compile embedded schema: %w", err)
	}
	def := inst.LookupPath(cue.ParsePath("#Scorecard"))
	if !def.Exists() {
		return nil, errors.New("embedded schema has no #Scorecard definition")
	}
	return &Loader{ctx: ctx, def: def}, nil
}

var defaultLoader = sync.OnceValues(New)

// Load reads a scorecard file with the shared loader.
func Load(path string) (*schema.ScorecardConfig, error) {
	l, err := defaultLoader()
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}

// Parse decodes a scorecard document with the shared loader.
func Parse(data []byte, format Format) (*schema.ScorecardConfig, error) {
	l, err := defaultLoader()
	if err != nil {
		return nil, err
	}
	return l.Parse(data, format)
}

// Load reads and decodes the scorecard at path.
func (l *Loader) Load(path string) (*schema.ScorecardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scorecard %s: %w", path, err)
	}
	cfg, err := l.Parse(data, DetectFormat(path, data))
	if err != nil {
		var docErr *DocumentError
		if errors.As(err, &docErr) {
			docErr.Path = path
			return nil, docErr
		}
		return nil, fmt.Errorf("failed to parse scorecard %s: %w", path, err)
	}
	return cfg, nil
}

// Parse checks the document shape and decodes it. Unknown keys are rejected.
func (l *Loader) Parse(data []byte, format Format) (*schema.ScorecardConfig, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &DocumentError{Problems: []string{"document is empty"}}
	}
	if problems := l.Check(doc); len(problems) > 0 {
		return nil, &DocumentError{Problems: problems}
	}

	cfg := &schema.ScorecardConfig{}
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return cfg, nil
}

// Check unifies a generic document with the #Scorecard definition and
// returns one message per violation.
func (l *Loader) Check(doc any) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := l.ctx.Encode(stringKeys(doc))
	if err := value.Err(); err != nil {
		return []string{fmt.Sprintf("cannot encode document: %v", err)}
	}
	unified := l.def.Unify(value)
	err := unified.Err()
	if err == nil {
		err = unified.Validate(cue.Concrete(true))
	}
	if err == nil {
		return nil
	}

	var problems []string
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			problems = append(problems, msg)
		}
	}
	return problems
}

// DetectFormat picks JSON for .json files and for content that opens with a
// brace, and YAML otherwise.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return JSON
	}
	return YAML
}

// Marshal writes a scorecard back out. YAML keeps categories as an ordered mapping.
func Marshal(cfg *schema.ScorecardConfig, format Format) ([]byte, error) {
	if format == JSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stringKeys converts yaml's map[any]any nodes into map[string]any so CUE can
// encode them.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}
