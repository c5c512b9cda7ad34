package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/pkg/value"
)

// Format is a rule file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported rule file extension %q", filepath.Ext(path))
	}
}

// Decode parses data into a tree. Scalars are stored as their source text;
// nulls are skipped.
func Decode(format Format, data []byte) (*Node, error) {
	tree := NewTree()
	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if err := walkYAML(tree, "", &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if len(strings.TrimSpace(string(data))) == 0 {
			return tree, nil
		}
		v, err := value.Parse(string(data))
		if err != nil {
			return nil, err
		}
		if v.Kind() != value.KindObject {
			return nil, fmt.Errorf("top-level JSON value must be an object, got %s", v.Kind())
		}
		walkValue(tree, "", v)
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		walkAny(tree, "", m)
	default:
		return nil, fmt.Errorf("unsupported rule format %q", format)
	}
	return tree, nil
}

func walkYAML(tree *Node, path string, n *yaml.Node) error {
	switch n.Kind {
	case 0:
		return nil
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := walkYAML(tree, path, c); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := walkYAML(tree, joinPath(path, n.Content[i].Value), n.Content[i+1]); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			if err := walkYAML(tree, joinPath(path, fmt.Sprint(i)), c); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if path == "" {
			return fmt.Errorf("line %d: top-level YAML value must be a mapping", n.Line)
		}
		if n.Tag == "!!null" {
			return nil
		}
		tree.Set(path, n.Value)
	case yaml.AliasNode:
		return walkYAML(tree, path, n.Alias)
	}
	return nil
}

func walkValue(tree *Node, path string, v value.Value) {
	switch v.Kind() {
	case value.KindObject:
		for _, f := range v.Fields() {
			walkValue(tree, joinPath(path, f.Key), f.Value)
		}
	case value.KindArray:
		for i, item := range v.Items() {
			walkValue(tree, joinPath(path, fmt.Sprint(i)), item)
		}
	case value.KindString, value.KindNumber:
		tree.Set(path, v.Text())
	case value.KindBool:
		tree.Set(path, v.String())
	}
}

func walkAny(tree *Node, path string, v any) {
	switch t := v.(type) {
	case map[string]any:
		// TOML tables carry no order; sort for a stable tree.
		for _, k := range sortedKeys(t) {
			walkAny(tree, joinPath(path, k), t[k])
		}
	case []map[string]any:
		for i, m := range t {
			walkAny(tree, joinPath(path, fmt.Sprint(i)), m)
		}
	case []any:
		for i, item := range t {
			walkAny(tree, joinPath(path, fmt.Sprint(i)), item)
		}
	case nil:
	default:
		tree.Set(path, fmt.Sprint(t))
	}
}

// FileSource is a Source backed by a rule file. Reloads swap the whole tree,
// so concurrent lookups always see one consistent snapshot.
type FileSource struct {
	path   string
	format Format
	tree   atomic.Pointer[Node]
}

// NewFileSource loads the rule file at path.
func NewFileSource(path string) (*FileSource, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeConfigInvalid, err.Error(), err).
			WithDetail("path", path)
	}
	s := &FileSource{path: path, format: format}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file path.
func (s *FileSource) Path() string {
	return s.path
}

// Load rereads the file. On failure the previous snapshot stays active.
func (s *FileSource) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		code := ierrors.ErrCodeFileNotFound
		if !os.IsNotExist(err) {
			code = ierrors.ErrCodeConfigInvalid
		}
		return ierrors.New(code, "read rule file", err).WithDetail("path", s.path)
	}

	tree, err := Decode(s.format, data)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeConfigInvalid, "decode rule file", err).
			WithDetail("path", s.path).
			WithDetail("format", string(s.format))
	}
	s.tree.Store(tree)
	return nil
}

// Lookup implements Source.
func (s *FileSource) Lookup(path string) *Node {
	tree := s.tree.Load()
	if tree == nil {
		return nil
	}
	return tree.Lookup(path)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
