package collection

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/cadencehq/console/internal/filter"
)

// Definition-file shapes. CUE values decode through json tags, so these
// mirror the authoring format rather than the runtime Schema (whose column
// accessors can be functions and so cannot round-trip through data files).

type schemaDef struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	APIEndpoint string      `json:"apiEndpoint"`
	ResponseKey string      `json:"responseKey"`
	Columns     []columnDef `json:"columns"`
	Fields      []Field     `json:"schemaFields"`
	Filters     []filterDef `json:"filters"`
	CanCreate   bool        `json:"canCreate"`
	CanUpdate   bool        `json:"canUpdate"`
	CanDelete   bool        `json:"canDelete"`
}

type columnDef struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Accessor string `json:"accessor"`
	Width    string `json:"width"`
	Sortable bool   `json:"sortable"`
}

type filterDef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Field string `json:"field"`
}

// LoadDir loads collection definitions from a directory of CUE files. The
// files are plain data (no package clause) and are passed to the loader by
// name, unified into one instance exporting a top-level "collections" list;
// each element decodes into one Schema. Definitions are validated but not
// registered — the caller decides how they combine with the built-ins.
func LoadDir(dir string) ([]*Schema, error) {
	files, err := cueFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files in %s", dir)
	}

	insts := load.Instances(files, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	if insts[0].Err != nil {
		return nil, fmt.Errorf("loading collection definitions: %w", insts[0].Err)
	}

	ctx := cuecontext.New()
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		return nil, fmt.Errorf("building collection definitions: %w", val.Err())
	}

	list := val.LookupPath(cue.ParsePath("collections"))
	if !list.Exists() {
		return nil, fmt.Errorf("%s: no top-level \"collections\" list", dir)
	}

	iter, err := list.List()
	if err != nil {
		return nil, fmt.Errorf("%s: \"collections\" is not a list: %w", dir, err)
	}

	var schemas []*Schema
	for iter.Next() {
		var def schemaDef
		if err := iter.Value().Decode(&def); err != nil {
			return nil, fmt.Errorf("decoding collection definition: %w", err)
		}
		s := def.toSchema()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// cueFiles lists the .cue files in dir, sorted for deterministic unification.
func cueFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading collection definitions dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cue") {
			continue
		}
		// Relative to load.Config.Dir.
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (d schemaDef) toSchema() *Schema {
	s := &Schema{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		APIEndpoint: d.APIEndpoint,
		ResponseKey: d.ResponseKey,
		Fields:      d.Fields,
		CanCreate:   d.CanCreate,
		CanUpdate:   d.CanUpdate,
		CanDelete:   d.CanDelete,
	}
	for _, c := range d.Columns {
		accessor := c.Accessor
		if accessor == "" {
			accessor = c.ID
		}
		s.Columns = append(s.Columns, Column{
			ID:       c.ID,
			Label:    c.Label,
			Accessor: Path(accessor),
			Width:    c.Width,
			Sortable: c.Sortable,
		})
	}
	for _, f := range d.Filters {
		s.Filters = append(s.Filters, filter.Def{
			ID:    f.ID,
			Label: f.Label,
			Type:  filter.Type(f.Type),
			Field: f.Field,
		})
	}
	return s
}
