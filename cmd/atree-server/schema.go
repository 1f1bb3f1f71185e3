package main

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kaleidodag/atree"
)

// schemaFile is the shape of an attribute-schema YAML document:
//
//	attributes:
//	  - name: exchange_id
//	    type: i64
//	  - name: price
//	    type: decimal
//	    scale: 2
type schemaFile struct {
	Attributes []struct {
		Name  string `koanf:"name"`
		Type  string `koanf:"type"`
		Scale uint32 `koanf:"scale"`
	} `koanf:"attributes"`
}

var schemaTypeNames = map[string]atree.Type{
	"bool":          atree.Bool,
	"i64":           atree.Int,
	"int":           atree.Int,
	"decimal":       atree.Dec,
	"string":        atree.Str,
	"set-of-string": atree.StrSet,
	"set-of-i64":    atree.IntSet,
}

// loadSchema reads an attribute-schema YAML file with koanf and returns
// the AttrDef list atree.New expects.
func loadSchema(path string) ([]atree.AttrDef, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", path, err)
	}

	var sf schemaFile
	if err := k.Unmarshal("", &sf); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}

	defs := make([]atree.AttrDef, 0, len(sf.Attributes))
	for _, a := range sf.Attributes {
		typ, ok := schemaTypeNames[a.Type]
		if !ok {
			return nil, fmt.Errorf("schema %s: attribute %q has unknown type %q", path, a.Name, a.Type)
		}
		defs = append(defs, atree.AttrDef{Name: a.Name, Type: typ, Scale: a.Scale})
	}
	return defs, nil
}
