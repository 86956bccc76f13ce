package schema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// entityDoc mirrors the schema document layout. Field and relationship
// declarations use snake_case keys, matching the config file conventions.
type entityDoc struct {
	Name          string            `mapstructure:"name"`
	Table         string            `mapstructure:"table"`
	IDField       string            `mapstructure:"id_field"`
	Fields        []fieldDoc        `mapstructure:"fields"`
	Relationships []relationshipDoc `mapstructure:"relationships"`
}

type fieldDoc struct {
	Name      string `mapstructure:"name"`
	Indexed   bool   `mapstructure:"indexed"`
	BelongsTo string `mapstructure:"belongs_to"`
	As        string `mapstructure:"as"`
}

type relationshipDoc struct {
	Name         string   `mapstructure:"name"`
	Kind         string   `mapstructure:"kind"`
	Target       string   `mapstructure:"target"`
	ForeignKey   string   `mapstructure:"foreign_key"`
	Through      string   `mapstructure:"through"`
	OtherKey     string   `mapstructure:"other_key"`
	TypeField    string   `mapstructure:"type_field"`
	IDField      string   `mapstructure:"id_field"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	Via          string   `mapstructure:"via"`
}

// Load reads and validates a schema document from path (YAML or JSON).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %q: %w", path, err)
	}
	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}
	catalog, err := parse(data, configType)
	if err != nil {
		return nil, fmt.Errorf("schema file %q: %w", path, err)
	}
	return catalog, nil
}

// Parse builds and validates a Catalog from a YAML schema document.
func Parse(data []byte) (*Catalog, error) {
	return parse(data, "yaml")
}

func parse(data []byte, configType string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}

	var docs []entityDoc
	if err := v.UnmarshalKey("entities", &docs); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("schema document declares no entities")
	}

	entities := make([]Entity, 0, len(docs))
	for _, doc := range docs {
		entity, err := buildEntity(doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	catalog := NewCatalog(entities)
	if err := validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

func buildEntity(doc entityDoc) (Entity, error) {
	if doc.Name == "" {
		return Entity{}, fmt.Errorf("entity declaration missing name")
	}
	entity := Entity{
		Name:    doc.Name,
		Table:   doc.Table,
		IDField: doc.IDField,
	}
	for _, f := range doc.Fields {
		if f.Name == "" {
			return Entity{}, fmt.Errorf("entity %s: field declaration missing name", doc.Name)
		}
		entity.Fields = append(entity.Fields, Field{
			Name:      f.Name,
			Indexed:   f.Indexed,
			BelongsTo: f.BelongsTo,
			Alias:     f.As,
		})
	}
	for _, r := range doc.Relationships {
		rel, err := buildRelationship(doc.Name, r)
		if err != nil {
			return Entity{}, err
		}
		entity.Relationships = append(entity.Relationships, rel)
	}
	return entity, nil
}

func buildRelationship(entityName string, doc relationshipDoc) (Relationship, error) {
	if doc.Name == "" {
		return Relationship{}, fmt.Errorf("entity %s: relationship declaration missing name", entityName)
	}
	rel := Relationship{
		Name:         doc.Name,
		Target:       doc.Target,
		ForeignKey:   doc.ForeignKey,
		Through:      doc.Through,
		OtherKey:     doc.OtherKey,
		TypeField:    doc.TypeField,
		IDField:      doc.IDField,
		AllowedTypes: doc.AllowedTypes,
		Via:          doc.Via,
	}
	switch doc.Kind {
	case "has_many", "hasMany":
		rel.Kind = KindHasMany
		if rel.Target == "" || rel.ForeignKey == "" {
			return Relationship{}, fmt.Errorf("entity %s: has_many %s requires target and foreign_key", entityName, doc.Name)
		}
	case "many_to_many", "manyToMany":
		rel.Kind = KindManyToMany
		if rel.Target == "" || rel.Through == "" || rel.ForeignKey == "" || rel.OtherKey == "" {
			return Relationship{}, fmt.Errorf("entity %s: many_to_many %s requires target, through, foreign_key, and other_key", entityName, doc.Name)
		}
	case "polymorphic":
		rel.Kind = KindPolymorphic
		if rel.TypeField == "" || rel.IDField == "" || len(rel.AllowedTypes) == 0 {
			return Relationship{}, fmt.Errorf("entity %s: polymorphic %s requires type_field, id_field, and allowed_types", entityName, doc.Name)
		}
	case "via":
		rel.Kind = KindReversePolymorphic
		if rel.Target == "" || rel.Via == "" {
			return Relationship{}, fmt.Errorf("entity %s: via relationship %s requires target and via", entityName, doc.Name)
		}
	default:
		return Relationship{}, fmt.Errorf("entity %s: relationship %s has unsupported kind %q", entityName, doc.Name, doc.Kind)
	}
	return rel, nil
}

// validate checks referential integrity of the declared graph: every edge
// target, pivot, and allowed type must itself be declared.
func validate(c *Catalog) error {
	for _, name := range c.EntityNames() {
		entity, _ := c.Entity(name)
		for _, f := range entity.Fields {
			if f.BelongsTo == "" {
				continue
			}
			if _, ok := c.Entity(f.BelongsTo); !ok {
				return fmt.Errorf("entity %s: field %s belongs to undeclared entity %s", name, f.Name, f.BelongsTo)
			}
		}
		for _, rel := range entity.Relationships {
			switch rel.Kind {
			case KindHasMany:
				if _, ok := c.Entity(rel.Target); !ok {
					return fmt.Errorf("entity %s: relationship %s targets undeclared entity %s", name, rel.Name, rel.Target)
				}
			case KindManyToMany:
				if _, ok := c.Entity(rel.Target); !ok {
					return fmt.Errorf("entity %s: relationship %s targets undeclared entity %s", name, rel.Name, rel.Target)
				}
				if _, ok := c.Entity(rel.Through); !ok {
					return fmt.Errorf("entity %s: relationship %s goes through undeclared entity %s", name, rel.Name, rel.Through)
				}
			case KindPolymorphic:
				for _, allowed := range rel.AllowedTypes {
					if _, ok := c.Entity(allowed); !ok {
						return fmt.Errorf("entity %s: relationship %s allows undeclared entity %s", name, rel.Name, allowed)
					}
				}
			case KindReversePolymorphic:
				target, ok := c.Entity(rel.Target)
				if !ok {
					return fmt.Errorf("entity %s: relationship %s targets undeclared entity %s", name, rel.Name, rel.Target)
				}
				// The via edge must exist on the target. Whether it is
				// actually polymorphic is re-checked fail-soft at load time.
				found := false
				for _, tr := range target.Relationships {
					if tr.Name == rel.Via {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("entity %s: relationship %s references undeclared via relationship %s.%s", name, rel.Name, rel.Target, rel.Via)
				}
			}
		}
	}
	return nil
}
