// Package catalog loads the workbook content catalog from a JSON file.
// The catalog is authored by the content team and validated against an
// embedded schema before the service accepts it.
package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

//go:embed schema.json
var schemaFS embed.FS

type document struct {
	Modules []models.ModuleDefinition `json:"modules"`
	Lessons []models.LessonDefinition `json:"lessons"`
}

// Catalog serves lesson and module definitions from an in-memory index.
type Catalog struct {
	lessons map[string]models.LessonDefinition
	modules map[string]models.ModuleDefinition
}

// Load reads, validates, and indexes the catalog file at path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return index(doc)
}

func validate(raw []byte) error {
	schemaBytes, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("load catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	return nil
}

func index(doc document) (*Catalog, error) {
	c := &Catalog{
		lessons: make(map[string]models.LessonDefinition, len(doc.Lessons)),
		modules: make(map[string]models.ModuleDefinition, len(doc.Modules)),
	}

	for _, module := range doc.Modules {
		if _, ok := c.modules[module.ID]; ok {
			return nil, fmt.Errorf("duplicate module %q in catalog", module.ID)
		}
		c.modules[module.ID] = module
	}

	for _, lesson := range doc.Lessons {
		if _, ok := c.lessons[lesson.ID]; ok {
			return nil, fmt.Errorf("duplicate lesson %q in catalog", lesson.ID)
		}
		if _, ok := c.modules[lesson.ModuleID]; !ok {
			return nil, fmt.Errorf("lesson %q references unknown module %q", lesson.ID, lesson.ModuleID)
		}
		c.lessons[lesson.ID] = lesson
	}

	// Prerequisites must resolve within the catalog so the progress
	// engine never has to guess about a dangling reference.
	for _, lesson := range doc.Lessons {
		for _, prereq := range lesson.PrerequisiteIDs {
			if _, ok := c.lessons[prereq]; !ok {
				return nil, fmt.Errorf("lesson %q references unknown prerequisite %q", lesson.ID, prereq)
			}
		}
	}

	for _, module := range doc.Modules {
		for _, lessonID := range module.LessonIDs {
			if _, ok := c.lessons[lessonID]; !ok {
				return nil, fmt.Errorf("module %q references unknown lesson %q", module.ID, lessonID)
			}
		}
	}

	return c, nil
}

// Lesson returns the definition for the given lesson ID.
func (c *Catalog) Lesson(_ context.Context, lessonID string) (models.LessonDefinition, error) {
	if def, ok := c.lessons[lessonID]; ok {
		return def, nil
	}
	return models.LessonDefinition{}, repository.ErrNotFound
}

// Module returns the definition for the given module ID.
func (c *Catalog) Module(_ context.Context, moduleID string) (models.ModuleDefinition, error) {
	if def, ok := c.modules[moduleID]; ok {
		return def, nil
	}
	return models.ModuleDefinition{}, repository.ErrNotFound
}
