// Package catalog holds the static course packages and add-on extras offered by the range.
// The data is embedded at build time and never changes while the process runs.
package catalog

import (
	_ "embed"
	"fmt"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultData []byte

type Catalog struct {
	courses     []models.Course
	extras      []models.Extra
	courseIndex map[string]int
	extraIndex  map[string]int
}

type document struct {
	Courses []models.Course `yaml:"courses"`
	Extras  []models.Extra  `yaml:"extras"`
}

func Default() (*Catalog, error) {
	return Parse(defaultData)
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		courses:     doc.Courses,
		extras:      doc.Extras,
		courseIndex: make(map[string]int, len(doc.Courses)),
		extraIndex:  make(map[string]int, len(doc.Extras)),
	}

	for i, course := range doc.Courses {
		if course.ID == "" {
			return nil, fmt.Errorf("course %d has no id", i)
		}
		if course.Price <= 0 {
			return nil, fmt.Errorf("course %s: price must be positive", course.ID)
		}
		if _, dup := c.courseIndex[course.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %s", course.ID)
		}
		c.courseIndex[course.ID] = i
	}

	for i, extra := range doc.Extras {
		if extra.ID == "" {
			return nil, fmt.Errorf("extra %d has no id", i)
		}
		if extra.Price < 0 {
			return nil, fmt.Errorf("extra %s: price must not be negative", extra.ID)
		}
		if !extra.Category.Valid() {
			return nil, fmt.Errorf("extra %s: unknown category %q", extra.ID, extra.Category)
		}
		if _, dup := c.extraIndex[extra.ID]; dup {
			return nil, fmt.Errorf("duplicate extra id %s", extra.ID)
		}
		c.extraIndex[extra.ID] = i
	}

	return c, nil
}

func (c *Catalog) Courses() []models.Course {
	out := make([]models.Course, len(c.courses))
	copy(out, c.courses)
	return out
}

func (c *Catalog) Extras() []models.Extra {
	out := make([]models.Extra, len(c.extras))
	copy(out, c.extras)
	return out
}

func (c *Catalog) Course(id string) (models.Course, bool) {
	i, ok := c.courseIndex[id]
	if !ok {
		return models.Course{}, false
	}
	return c.courses[i], true
}

func (c *Catalog) Extra(id string) (models.Extra, bool) {
	i, ok := c.extraIndex[id]
	if !ok {
		return models.Extra{}, false
	}
	return c.extras[i], true
}
