// Package content loads the read-only static quiz catalog.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verte-zerg/studyquest/internal/model"
)

//go:embed catalog.toml
var builtinCatalog string

// Quiz is one static quiz.
type Quiz struct {
	ID          string     `toml:"id"`
	Title       string     `toml:"title"`
	Description string     `toml:"description"`
	Category    string     `toml:"category"`
	Questions   []Question `toml:"question"`
}

// Question is one static multiple-choice question.
type Question struct {
	ID      int      `toml:"id"`
	Prompt  string   `toml:"prompt"`
	Options []string `toml:"options"`
	Answer  string   `toml:"answer"`
}

type catalogFile struct {
	Quizzes []Quiz `toml:"quiz"`
}

// Catalog is an ordered, read-only set of quizzes.
type Catalog struct {
	quizzes []Quiz
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	quizzes, err := decode(builtinCatalog, "builtin catalog")
	if err != nil {
		return nil, err
	}
	return &Catalog{quizzes: quizzes}, nil
}

// Load returns the embedded catalog extended with every *.toml file in dir.
// A missing directory is not an error. User quizzes replace builtin quizzes with the same id.
func Load(dir string) (*Catalog, error) {
	cat, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return cat, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return nil, fmt.Errorf("failed to read quiz directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		quizzes, err := decode(string(data), name)
		if err != nil {
			return nil, err
		}
		for _, q := range quizzes {
			cat.put(q)
		}
	}
	return cat, nil
}

func decode(data, source string) ([]Quiz, error) {
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	for _, q := range file.Quizzes {
		if err := validate(q); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	return file.Quizzes, nil
}

func validate(q Quiz) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("quiz id is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %q has no questions", q.ID)
	}
	for _, question := range q.Questions {
		if strings.TrimSpace(question.Prompt) == "" {
			return fmt.Errorf("quiz %q question %d has empty prompt", q.ID, question.ID)
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("quiz %q question %d has no options", q.ID, question.ID)
		}
		found := false
		for _, opt := range question.Options {
			if opt == question.Answer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("quiz %q question %d answer %q is not an option", q.ID, question.ID, question.Answer)
		}
	}
	return nil
}

func (c *Catalog) put(q Quiz) {
	for i := range c.quizzes {
		if c.quizzes[i].ID == q.ID {
			c.quizzes[i] = q
			return
		}
	}
	c.quizzes = append(c.quizzes, q)
}

// Quizzes returns a copy of the catalog in display order.
func (c *Catalog) Quizzes() []Quiz {
	return append([]Quiz(nil), c.quizzes...)
}

// Find returns the quiz with the given id.
func (c *Catalog) Find(id string) (Quiz, bool) {
	for _, q := range c.quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return Quiz{}, false
}

// Topics returns the distinct quiz categories.
func (c *Catalog) Topics() []string {
	seen := map[string]struct{}{}
	var topics []string
	for _, q := range c.quizzes {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		topics = append(topics, q.Category)
	}
	return topics
}

// ToModel converts a static question into the engine representation.
func (q Question) ToModel(quizID, tag string) model.Question {
	return model.Question{
		ID:            quizID + "-" + strconv.Itoa(q.ID),
		Prompt:        q.Prompt,
		Kind:          model.MultipleChoice{Options: append([]string(nil), q.Options...)},
		CorrectAnswer: q.Answer,
		Tag:           tag,
	}
}

var titleCaser = cases.Title(language.English)

// DisplayTopic normalizes a free-form topic for headings.
func DisplayTopic(topic string) string {
	topic = strings.Join(strings.Fields(topic), " ")
	if topic == "" {
		return "General Knowledge"
	}
	return titleCaser.String(topic)
}
