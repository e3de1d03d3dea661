package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/roomload/core/model"
)

// Fixture is the data served by ServerMock. JSON files are accepted too
// since they parse as YAML.
type Fixture struct {
	Rooms     []FixtureRoom             `yaml:"rooms"`
	Schedules map[string][]FixtureEntry `yaml:"schedules"`
}

// FixtureRoom is one room of the listing. Block groups rooms the way the
// export service does; an empty block is reported as "default".
type FixtureRoom struct {
	Block string `yaml:"block"`
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
}

// FixtureEntry is one schedule record.
type FixtureEntry struct {
	Object            string `yaml:"object"`
	Date              string `yaml:"date"`
	Comment           string `yaml:"comment"`
	LessonNumber      string `yaml:"lesson_number"`
	LessonName        string `yaml:"lesson_name"`
	LessonTime        string `yaml:"lesson_time"`
	LessonDescription string `yaml:"lesson_description"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fx, nil
}

func (e FixtureEntry) model() model.ScheduleEntry {
	return model.ScheduleEntry{
		Object:            e.Object,
		Date:              e.Date,
		Comment:           e.Comment,
		LessonNumber:      e.LessonNumber,
		LessonName:        e.LessonName,
		LessonTime:        e.LessonTime,
		LessonDescription: e.LessonDescription,
	}
}

func (fx *Fixture) objList() objListResponse {
	var resp objListResponse
	index := map[string]int{}
	for _, r := range fx.Rooms {
		block := r.Block
		if block == "" {
			block = "default"
		}
		i, ok := index[block]
		if !ok {
			i = len(resp.Export.Blocks)
			index[block] = i
			resp.Export.Blocks = append(resp.Export.Blocks, objBlock{Name: text(block)})
		}
		resp.Export.Blocks[i].Objects = append(resp.Export.Blocks[i].Objects, objRecord{Name: text(r.Name), ID: text(r.ID)})
	}
	return resp
}
