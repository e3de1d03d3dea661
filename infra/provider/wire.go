package provider

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kilianp07/roomload/core/model"
)

// text accepts a JSON string, number or null. The export service is not
// consistent about quoting identifiers and lesson numbers.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	*t = text(b)
	return nil
}

func (t text) MarshalJSON() ([]byte, error) { return json.Marshal(string(t)) }

func (t text) trimmed() string { return strings.TrimSpace(string(t)) }

type objListResponse struct {
	Export struct {
		Blocks []objBlock `json:"blocks"`
	} `json:"psrozklad_export"`
}

type objBlock struct {
	Name    text        `json:"name"`
	Objects []objRecord `json:"objects"`
}

type objRecord struct {
	Name text `json:"name"`
	ID   text `json:"ID"`
}

type rozkladResponse struct {
	Export struct {
		Items []rozItem `json:"roz_items"`
	} `json:"psrozklad_export"`
}

type rozItem struct {
	Object            text `json:"object"`
	Date              text `json:"date"`
	Comment           text `json:"comment"`
	LessonNumber      text `json:"lesson_number"`
	LessonName        text `json:"lesson_name"`
	LessonTime        text `json:"lesson_time"`
	LessonDescription text `json:"lesson_description"`
}

func (r objListResponse) rooms() []model.Room {
	var rooms []model.Room
	for _, b := range r.Export.Blocks {
		for _, o := range b.Objects {
			id, name := o.ID.trimmed(), o.Name.trimmed()
			if id == "" || name == "" {
				continue
			}
			rooms = append(rooms, model.Room{ID: id, Name: name})
		}
	}
	return rooms
}

func (i rozItem) entry() model.ScheduleEntry {
	return model.ScheduleEntry{
		Object:            string(i.Object),
		Date:              string(i.Date),
		Comment:           string(i.Comment),
		LessonNumber:      string(i.LessonNumber),
		LessonName:        string(i.LessonName),
		LessonTime:        string(i.LessonTime),
		LessonDescription: string(i.LessonDescription),
	}
}

func fromEntry(e model.ScheduleEntry) rozItem {
	return rozItem{
		Object:            text(e.Object),
		Date:              text(e.Date),
		Comment:           text(e.Comment),
		LessonNumber:      text(e.LessonNumber),
		LessonName:        text(e.LessonName),
		LessonTime:        text(e.LessonTime),
		LessonDescription: text(e.LessonDescription),
	}
}
