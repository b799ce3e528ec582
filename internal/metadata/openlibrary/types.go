package openlibrary

import "github.com/go-json-experiment/json"

// Result is the metadata extracted for one ISBN.
type Result struct {
	Title   string
	Authors string
	Tags    []string
}

// editionResponse mirrors the fields we consume from the Open Library
// edition endpoint (/isbn/{isbn}.json).
type editionResponse struct {
	Title       string    `json:"title"`
	ByStatement string    `json:"by_statement"`
	Subjects    []subject `json:"subjects"`
}

// subject is either a bare string or a {name: ...} object depending on the
// edition record's vintage.
type subject struct {
	Name string
}

func (s *subject) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Name = str
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Name = obj.Name
	return nil
}
