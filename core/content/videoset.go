package content

import (
	"database/sql/driver"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// VideoSet tracks which videos of a course a student has finished, as a set of
// indices into the course's video list. Membership is what matters; adding an
// index twice is a no-op, and the JSON form is canonical (sorted, unique):
//
//	{"completed": [0, 2, 5]}
type VideoSet struct {
	completed map[int]struct{}
}

func NewVideoSet(indices ...int) VideoSet {
	var vs VideoSet
	for _, i := range indices {
		vs.Add(i)
	}
	return vs
}

func (vs *VideoSet) Add(index int) {
	if vs.completed == nil {
		vs.completed = make(map[int]struct{})
	}
	vs.completed[index] = struct{}{}
}

func (vs VideoSet) Has(index int) bool {
	_, ok := vs.completed[index]
	return ok
}

func (vs VideoSet) Len() int { return len(vs.completed) }

// Indices returns the completed indices in ascending order.
func (vs VideoSet) Indices() []int {
	indices := make([]int, 0, len(vs.completed))
	for i := range vs.completed {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func (vs VideoSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Completed []int `json:"completed"`
	}{Completed: vs.Indices()})
}

func (vs *VideoSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Completed []int `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*vs = NewVideoSet(raw.Completed...)
	return nil
}

func (vs VideoSet) Value() (driver.Value, error) {
	return json.Marshal(vs)
}

func (vs *VideoSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*vs = VideoSet{}
		return nil
	case []byte:
		return errors.Wrap(json.Unmarshal(v, vs), "scanning VideoSet")
	case string:
		return errors.Wrap(json.Unmarshal([]byte(v), vs), "scanning VideoSet")
	}
	return errors.Errorf("scanning VideoSet: unsupported type %T", src)
}
