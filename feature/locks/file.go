package locks

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the on-disk registry format.
//
//	locks:
//	  - device_id: e90f7dd1-18fd-4f43-9520-dc1aaad225c6
//	    credential_ref: SEAM_API_KEY
//	    room_id: "537928-1"
//	    category: room
//	    name: Room 1
//	  - device_id: 0b7d2e4c-front-door
//	    category: common
//	    name: Front door
type File struct {
	Locks []Lock `yaml:"locks"`
}

var validate = validator.New()

// LoadFile reads and validates a registry file.
func LoadFile(path string) ([]Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates registry YAML. Device ids must be unique.
func Parse(data []byte) ([]Lock, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing registry file: %w", err)
	}

	seen := make(map[string]int, len(f.Locks))
	for i := range f.Locks {
		l := &f.Locks[i]
		l.DeviceID = strings.TrimSpace(l.DeviceID)
		l.Category = Category(strings.ToLower(strings.TrimSpace(string(l.Category))))
		if l.Category == "" {
			l.Category = CategoryRoom
		}

		if err := validate.Struct(l); err != nil {
			return nil, fmt.Errorf("lock %d (%s): %s", i+1, l.DeviceID, describe(err))
		}
		if prev, dup := seen[l.DeviceID]; dup {
			return nil, fmt.Errorf("lock %d: device %s already declared by lock %d", i+1, l.DeviceID, prev)
		}
		seen[l.DeviceID] = i + 1
	}
	return f.Locks, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "excluded_if":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be empty for common locks", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
