package glpi

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// FullSession is the payload of getFullSession.
type FullSession struct {
	Session SessionDetail `json:"session" mapstructure:"session" yaml:"session"`
}

// SessionDetail holds the server-side session variables of the user.
type SessionDetail struct {
	UserID          int           `json:"glpiID"             mapstructure:"glpiID"             yaml:"glpiID"`
	Name            string        `json:"glpiname"           mapstructure:"glpiname"           yaml:"glpiname"`
	RealName        string        `json:"glpirealname"       mapstructure:"glpirealname"       yaml:"glpirealname"`
	FirstName       string        `json:"glpifirstname"      mapstructure:"glpifirstname"      yaml:"glpifirstname"`
	DefaultEntityID int           `json:"glpidefault_entity" mapstructure:"glpidefault_entity" yaml:"glpidefault_entity"`
	ActiveEntityID  int           `json:"glpiactive_entity"  mapstructure:"glpiactive_entity"  yaml:"glpiactive_entity"`
	Language        string        `json:"glpilanguage"       mapstructure:"glpilanguage"       yaml:"glpilanguage"`
	CurrentTime     string        `json:"glpi_currenttime"   mapstructure:"glpi_currenttime"   yaml:"glpi_currenttime"`
	ActiveProfile   ActiveProfile `json:"glpiactiveprofile"  mapstructure:"glpiactiveprofile"  yaml:"glpiactiveprofile"`

	// Extra keeps every session variable not mapped above.
	Extra map[string]interface{} `json:"-" mapstructure:",remain" yaml:"-"`
}

// ActiveProfile is the profile the session currently acts under.
type ActiveProfile struct {
	ID        int    `json:"id"        mapstructure:"id"        yaml:"id"`
	Name      string `json:"name"      mapstructure:"name"      yaml:"name"`
	Interface string `json:"interface" mapstructure:"interface" yaml:"interface"`

	Extra map[string]interface{} `json:"-" mapstructure:",remain" yaml:"-"`
}

// DecodeRecord copies a record into a struct tagged with mapstructure tags.
// Numeric strings and JSON numbers are converted as needed, since GLPI is
// not consistent about which one it sends.
func DecodeRecord(record Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating record decoder: %w", err)
	}

	err = decoder.Decode(map[string]interface{}(record))
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	return nil
}

// DecodeFullSession decodes a getFullSession body.
func DecodeFullSession(statusCode int, body []byte) (FullSession, error) {
	var fullSession FullSession

	record, err := DecodeJSON[Record](statusCode, body)
	if err != nil {
		return fullSession, err
	}

	err = DecodeRecord(record, &fullSession)
	if err != nil {
		return fullSession, err
	}

	return fullSession, nil
}

// ID returns the "id" field formatted as a string, or "" when absent.
func (r Record) ID() string {
	return r.String("id")
}

// String returns the named field formatted for display.
func (r Record) String(field string) string {
	value, ok := r[field]
	if !ok || value == nil {
		return ""
	}

	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
