package release

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Validation failure kinds. Kind is stable API for callers that map
// rejections to responses or metrics; Message is for humans.
const (
	KindPayload = "payload" // body is not a JSON object
	KindMissing = "missing" // required field absent (or null)
	KindEmpty   = "empty"   // required field present but blank
	KindType    = "type"    // field has the wrong JSON type
	KindURL     = "url"     // field is not an absolute URL
)

// ValidationError describes the first constraint a webhook payload
// violated. Field is the JSON key, empty for payload-level failures.
type ValidationError struct {
	Field   string
	Kind    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a raw webhook payload against the schema for the given
// category and returns the typed event. Validation is pure and fails with
// the first violated constraint in declared field order; unknown fields are
// ignored.
func Validate(cat Category, raw []byte) (Event, error) {
	switch cat {
	case CategoryMod:
		ev, err := ValidateMod(raw)
		if err != nil {
			return nil, err
		}
		return ev, nil
	case CategoryLauncher:
		ev, err := ValidateLauncher(raw)
		if err != nil {
			return nil, err
		}
		return ev, nil
	case CategoryLoader:
		ev, err := ValidateLoader(raw)
		if err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, &ValidationError{Field: "category", Kind: KindPayload, Message: fmt.Sprintf("unknown category %q", cat)}
	}
}

// ValidateMod validates a mod release payload.
// Required fields, in order: title, description, banner_url, icon_url,
// mod_url, author_name, author_url, version, changelog, initial.
func ValidateMod(raw []byte) (*ModRelease, error) {
	obj, verr := decodeObject(raw)
	if verr != nil {
		return nil, verr
	}

	ev := &ModRelease{}
	var err *ValidationError
	if ev.Title, err = stringField(obj, "title"); err != nil {
		return nil, err
	}
	if ev.Description, err = stringField(obj, "description"); err != nil {
		return nil, err
	}
	if ev.BannerURL, err = urlField(obj, "banner_url"); err != nil {
		return nil, err
	}
	if ev.IconURL, err = urlField(obj, "icon_url"); err != nil {
		return nil, err
	}
	if ev.ModURL, err = urlField(obj, "mod_url"); err != nil {
		return nil, err
	}
	if ev.AuthorName, err = stringField(obj, "author_name"); err != nil {
		return nil, err
	}
	if ev.AuthorURL, err = urlField(obj, "author_url"); err != nil {
		return nil, err
	}
	if ev.Version, err = stringField(obj, "version"); err != nil {
		return nil, err
	}
	if ev.Changelog, err = stringField(obj, "changelog"); err != nil {
		return nil, err
	}
	if ev.Initial, err = boolField(obj, "initial"); err != nil {
		return nil, err
	}
	return ev, nil
}

// ValidateLauncher validates an RML Launcher release payload.
// Required fields, in order: name, description, icon_url, version,
// changelog.
func ValidateLauncher(raw []byte) (*LauncherRelease, error) {
	obj, verr := decodeObject(raw)
	if verr != nil {
		return nil, verr
	}

	ev := &LauncherRelease{}
	var err *ValidationError
	if ev.Name, err = stringField(obj, "name"); err != nil {
		return nil, err
	}
	if ev.Description, err = stringField(obj, "description"); err != nil {
		return nil, err
	}
	if ev.IconURL, err = urlField(obj, "icon_url"); err != nil {
		return nil, err
	}
	if ev.Version, err = stringField(obj, "version"); err != nil {
		return nil, err
	}
	if ev.Changelog, err = stringField(obj, "changelog"); err != nil {
		return nil, err
	}
	return ev, nil
}

// ValidateLoader validates a Raft Mod Loader release payload.
// Required fields, in order: name, description, icon_url, source_url,
// version.
func ValidateLoader(raw []byte) (*LoaderRelease, error) {
	obj, verr := decodeObject(raw)
	if verr != nil {
		return nil, verr
	}

	ev := &LoaderRelease{}
	var err *ValidationError
	if ev.Name, err = stringField(obj, "name"); err != nil {
		return nil, err
	}
	if ev.Description, err = stringField(obj, "description"); err != nil {
		return nil, err
	}
	if ev.IconURL, err = urlField(obj, "icon_url"); err != nil {
		return nil, err
	}
	if ev.SourceURL, err = urlField(obj, "source_url"); err != nil {
		return nil, err
	}
	if ev.Version, err = stringField(obj, "version"); err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeObject parses raw bytes and requires a top-level JSON object.
func decodeObject(raw []byte) (map[string]interface{}, *ValidationError) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ValidationError{Kind: KindPayload, Message: "body is not valid JSON"}
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Kind: KindPayload, Message: "body must be a JSON object"}
	}
	return obj, nil
}

// stringField extracts a required non-blank string. JSON null counts as
// missing.
func stringField(obj map[string]interface{}, key string) (string, *ValidationError) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", &ValidationError{Field: key, Kind: KindMissing, Message: "required field is missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: key, Kind: KindType, Message: "must be a string"}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Field: key, Kind: KindEmpty, Message: "must not be empty"}
	}
	return s, nil
}

// urlField extracts a required string that parses as an absolute URL. Any
// scheme is accepted.
func urlField(obj map[string]interface{}, key string) (string, *ValidationError) {
	s, verr := stringField(obj, key)
	if verr != nil {
		return "", verr
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &ValidationError{Field: key, Kind: KindURL, Message: "must be an absolute URL"}
	}
	return s, nil
}

// boolField extracts a required boolean.
func boolField(obj map[string]interface{}, key string) (bool, *ValidationError) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return false, &ValidationError{Field: key, Kind: KindMissing, Message: "required field is missing"}
	}
	b, ok := raw.(bool)
	if !ok {
		return false, &ValidationError{Field: key, Kind: KindType, Message: "must be a boolean"}
	}
	return b, nil
}
