package release

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func validModPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Raft Reinforced",
		"description": "Stronger building blocks for your raft.",
		"banner_url":  "https://cdn.raftmodding.com/banners/reinforced.png",
		"icon_url":    "https://cdn.raftmodding.com/icons/reinforced.png",
		"mod_url":     "https://www.raftmodding.com/mods/raft-reinforced",
		"author_name": "blockworks",
		"author_url":  "https://www.raftmodding.com/user/blockworks",
		"version":     "1.4.0",
		"changelog":   "Fixed collision on reinforced foundations.",
		"initial":     false,
	}
}

func validLauncherPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":        "RML Launcher",
		"description": "The launcher now installs mods twice as fast.",
		"icon_url":    "https://cdn.raftmodding.com/launcher/icon.png",
		"version":     "2.1.3",
		"changelog":   "Faster mod downloads and a new dark theme.",
	}
}

func validLoaderPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Raft Mod Loader",
		"description": "Compatibility update for the latest Raft patch.",
		"icon_url":    "https://cdn.raftmodding.com/loader/icon.png",
		"source_url":  "https://github.com/raftmodding/loader",
		"version":     "0.9.7",
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"mod", CategoryMod, true},
		{"launcher", CategoryLauncher, true},
		{"loader", CategoryLoader, true},
		{"plugin", "", false},
		{"", "", false},
		{"Mod", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("ParseCategory(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidateModValid(t *testing.T) {
	ev, err := ValidateMod(mustJSON(t, validModPayload()))
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	want := &ModRelease{
		Title:       "Raft Reinforced",
		Description: "Stronger building blocks for your raft.",
		BannerURL:   "https://cdn.raftmodding.com/banners/reinforced.png",
		IconURL:     "https://cdn.raftmodding.com/icons/reinforced.png",
		ModURL:      "https://www.raftmodding.com/mods/raft-reinforced",
		AuthorName:  "blockworks",
		AuthorURL:   "https://www.raftmodding.com/user/blockworks",
		Version:     "1.4.0",
		Changelog:   "Fixed collision on reinforced foundations.",
		Initial:     false,
	}
	if !reflect.DeepEqual(ev, want) {
		t.Fatalf("event mismatch:\ngot  %+v\nwant %+v", ev, want)
	}
	if ev.Category() != CategoryMod {
		t.Fatalf("expected mod category, got %s", ev.Category())
	}
}

func TestValidateModFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m map[string]interface{})
		wantField string
		wantKind  string
	}{
		{
			name:      "missing title",
			mutate:    func(m map[string]interface{}) { delete(m, "title") },
			wantField: "title",
			wantKind:  KindMissing,
		},
		{
			name:      "null version treated as missing",
			mutate:    func(m map[string]interface{}) { m["version"] = nil },
			wantField: "version",
			wantKind:  KindMissing,
		},
		{
			name:      "blank description",
			mutate:    func(m map[string]interface{}) { m["description"] = "   " },
			wantField: "description",
			wantKind:  KindEmpty,
		},
		{
			name:      "numeric title",
			mutate:    func(m map[string]interface{}) { m["title"] = 42 },
			wantField: "title",
			wantKind:  KindType,
		},
		{
			name:      "banner url without scheme",
			mutate:    func(m map[string]interface{}) { m["banner_url"] = "cdn.raftmodding.com/banner.png" },
			wantField: "banner_url",
			wantKind:  KindURL,
		},
		{
			name:      "mod url is not a url",
			mutate:    func(m map[string]interface{}) { m["mod_url"] = "not a url" },
			wantField: "mod_url",
			wantKind:  KindURL,
		},
		{
			name:      "author url relative path",
			mutate:    func(m map[string]interface{}) { m["author_url"] = "/user/blockworks" },
			wantField: "author_url",
			wantKind:  KindURL,
		},
		{
			name:      "initial missing",
			mutate:    func(m map[string]interface{}) { delete(m, "initial") },
			wantField: "initial",
			wantKind:  KindMissing,
		},
		{
			name:      "initial as string",
			mutate:    func(m map[string]interface{}) { m["initial"] = "true" },
			wantField: "initial",
			wantKind:  KindType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validModPayload()
			tt.mutate(payload)

			_, err := ValidateMod(mustJSON(t, payload))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, verr.Field)
			}
			if verr.Kind != tt.wantKind {
				t.Fatalf("expected kind %q, got %q", tt.wantKind, verr.Kind)
			}
		})
	}
}

func TestValidateModFirstViolationWins(t *testing.T) {
	payload := validModPayload()
	delete(payload, "description")
	delete(payload, "version")

	_, err := ValidateMod(mustJSON(t, payload))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "description" {
		t.Fatalf("expected first declared field to be reported, got %q", verr.Field)
	}
}

func TestValidateModUnknownFieldsIgnored(t *testing.T) {
	payload := validModPayload()
	payload["downloads"] = 120345
	payload["tags"] = []string{"building", "quality-of-life"}

	if _, err := ValidateMod(mustJSON(t, payload)); err != nil {
		t.Fatalf("expected unknown fields to be ignored, got %v", err)
	}
}

func TestValidateNonObjectPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"array", `[]`},
		{"string", `"release"`},
		{"number", `42`},
		{"null", `null`},
		{"truncated", `{"title": "x"`},
		{"empty", ``},
	}

	for _, cat := range Categories() {
		for _, tt := range tests {
			t.Run(string(cat)+"/"+tt.name, func(t *testing.T) {
				_, err := Validate(cat, []byte(tt.raw))
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Kind != KindPayload {
					t.Fatalf("expected kind %q, got %q", KindPayload, verr.Kind)
				}
			})
		}
	}
}

func TestValidateIdempotent(t *testing.T) {
	raw := mustJSON(t, validModPayload())

	first, err1 := ValidateMod(raw)
	second, err2 := ValidateMod(raw)
	if err1 != nil || err2 != nil {
		t.Fatalf("expected both runs to pass, got %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical events:\nfirst  %+v\nsecond %+v", first, second)
	}

	bad := mustJSON(t, map[string]interface{}{"title": "x"})
	_, badErr1 := ValidateMod(bad)
	_, badErr2 := ValidateMod(bad)
	var verr1, verr2 *ValidationError
	if !errors.As(badErr1, &verr1) || !errors.As(badErr2, &verr2) {
		t.Fatalf("expected ValidationErrors, got %v / %v", badErr1, badErr2)
	}
	if *verr1 != *verr2 {
		t.Fatalf("expected identical errors, got %+v / %+v", verr1, verr2)
	}
}

func TestValidateLauncherValid(t *testing.T) {
	ev, err := ValidateLauncher(mustJSON(t, validLauncherPayload()))
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if ev.Name != "RML Launcher" || ev.Version != "2.1.3" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Category() != CategoryLauncher {
		t.Fatalf("expected launcher category, got %s", ev.Category())
	}
}

func TestValidateLauncherFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m map[string]interface{})
		wantField string
		wantKind  string
	}{
		{"missing name", func(m map[string]interface{}) { delete(m, "name") }, "name", KindMissing},
		{"empty changelog", func(m map[string]interface{}) { m["changelog"] = "" }, "changelog", KindEmpty},
		{"icon url invalid", func(m map[string]interface{}) { m["icon_url"] = "not a url" }, "icon_url", KindURL},
		{"version as number", func(m map[string]interface{}) { m["version"] = 2.1 }, "version", KindType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validLauncherPayload()
			tt.mutate(payload)

			_, err := ValidateLauncher(mustJSON(t, payload))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Kind != tt.wantKind {
				t.Fatalf("got field %q kind %q, want %q %q", verr.Field, verr.Kind, tt.wantField, tt.wantKind)
			}
		})
	}
}

func TestValidateLoaderValid(t *testing.T) {
	ev, err := ValidateLoader(mustJSON(t, validLoaderPayload()))
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if ev.SourceURL != "https://github.com/raftmodding/loader" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Category() != CategoryLoader {
		t.Fatalf("expected loader category, got %s", ev.Category())
	}
}

func TestValidateLoaderFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m map[string]interface{})
		wantField string
		wantKind  string
	}{
		{"missing source url", func(m map[string]interface{}) { delete(m, "source_url") }, "source_url", KindMissing},
		{"source url invalid", func(m map[string]interface{}) { m["source_url"] = "github" }, "source_url", KindURL},
		{"missing version", func(m map[string]interface{}) { delete(m, "version") }, "version", KindMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validLoaderPayload()
			tt.mutate(payload)

			_, err := ValidateLoader(mustJSON(t, payload))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Kind != tt.wantKind {
				t.Fatalf("got field %q kind %q, want %q %q", verr.Field, verr.Kind, tt.wantField, tt.wantKind)
			}
		})
	}
}

func TestValidateAcceptsAnyURLScheme(t *testing.T) {
	payload := validLoaderPayload()
	payload["source_url"] = "git://github.com/raftmodding/loader.git"

	if _, err := ValidateLoader(mustJSON(t, payload)); err != nil {
		t.Fatalf("expected any absolute URL scheme to pass, got %v", err)
	}
}

func TestValidateUnknownCategory(t *testing.T) {
	_, err := Validate(Category("plugin"), mustJSON(t, validModPayload()))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Kind != KindPayload {
		t.Fatalf("expected kind %q, got %q", KindPayload, verr.Kind)
	}
}
