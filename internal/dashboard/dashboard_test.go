package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alfredjeanlab/flock/internal/model"
)

func TestCapability_Parse(t *testing.T) {
	for _, tc := range []struct {
		cap     Capability
		coll    string
		action  Action
		wantErr bool
	}{
		{"song:view", "song", ActionView, false},
		{"member:*", "member", Wildcard, false},
		{"*:view", Wildcard, ActionView, false},
		{"song", "", "", true},
		{"sermon:view", "", "", true},
		{"song:sing", "", "", true},
	} {
		coll, act, err := tc.cap.Parse()
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.cap, err, tc.wantErr)
			continue
		}
		if coll != tc.coll || act != tc.action {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tc.cap, coll, act, tc.coll, tc.action)
		}
	}
}

func TestAllows(t *testing.T) {
	caps := []Capability{"song:*", "blog_post:view", "*:create", "garbage"}
	for _, tc := range []struct {
		coll   model.Collection
		action Action
		want   bool
	}{
		{model.CollectionSong, ActionDelete, true},
		{model.CollectionBlog, ActionView, true},
		{model.CollectionBlog, ActionEdit, false},
		{model.CollectionMember, ActionCreate, true},
		{model.CollectionMember, ActionView, false},
	} {
		if got := Allows(caps, tc.coll, tc.action); got != tc.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", tc.coll, tc.action, got, tc.want)
		}
	}
	if Allows(nil, model.CollectionSong, ActionView) {
		t.Error("empty set should allow nothing")
	}
}

func TestDefaultCapabilities(t *testing.T) {
	// Every default set only contains well-formed capabilities.
	for _, r := range model.Roles {
		for _, cp := range DefaultCapabilities(r) {
			if _, _, err := cp.Parse(); err != nil {
				t.Errorf("%s: %v", r, err)
			}
		}
	}

	elder := DefaultCapabilities(model.RoleElder)
	for _, c := range model.Collections {
		for _, a := range Actions {
			if !Allows(elder, c, a) {
				t.Errorf("elder cannot %s %s", a, c)
			}
		}
	}

	sec := DefaultCapabilities(model.RoleSecretary)
	if !Allows(sec, model.CollectionSabbathReport, ActionEdit) || !Allows(sec, model.CollectionMember, ActionDelete) {
		t.Error("secretary should manage reports and members")
	}
	if Allows(sec, model.CollectionSong, ActionEdit) {
		t.Error("secretary should not edit songs")
	}

	choir := DefaultCapabilities(model.RoleChoirDirector)
	if !Allows(choir, model.CollectionSong, ActionCreate) || Allows(choir, model.CollectionMember, ActionView) {
		t.Error("choir director grants wrong")
	}

	member := DefaultCapabilities(model.RoleMember)
	if !Allows(member, model.CollectionTestimony, ActionCreate) || Allows(member, model.CollectionTestimony, ActionEdit) {
		t.Error("member should only submit testimonies")
	}
	if Allows(member, model.CollectionMember, ActionView) || Allows(member, model.CollectionSabbathReport, ActionView) {
		t.Error("member should not see private collections")
	}
	if diff := cmp.Diff(member, DefaultCapabilities("unknown")); diff != "" {
		t.Errorf("unknown role should fall back to member (-member +unknown):\n%s", diff)
	}
}

func TestParseOverride(t *testing.T) {
	caps, err := ParseOverride(json.RawMessage(`{"capabilities":["song:view","meeting:*"]}`))
	if err != nil {
		t.Fatalf("ParseOverride: %v", err)
	}
	if diff := cmp.Diff([]Capability{"song:view", "meeting:*"}, caps); diff != "" {
		t.Errorf("capabilities mismatch (-want +got):\n%s", diff)
	}

	caps, err = ParseOverride(json.RawMessage(`{}`))
	if err != nil || caps == nil || len(caps) != 0 {
		t.Fatalf("empty override = %v, %v; want empty non-nil set", caps, err)
	}

	if _, err := ParseOverride(json.RawMessage(`{"capabilities":["song:fly"]}`)); err == nil {
		t.Error("expected error for unknown action")
	}
	if _, err := ParseOverride(json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestResolve(t *testing.T) {
	caps, err := Resolve(model.RoleDeacon, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultCapabilities(model.RoleDeacon), caps); diff != "" {
		t.Errorf("without override (-want +got):\n%s", diff)
	}

	override := &model.Config{Key: ConfigKey(model.RoleDeacon), Value: json.RawMessage(`{"capabilities":["member:view"]}`)}
	caps, err = Resolve(model.RoleDeacon, override)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Capability{"member:view"}, caps); diff != "" {
		t.Errorf("with override (-want +got):\n%s", diff)
	}
	if ConfigKey(model.RoleDeacon) != "dashboard:deacon" {
		t.Errorf("ConfigKey = %q", ConfigKey(model.RoleDeacon))
	}
}

func TestBuild(t *testing.T) {
	caps := []Capability{"sabbath_report:*", "song:view", "meeting:view", "meeting:create"}
	counts := map[model.Collection]int{model.CollectionSong: 40, model.CollectionSabbathReport: 12}

	d := Build(model.RoleSecretary, caps, counts)
	want := []Section{
		{Collection: model.CollectionSong, Label: "Choir Songs", CategoryLabel: "Choir", Actions: []Action{ActionView}, TotalItems: 40},
		{Collection: model.CollectionMeeting, Label: "Committee Meetings", CategoryLabel: "Committee", Actions: []Action{ActionView, ActionCreate}},
		{Collection: model.CollectionSabbathReport, Label: "Sabbath Reports", CategoryLabel: "Class", Actions: Actions, TotalItems: 12},
	}
	if diff := cmp.Diff(want, d.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	if d.Role != model.RoleSecretary {
		t.Errorf("role = %q", d.Role)
	}

	// Create without view shows nothing.
	if d := Build(model.RoleMember, []Capability{"song:create"}, nil); len(d.Sections) != 0 || d.Sections == nil {
		t.Errorf("expected empty non-nil sections, got %v", d.Sections)
	}
}
