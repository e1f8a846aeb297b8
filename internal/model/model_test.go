package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/flock/internal/listview"
)

func TestCollection_IsValid(t *testing.T) {
	for _, c := range Collections {
		if !c.IsValid() {
			t.Errorf("Collection(%q).IsValid() = false", c)
		}
	}
	for _, c := range []Collection{"", "sermon", "Blog_Post"} {
		if c.IsValid() {
			t.Errorf("Collection(%q).IsValid() = true", c)
		}
	}
}

func TestSpecFor(t *testing.T) {
	spec, ok := SpecFor(CollectionSong)
	if !ok {
		t.Fatal("expected song spec")
	}
	if spec.Name != CollectionSong || spec.CategoryLabel != "Choir" || spec.IDPrefix != "sg-" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if _, ok := SpecFor("nope"); ok {
		t.Fatal("expected no spec for unknown collection")
	}
	// Every collection has a distinct ID prefix and at least one search field.
	seen := map[string]Collection{}
	for _, c := range Collections {
		s, _ := SpecFor(c)
		if other, dup := seen[s.IDPrefix]; dup {
			t.Errorf("prefix %q shared by %s and %s", s.IDPrefix, c, other)
		}
		seen[s.IDPrefix] = c
		if len(s.SearchFields) == 0 {
			t.Errorf("%s has no search fields", c)
		}
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, tc := range []struct {
		role Role
		want bool
	}{
		{RoleFather, true},
		{RoleSecretary, true},
		{RoleMember, true},
		{Role(""), false},
		{Role("pope"), false},
	} {
		if got := tc.role.IsValid(); got != tc.want {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestItem_Field(t *testing.T) {
	it := &Item{
		Title:    "Ruth Mensah",
		Content:  "",
		Author:   "Secretary",
		Category: "Mensah",
		Fields:   json.RawMessage(`{"email":"ruth@example.org","phone":"0244000000","baptized":true,"age":41,"tags":["a"]}`),
	}
	for _, tc := range []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"title", "Ruth Mensah", true},
		{"content", "", false},
		{"author", "Secretary", true},
		{"category", "Mensah", true},
		{"fields.email", "ruth@example.org", true},
		{"fields.baptized", "true", true},
		{"fields.age", "41", true},
		{"fields.tags", "", false},
		{"fields.missing", "", false},
		{"email", "", false},
	} {
		got, ok := it.Field(tc.name)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Field(%q) = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}

	var nilItem *Item
	if _, ok := nilItem.Field("title"); ok {
		t.Error("nil item should have no fields")
	}
	bad := &Item{Fields: json.RawMessage(`[1,2]`)}
	if _, ok := bad.Field("fields.x"); ok {
		t.Error("non-object fields should resolve nothing")
	}
}

func TestItemSchema_MemberSearchesContactFields(t *testing.T) {
	members := []*Item{
		{ID: "mb-1", Collection: CollectionMember, Title: "Kofi Boateng", Category: "Boateng", Fields: json.RawMessage(`{"email":"kofi@church.org"}`)},
		{ID: "mb-2", Collection: CollectionMember, Title: "Ama Owusu", Category: "Owusu", Fields: json.RawMessage(`{"phone":"0207771234"}`)},
		{ID: "mb-3", Collection: CollectionMember, Title: "Yaw Owusu", Category: "Owusu", Content: "kofi's cousin"},
	}
	schema := ItemSchema(CollectionMember)

	got := listview.ApplyFilters(members, schema, listview.Predicates{Text: "KOFI"})
	if len(got) != 1 || got[0].ID != "mb-1" {
		t.Fatalf("search kofi: got %v", itemIDs(got))
	}
	got = listview.ApplyFilters(members, schema, listview.Predicates{Text: "777"})
	if len(got) != 1 || got[0].ID != "mb-2" {
		t.Fatalf("search by phone: got %v", itemIDs(got))
	}
	got = listview.ApplyFilters(members, schema, listview.Predicates{Category: "Owusu"})
	if len(got) != 2 {
		t.Fatalf("family filter: got %v", itemIDs(got))
	}
}

func TestItemSchema_DateFilter(t *testing.T) {
	items := []*Item{
		{ID: "a", Date: time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)},
		{ID: "b", Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		{ID: "c"},
	}
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got := listview.ApplyFilters(items, ItemSchema(CollectionBlog), listview.Predicates{Date: &d})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("got %v, want [a]", itemIDs(got))
	}
}

func itemIDs(items []*Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// validItem returns an Item that passes all validation rules.
func validItem() Item {
	return Item{
		Collection: CollectionBlog,
		Title:      "Sabbath school resumes",
		Date:       time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC),
	}
}

// fieldErrors extracts a *ValidationError from err or fails the test.
func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

// hasFieldError reports whether the error list contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidateItem(t *testing.T) {
	it := validItem()
	if err := ValidateItem(&it); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	for _, tc := range []struct {
		name   string
		mutate func(*Item)
		field  string
	}{
		{"TitleRequired", func(i *Item) { i.Title = "" }, "title"},
		{"TitleWhitespaceOnly", func(i *Item) { i.Title = " \t\n " }, "title"},
		{"TitleTooLong", func(i *Item) { i.Title = strings.Repeat("a", 501) }, "title"},
		{"UnknownCollection", func(i *Item) { i.Collection = "sermon" }, "collection"},
		{"ReservedCategory", func(i *Item) { i.Category = "All" }, "category"},
		{"CategoryTooLong", func(i *Item) { i.Category = strings.Repeat("c", 101) }, "category"},
		{"DateRequired", func(i *Item) { i.Date = time.Time{} }, "date"},
		{"FieldsNotObject", func(i *Item) { i.Fields = json.RawMessage(`"x"`) }, "fields"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			it := validItem()
			tc.mutate(&it)
			if errs := fieldErrors(t, ValidateItem(&it)); !hasFieldError(errs, tc.field) {
				t.Fatalf("expected error on %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{"title", "is required"}, {"date", "is required"}}}
	want := "validation failed: title: is required; date: is required"
	if got := ve.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestValidateFields(t *testing.T) {
	report, _ := SpecFor(CollectionSabbathReport)
	gallery, _ := SpecFor(CollectionGallery)
	member, _ := SpecFor(CollectionMember)
	meeting, _ := SpecFor(CollectionMeeting)

	for _, tc := range []struct {
		name    string
		fields  string
		defs    []FieldDef
		wantErr string // field name expected to fail; "" means valid
	}{
		{"EmptyFieldsNoRequired", ``, report.Fields, ""},
		{"Counts", `{"present":42,"absent":3,"visitors":5,"offering":120.5}`, report.Fields, ""},
		{"NegativeCount", `{"present":-1}`, report.Fields, "present"},
		{"FractionalCount", `{"visitors":1.5}`, report.Fields, "visitors"},
		{"StringCount", `{"present":"42"}`, report.Fields, "present"},
		{"UnknownField", `{"present":1,"choir":"x"}`, report.Fields, "choir"},
		{"RequiredMissing", `{}`, gallery.Fields, "media_url"},
		{"RequiredNull", `{"media_url":null}`, gallery.Fields, "media_url"},
		{"EnumOK", `{"media_url":"https://x/y.jpg","media_type":"image"}`, gallery.Fields, ""},
		{"EnumBad", `{"media_url":"https://x/y.jpg","media_type":"gif"}`, gallery.Fields, "media_type"},
		{"DateOnly", `{"birth_date":"1990-04-01"}`, member.Fields, ""},
		{"DateRFC3339", `{"birth_date":"1990-04-01T00:00:00Z"}`, member.Fields, ""},
		{"DateBad", `{"birth_date":"April 1"}`, member.Fields, "birth_date"},
		{"Boolean", `{"baptized":"yes"}`, member.Fields, "baptized"},
		{"Strings", `{"attendees":["Elder Mark","Ruth"]}`, meeting.Fields, ""},
		{"StringsBad", `{"attendees":["Elder Mark",3]}`, meeting.Fields, "attendees"},
		{"NotObject", `[1]`, report.Fields, "fields"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var raw json.RawMessage
			if tc.fields != "" {
				raw = json.RawMessage(tc.fields)
			}
			err := ValidateFields(raw, tc.defs)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if errs := fieldErrors(t, err); !hasFieldError(errs, tc.wantErr) {
				t.Fatalf("expected error on %q, got %v", tc.wantErr, errs)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-01-15")
	if err != nil || d.Day() != 15 || d.Month() != time.January {
		t.Fatalf("ParseDay(2024-01-15) = %v, %v", d, err)
	}
	if _, err := ParseDay("2024-01-15T10:00:00+02:00"); err != nil {
		t.Fatalf("RFC 3339 rejected: %v", err)
	}
	if _, err := ParseDay("15/01/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestParseSavedView(t *testing.T) {
	v, err := ParseSavedView(json.RawMessage(`{"collection":"song","category":"Youth Choir","q":" grace ","per_page":5}`))
	if err != nil {
		t.Fatalf("ParseSavedView: %v", err)
	}
	st, err := v.State(10)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Predicates.Category != "Youth Choir" || st.Predicates.Text != "grace" {
		t.Fatalf("unexpected predicates: %+v", st.Predicates)
	}
	if st.Cursor.Page != 1 || st.Cursor.PerPage != 5 {
		t.Fatalf("unexpected cursor: %+v", st.Cursor)
	}

	for _, raw := range []string{
		`{"collection":"sermon"}`,
		`{"collection":"song","date":"yesterday"}`,
		`{"collection":"song","per_page":-1}`,
		`not json`,
	} {
		if _, err := ParseSavedView(json.RawMessage(raw)); err == nil {
			t.Errorf("ParseSavedView(%s): expected error", raw)
		}
	}
}

func TestSavedView_StateDefaultsAndDate(t *testing.T) {
	v := &SavedView{Collection: CollectionMeeting, Date: "2024-03-02"}
	st, err := v.State(25)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Cursor.PerPage != 25 {
		t.Fatalf("per_page = %d, want 25", st.Cursor.PerPage)
	}
	if st.Predicates.Date == nil || st.Predicates.Date.Day() != 2 {
		t.Fatalf("date = %v, want 2024-03-02", st.Predicates.Date)
	}
}
