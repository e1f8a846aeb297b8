package model

import (
	"time"

	"github.com/alfredjeanlab/flock/internal/listview"
)

// Collection names a listing of items.
type Collection string

const (
	CollectionBlog          Collection = "blog_post"
	CollectionSong          Collection = "song"
	CollectionMeeting       Collection = "meeting"
	CollectionGallery       Collection = "gallery_item"
	CollectionMember        Collection = "member"
	CollectionResource      Collection = "resource"
	CollectionTestimony     Collection = "testimony"
	CollectionSabbathReport Collection = "sabbath_report"
)

// String returns the string representation of the collection.
func (c Collection) String() string {
	return string(c)
}

// IsValid checks whether the collection is a known value.
func (c Collection) IsValid() bool {
	_, ok := collectionSpecs[c]
	return ok
}

// CollectionSpec describes how a collection is labelled, identified and
// searched.
type CollectionSpec struct {
	Name          Collection `json:"name"`
	Label         string     `json:"label"`
	CategoryLabel string     `json:"category_label"`
	IDPrefix      string     `json:"id_prefix"`
	SearchFields  []string   `json:"search_fields"`
	Fields        []FieldDef `json:"fields,omitempty"`
}

// Collections lists every collection in display order.
var Collections = []Collection{
	CollectionBlog,
	CollectionSong,
	CollectionMeeting,
	CollectionGallery,
	CollectionMember,
	CollectionResource,
	CollectionTestimony,
	CollectionSabbathReport,
}

var collectionSpecs = map[Collection]CollectionSpec{
	CollectionBlog: {
		Label: "Blog", CategoryLabel: "Category", IDPrefix: "bl-",
		SearchFields: []string{"title", "content", "author"},
		Fields: []FieldDef{
			{Name: "image_url", Type: FieldTypeString},
			{Name: "tags", Type: FieldTypeStrings},
		},
	},
	CollectionSong: {
		Label: "Choir Songs", CategoryLabel: "Choir", IDPrefix: "sg-",
		SearchFields: []string{"title", "author", "content"},
		Fields: []FieldDef{
			{Name: "key", Type: FieldTypeString},
			{Name: "audio_url", Type: FieldTypeString},
			{Name: "language", Type: FieldTypeString},
		},
	},
	CollectionMeeting: {
		Label: "Committee Meetings", CategoryLabel: "Committee", IDPrefix: "mt-",
		SearchFields: []string{"title", "content", "author"},
		Fields: []FieldDef{
			{Name: "location", Type: FieldTypeString},
			{Name: "attendees", Type: FieldTypeStrings},
			{Name: "status", Type: FieldTypeEnum, Values: []string{"scheduled", "held", "cancelled"}},
		},
	},
	CollectionGallery: {
		Label: "Gallery", CategoryLabel: "Album", IDPrefix: "gl-",
		SearchFields: []string{"title", "content"},
		Fields: []FieldDef{
			{Name: "media_url", Type: FieldTypeString, Required: true},
			{Name: "media_type", Type: FieldTypeEnum, Values: []string{"image", "video"}},
		},
	},
	CollectionMember: {
		Label: "Members", CategoryLabel: "Family", IDPrefix: "mb-",
		SearchFields: []string{"title", "fields.email", "fields.phone"},
		Fields: []FieldDef{
			{Name: "email", Type: FieldTypeString},
			{Name: "phone", Type: FieldTypeString},
			{Name: "gender", Type: FieldTypeEnum, Values: []string{"male", "female"}},
			{Name: "church_role", Type: FieldTypeString},
			{Name: "baptized", Type: FieldTypeBoolean},
			{Name: "birth_date", Type: FieldTypeDate},
		},
	},
	CollectionResource: {
		Label: "Resources", CategoryLabel: "Category", IDPrefix: "rs-",
		SearchFields: []string{"title", "content", "author"},
		Fields: []FieldDef{
			{Name: "url", Type: FieldTypeString},
			{Name: "format", Type: FieldTypeEnum, Values: []string{"pdf", "audio", "video", "link", "document"}},
		},
	},
	CollectionTestimony: {
		Label: "Testimonies", CategoryLabel: "Category", IDPrefix: "ts-",
		SearchFields: []string{"title", "content", "author"},
		Fields: []FieldDef{
			{Name: "approved", Type: FieldTypeBoolean},
		},
	},
	CollectionSabbathReport: {
		Label: "Sabbath Reports", CategoryLabel: "Class", IDPrefix: "sr-",
		SearchFields: []string{"title", "author", "content"},
		Fields: []FieldDef{
			{Name: "present", Type: FieldTypeCount},
			{Name: "absent", Type: FieldTypeCount},
			{Name: "visitors", Type: FieldTypeCount},
			{Name: "offering", Type: FieldTypeNumber},
		},
	},
}

func init() {
	for name, spec := range collectionSpecs {
		spec.Name = name
		collectionSpecs[name] = spec
	}
}

// SpecFor returns the description of a collection.
func SpecFor(c Collection) (CollectionSpec, bool) {
	s, ok := collectionSpecs[c]
	return s, ok
}

// ItemSchema returns the listing schema of a collection: the category
// field, the Date timestamp, and the collection's designated search fields.
func ItemSchema(c Collection) listview.Schema[*Item] {
	spec := collectionSpecs[c]
	search := make([]func(*Item) (string, bool), 0, len(spec.SearchFields))
	for _, name := range spec.SearchFields {
		search = append(search, func(it *Item) (string, bool) { return it.Field(name) })
	}
	return listview.Schema[*Item]{
		Category: func(it *Item) (string, bool) { return it.Field("category") },
		Timestamp: func(it *Item) (time.Time, bool) {
			if it == nil {
				return time.Time{}, false
			}
			return it.Date, !it.Date.IsZero()
		},
		Search: search,
	}
}
