package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/flock/internal/events"
	"github.com/alfredjeanlab/flock/internal/listview"
	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

// listQuery holds transport-agnostic listing parameters. Zero values mean
// "not set".
type listQuery struct {
	Category string `json:"category"`
	Date     string `json:"date"`
	Q        string `json:"q"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Sort     string `json:"sort"`
}

// collectionFor resolves a collection name or reports it as not found.
func collectionFor(name string) (model.Collection, error) {
	c := model.Collection(name)
	if !c.IsValid() {
		return "", notFoundError(fmt.Sprintf("unknown collection %q", name))
	}
	return c, nil
}

// listState turns q into a listing state. Filters are applied before the
// page so the page survives the resets the filter setters perform.
func (s *Server) listState(q listQuery) (listview.State, error) {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = s.DefaultPerPage
	}
	if s.MaxPerPage > 0 && perPage > s.MaxPerPage {
		perPage = s.MaxPerPage
	}

	st := listview.NewState(perPage)
	st.SetCategory(q.Category)
	st.SetText(q.Q)
	if q.Date != "" {
		d, err := model.ParseDay(q.Date)
		if err != nil {
			return listview.State{}, inputError(fmt.Sprintf("invalid date %q: want YYYY-MM-DD or RFC 3339", q.Date))
		}
		st.SetDate(d)
	}
	if q.Page > 0 {
		st.SetPage(q.Page)
	}
	return st, nil
}

// listItems returns one page of a collection filtered by q.
func (s *Server) listItems(ctx context.Context, collection string, q listQuery) (listview.Page[*model.Item], error) {
	c, err := collectionFor(collection)
	if err != nil {
		return listview.Page[*model.Item]{}, err
	}
	st, err := s.listState(q)
	if err != nil {
		return listview.Page[*model.Item]{}, err
	}
	lister := listview.Lister[*model.Item]{
		Source: store.CollectionSource{Store: s.store, Collection: c, Sort: q.Sort},
		Schema: model.ItemSchema(c),
	}
	page, err := lister.List(ctx, st)
	if err != nil {
		return listview.Page[*model.Item]{}, fmt.Errorf("list %s: %w", c, err)
	}
	return page, nil
}

// getItem returns an item with its comments.
func (s *Server) getItem(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, inputError("id is required")
	}
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

// createItemInput holds transport-agnostic parameters for creating an item.
type createItemInput struct {
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Author    string          `json:"author"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	CreatedBy string          `json:"created_by"`
	Fields    json.RawMessage `json:"fields"`
}

// createItem validates input, persists a new item in the collection and
// publishes an ItemCreated event. The listing date defaults to now.
func (s *Server) createItem(ctx context.Context, collection string, in createItemInput) (*model.Item, error) {
	c, err := collectionFor(collection)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &model.Item{
		Collection: c,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Author:     in.Author,
		Category:   strings.TrimSpace(in.Category),
		Date:       now,
		CreatedAt:  now,
		CreatedBy:  in.CreatedBy,
		UpdatedAt:  now,
	}
	if in.Date != "" {
		d, err := model.ParseDay(in.Date)
		if err != nil {
			return nil, inputError(fmt.Sprintf("invalid date %q", in.Date))
		}
		item.Date = d
	}
	if len(in.Fields) > 0 && string(in.Fields) != "null" {
		item.Fields = in.Fields
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		src := store.CollectionSource{Store: tx, Collection: c}
		if err := src.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicItemCreated, item.ID, item.CreatedBy, events.ItemCreated{Item: item})
	return item, nil
}

// validateItem runs the item and per-collection field checks, reporting
// failures as inputError.
func validateItem(item *model.Item) error {
	if err := model.ValidateItem(item); err != nil {
		return inputError("invalid item: " + err.Error())
	}
	spec, _ := model.SpecFor(item.Collection)
	if err := model.ValidateFields(item.Fields, spec.Fields); err != nil {
		return inputError("invalid fields: " + err.Error())
	}
	return nil
}

// updateItemInput holds transport-agnostic parameters for updating an item.
// Pointer fields indicate optionality: nil means "don't change".
type updateItemInput struct {
	Title    *string         `json:"title,omitempty"`
	Content  *string         `json:"content,omitempty"`
	Author   *string         `json:"author,omitempty"`
	Category *string         `json:"category,omitempty"`
	Date     *string         `json:"date,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"` // merged into existing fields; null values remove keys
}

// updateItem applies partial updates to an existing item, persists them,
// and publishes an ItemUpdated event.
func (s *Server) updateItem(ctx context.Context, id string, in updateItemInput) (*model.Item, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)

	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
		changes["title"] = item.Title
	}
	if in.Content != nil {
		item.Content = *in.Content
		changes["content"] = item.Content
	}
	if in.Author != nil {
		item.Author = *in.Author
		changes["author"] = item.Author
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
		changes["category"] = item.Category
	}
	if in.Date != nil {
		d, err := model.ParseDay(*in.Date)
		if err != nil {
			return nil, inputError(fmt.Sprintf("invalid date %q", *in.Date))
		}
		item.Date = d
		changes["date"] = item.Date
	}
	if len(in.Fields) > 0 && string(in.Fields) != "null" {
		merged, err := mergeFields(item.Fields, in.Fields)
		if err != nil {
			return nil, err
		}
		item.Fields = merged
		changes["fields"] = item.Fields
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	src := store.CollectionSource{Store: s.store, Collection: item.Collection}
	if err := src.Update(ctx, item); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicItemUpdated, item.ID, "", events.ItemUpdated{
		Item:    item,
		Changes: changes,
	})
	return item, nil
}

// mergeFields applies patch to existing with JSON merge-patch semantics at
// the top level: keys in patch overwrite, null values delete.
func mergeFields(existing, patch json.RawMessage) (json.RawMessage, error) {
	merged := make(map[string]any)
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &merged)
	}
	var p map[string]any
	if err := json.Unmarshal(patch, &p); err != nil {
		return nil, inputError("fields must be a JSON object")
	}
	for k, v := range p {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil, nil
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to merge fields: %w", err)
	}
	return out, nil
}

// deleteItem removes an item and publishes an ItemDeleted event.
func (s *Server) deleteItem(ctx context.Context, id string) error {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.recordAndPublish(ctx, events.TopicItemDeleted, id, "", events.ItemDeleted{
		ItemID:     id,
		Collection: item.Collection,
	})
	return nil
}

// addCommentInput holds transport-agnostic parameters for commenting.
type addCommentInput struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// addComment attaches a comment to an existing item.
func (s *Server) addComment(ctx context.Context, itemID string, in addCommentInput) (*model.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, inputError("text is required")
	}
	if _, err := s.getItem(ctx, itemID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ItemID:    itemID,
		Author:    in.Author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicCommentAdded, itemID, comment.Author, events.CommentAdded{Comment: comment})
	return comment, nil
}

// statsResponse summarizes item counts.
type statsResponse struct {
	Collections map[model.Collection]int `json:"collections"`
	TotalItems  int                      `json:"total_items"`
}

// stats counts items per collection. Every known collection is present,
// including empty ones.
func (s *Server) stats(ctx context.Context) (*statsResponse, error) {
	counts, err := s.store.CountByCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	resp := &statsResponse{Collections: make(map[model.Collection]int, len(model.Collections))}
	for _, c := range model.Collections {
		resp.Collections[c] = counts[c]
		resp.TotalItems += counts[c]
	}
	return resp, nil
}
