// Package api is the REST transport of the feed service: the wire types
// shared with the fixture server and a rate-limited client.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/abelbrown/moments/internal/model"
)

// Query parameter names of paged endpoints.
const (
	ParamCursorCreatedAt = "cursor_created_at"
	ParamCursorID        = "cursor_id"
	ParamSize            = "size"
)

// FeedResponse is one page of slides.
type FeedResponse struct {
	Items               model.SlideList `json:"items"`
	HasNext             bool            `json:"hasNext"`
	NextCursorCreatedAt *time.Time      `json:"nextCursorCreatedAt,omitempty"`
	NextCursorID        string          `json:"nextCursorId,omitempty"`
}

// MomentsResponse is one page of a story's moments.
type MomentsResponse struct {
	Items               []model.Moment `json:"items"`
	HasNext             bool           `json:"hasNext"`
	NextCursorCreatedAt *time.Time     `json:"nextCursorCreatedAt,omitempty"`
	NextCursorID        string         `json:"nextCursorId,omitempty"`
}

// ReactionRequest adds one reaction.
type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// NewFeedResponse encodes a page of slides.
func NewFeedResponse(p model.Page[model.Slide]) FeedResponse {
	r := FeedResponse{Items: model.SlideList(p.Items), HasNext: p.HasNext}
	if r.Items == nil {
		r.Items = model.SlideList{}
	}
	r.NextCursorCreatedAt, r.NextCursorID = cursorFields(p.Next)
	return r
}

// Page decodes the response.
func (r FeedResponse) Page() model.Page[model.Slide] {
	return model.Page[model.Slide]{
		Items:   []model.Slide(r.Items),
		HasNext: r.HasNext,
		Next:    cursorOf(r.NextCursorCreatedAt, r.NextCursorID),
	}
}

// NewMomentsResponse encodes a page of moments.
func NewMomentsResponse(p model.Page[model.Moment]) MomentsResponse {
	r := MomentsResponse{Items: p.Items, HasNext: p.HasNext}
	if r.Items == nil {
		r.Items = []model.Moment{}
	}
	r.NextCursorCreatedAt, r.NextCursorID = cursorFields(p.Next)
	return r
}

// Page decodes the response.
func (r MomentsResponse) Page() model.Page[model.Moment] {
	return model.Page[model.Moment]{
		Items:   r.Items,
		HasNext: r.HasNext,
		Next:    cursorOf(r.NextCursorCreatedAt, r.NextCursorID),
	}
}

func cursorFields(c model.Cursor) (*time.Time, string) {
	if c.IsZero() {
		return nil, ""
	}
	t := c.CreatedAt
	return &t, c.ID
}

func cursorOf(t *time.Time, id string) model.Cursor {
	c := model.Cursor{ID: id}
	if t != nil {
		c.CreatedAt = *t
	}
	return c
}

// CursorParams encodes a cursor and page size as query parameters. The zero
// cursor encodes to no cursor parameters.
func CursorParams(c model.Cursor, size int) map[string]string {
	params := map[string]string{ParamSize: strconv.Itoa(size)}
	if !c.IsZero() {
		params[ParamCursorCreatedAt] = c.CreatedAt.UTC().Format(time.RFC3339Nano)
		params[ParamCursorID] = c.ID
	}
	return params
}

// ParseCursorParams decodes query parameters written by CursorParams.
// A missing size yields defaultSize; sizes are capped at maxSize.
func ParseCursorParams(q url.Values, defaultSize, maxSize int) (model.Cursor, int, error) {
	var c model.Cursor
	if s := q.Get(ParamCursorCreatedAt); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return model.Cursor{}, 0, fmt.Errorf("invalid %s: %w", ParamCursorCreatedAt, err)
		}
		c.CreatedAt = t
	}
	c.ID = q.Get(ParamCursorID)
	if c.CreatedAt.IsZero() != (c.ID == "") {
		return model.Cursor{}, 0, fmt.Errorf("%s and %s must be given together", ParamCursorCreatedAt, ParamCursorID)
	}

	size := defaultSize
	if s := q.Get(ParamSize); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return model.Cursor{}, 0, fmt.Errorf("invalid %s %q", ParamSize, s)
		}
		size = n
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return c, size, nil
}
