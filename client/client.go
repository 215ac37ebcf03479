// Package client is a Go client for the realworld HTTP api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiPrefix = "/api"

// Client talks to the server at Addr. Requests carry Token when it is set.
type Client struct {
	http.Client
	Addr  string
	Token string
}

// WithToken returns a copy of c acting as the holder of token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token

	return &cp
}

// APIError is a failure envelope returned by the server.
type APIError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Detail     []string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, strings.Join(e.Detail, "; "))
}

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Token    string `json:"token"`
}

// UserUpdate leaves nil fields unchanged.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Image    *string `json:"image,omitempty"`
}

type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

type Article struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}

type ArticleList struct {
	Articles      []Article `json:"articles"`
	ArticlesCount int64     `json:"articlesCount"`
}

type NewArticle struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList,omitempty"`
}

// ArticleUpdate leaves nil fields unchanged.
type ArticleUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Body        *string   `json:"body,omitempty"`
	TagList     *[]string `json:"tagList,omitempty"`
}

// ListOptions filters an article listing. Zero values are not sent.
type ListOptions struct {
	Tag       string
	Author    string
	Favorited string
	Offset    int
	Limit     int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Tag != "" {
		q.Set("tag", o.Tag)
	}
	if o.Author != "" {
		q.Set("author", o.Author)
	}
	if o.Favorited != "" {
		q.Set("favorited", o.Favorited)
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}

	return q
}

type Comment struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	Author    Profile   `json:"author"`
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	in := map[string]string{"username": username, "email": email, "password": password}

	return decode[User](ctx, c, http.MethodPost, "/users", nil, in)
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}

	return decode[User](ctx, c, http.MethodPost, "/users/login", nil, in)
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return decode[User](ctx, c, http.MethodGet, "/user", nil, nil)
}

func (c *Client) UpdateUser(ctx context.Context, in UserUpdate) (*User, error) {
	return decode[User](ctx, c, http.MethodPut, "/user", nil, in)
}

func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	return decode[Profile](ctx, c, http.MethodGet, "/profiles/"+url.PathEscape(username), nil, nil)
}

func (c *Client) Follow(ctx context.Context, username string) (*Profile, error) {
	return decode[Profile](ctx, c, http.MethodPost, "/profiles/"+url.PathEscape(username)+"/follow", nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, username string) (*Profile, error) {
	return decode[Profile](ctx, c, http.MethodDelete, "/profiles/"+url.PathEscape(username)+"/follow", nil, nil)
}

func (c *Client) Articles(ctx context.Context, opts ListOptions) (*ArticleList, error) {
	return decode[ArticleList](ctx, c, http.MethodGet, "/articles", opts.query(), nil)
}

func (c *Client) Feed(ctx context.Context, offset, limit int) (*ArticleList, error) {
	return decode[ArticleList](ctx, c, http.MethodGet, "/articles/feed", ListOptions{Offset: offset, Limit: limit}.query(), nil)
}

func (c *Client) Article(ctx context.Context, slug string) (*Article, error) {
	return decode[Article](ctx, c, http.MethodGet, articlePath(slug), nil, nil)
}

func (c *Client) CreateArticle(ctx context.Context, in NewArticle) (*Article, error) {
	return decode[Article](ctx, c, http.MethodPost, "/articles", nil, in)
}

func (c *Client) UpdateArticle(ctx context.Context, slug string, in ArticleUpdate) (*Article, error) {
	return decode[Article](ctx, c, http.MethodPut, articlePath(slug), nil, in)
}

// DeleteArticle returns the article as it was before the delete.
func (c *Client) DeleteArticle(ctx context.Context, slug string) (*Article, error) {
	return decode[Article](ctx, c, http.MethodDelete, articlePath(slug), nil, nil)
}

func (c *Client) Favorite(ctx context.Context, slug string) (*Article, error) {
	return decode[Article](ctx, c, http.MethodPost, articlePath(slug)+"/favorite", nil, nil)
}

func (c *Client) Unfavorite(ctx context.Context, slug string) (*Article, error) {
	return decode[Article](ctx, c, http.MethodDelete, articlePath(slug)+"/favorite", nil, nil)
}

func (c *Client) Comments(ctx context.Context, slug string) ([]Comment, error) {
	out, err := decode[[]Comment](ctx, c, http.MethodGet, articlePath(slug)+"/comments", nil, nil)
	if err != nil {
		return nil, err
	}

	return *out, nil
}

func (c *Client) AddComment(ctx context.Context, slug, body string) (*Comment, error) {
	return decode[Comment](ctx, c, http.MethodPost, articlePath(slug)+"/comments", nil, map[string]string{"body": body})
}

func (c *Client) DeleteComment(ctx context.Context, slug, id string) error {
	return c.call(ctx, http.MethodDelete, articlePath(slug)+"/comments/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Tags(ctx context.Context) ([]string, error) {
	out, err := decode[[]string](ctx, c, http.MethodGet, "/tags", nil, nil)
	if err != nil {
		return nil, err
	}

	return *out, nil
}

func decode[T any](ctx context.Context, c *Client, method, path string, query url.Values, in interface{}) (*T, error) {
	out := new(T)
	if err := c.call(ctx, method, path, query, in, out); err != nil {
		return nil, err
	}

	return out, nil
}

func articlePath(slug string) string {
	return "/articles/" + url.PathEscape(slug)
}

// call sends in as JSON and decodes the data of the success envelope into
// out. A failure envelope comes back as *APIError.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	u := c.Addr + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.StatusCode == 0 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Detail: []string{string(raw)}}
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return json.Unmarshal(envelope.Data, out)
}
