// Package api is the client for the remote storefront REST API. All
// persistence and business rules live behind it; this side only makes
// fallible, single-shot, non-retrying round trips.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Boutique/internal/catalog"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("api unavailable")
	ErrBadStatus    = errors.New("api bad status")
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token supplies the admin bearer token, if a session is active.
	// May be nil.
	Token func() string
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.getJSON(ctx, "/products", &out)
	return out, err
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.getJSON(ctx, "/products/category/"+url.PathEscape(category), &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	err := c.getJSON(ctx, "/products/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, "")
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

// ImageFile is one uploaded image part of a product form.
type ImageFile struct {
	Filename string
	Data     []byte
}

// ProductForm carries the multipart fields of the add/edit product
// forms. Price stays a string: the form value is passed through and
// the API owns validation.
type ProductForm struct {
	Name        string
	Description string
	Category    string
	Price       string
	Size        string
	Images      []ImageFile
}

func (c *Client) CreateProduct(ctx context.Context, form ProductForm) (catalog.Product, error) {
	return c.sendProductForm(ctx, http.MethodPost, "/products", form)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, form ProductForm) (catalog.Product, error) {
	return c.sendProductForm(ctx, http.MethodPut, "/products/"+url.PathEscape(id), form)
}

func (c *Client) sendProductForm(ctx context.Context, method, path string, form ProductForm) (catalog.Product, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"category":    form.Category,
		"price":       form.Price,
		"size":        form.Size,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return catalog.Product{}, err
		}
	}
	for _, img := range form.Images {
		fw, err := mw.CreateFormFile("images", img.Filename)
		if err != nil {
			return catalog.Product{}, err
		}
		if _, err := fw.Write(img.Data); err != nil {
			return catalog.Product{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return catalog.Product{}, err
	}

	req, err := c.newRequest(ctx, method, path, &buf, mw.FormDataContentType())
	if err != nil {
		return catalog.Product{}, err
	}

	var out catalog.Product
	if err := c.doJSON(req, &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw), "application/json")
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return asUnavailable(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doDiscard(req *http.Request) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return asUnavailable(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}
}

func asUnavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
