// Package client es el cliente Go del API de ArticleSphere. Maneja la
// sesión por cookies y recupera transparente la expiración del access
// token: un único refresh en vuelo para todo el proceso, los requests
// que chocan con el 401 esperan ese refresh y se reintentan una sola
// vez.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/models"
)

// APIError es el sobre {success:false, message} del servidor.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	// coordinador de refresh: a lo sumo un refresh en vuelo; el resto
	// espera su resultado en vez de disparar refreshes duplicados
	mu         sync.Mutex
	refreshing bool
	waiters    []chan error

	userMu sync.Mutex
	user   *models.UserDoc

	// se dispara cuando el refresh falla: la sesión murió y hay que
	// volver al login (análogo del redirect del SPA)
	OnSessionExpired func()
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ================== auth ==================

type registerRequest struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	DOB         string   `json:"dob"`
	Password    string   `json:"password"`
	Preferences []string `json:"preferences"`
}

type userEnvelope struct {
	Success bool            `json:"success"`
	User    *models.UserDoc `json:"user"`
}

func (c *Client) Register(ctx context.Context, firstName, lastName, email, phone, dob, password string, preferences []string) (*models.UserDoc, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/register", registerRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Phone:       phone,
		DOB:         dob,
		Password:    password,
		Preferences: preferences,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login con email o teléfono. Las cookies de sesión quedan en el jar.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.UserDoc, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.userMu.Lock()
	c.user = out.User
	c.userMu.Unlock()
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.clearSession()
	return err
}

// CurrentUser devuelve el usuario logueado (nil si no hay sesión).
func (c *Client) CurrentUser() *models.UserDoc {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	return c.user
}

// ================== articles ==================

type articleEnvelope struct {
	Success bool                `json:"success"`
	Article *models.ArticleView `json:"article"`
}

// FeedResponse es la página de feed que devuelve GET /api/articles.
type FeedResponse struct {
	Success     bool                 `json:"success"`
	Results     int                  `json:"results"`
	Total       int64                `json:"total"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int                  `json:"totalPages"`
	Articles    []models.ArticleView `json:"articles"`
}

func (c *Client) GetFeed(ctx context.Context, page, limit int) (*FeedResponse, error) {
	var out FeedResponse
	path := fmt.Sprintf("/api/articles?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetArticle(ctx context.Context, id string) (*models.ArticleView, error) {
	var out articleEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/articles/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.Article, nil
}

func (c *Client) LikeArticle(ctx context.Context, id string) (*models.ArticleView, error) {
	return c.react(ctx, id, "like")
}

func (c *Client) DislikeArticle(ctx context.Context, id string) (*models.ArticleView, error) {
	return c.react(ctx, id, "dislike")
}

func (c *Client) BlockArticle(ctx context.Context, id string) (*models.ArticleView, error) {
	return c.react(ctx, id, "block")
}

func (c *Client) react(ctx context.Context, id, action string) (*models.ArticleView, error) {
	var out articleEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/articles/"+id+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return out.Article, nil
}

// ================== transporte ==================

// do manda el request y, si la respuesta es 401, espera el refresh
// (o lo dispara) y reintenta exactamente una vez.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	status, data, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && path != "/api/auth/refresh" {
		if err := c.awaitRefresh(ctx); err != nil {
			return err
		}
		// un solo reintento; si vuelve a fallar el error se propaga
		status, data, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return &APIError{Status: status, Message: apiMessage(data)}
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// awaitRefresh serializa los refresh: el primero que llega lo dispara,
// los demás se encolan y reciben el mismo resultado.
func (c *Client) awaitRefresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.refresh(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}

	if err != nil {
		// la sesión murió: limpiar credenciales y forzar el login
		c.clearSession()
		if c.OnSessionExpired != nil {
			c.OnSessionExpired()
		}
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	status, data, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Status: status, Message: apiMessage(data)}
	}
	return nil
}

func (c *Client) clearSession() {
	c.userMu.Lock()
	c.user = nil
	c.userMu.Unlock()
	if jar, err := cookiejar.New(nil); err == nil {
		c.http.Jar = jar
	}
}

func apiMessage(data []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return string(data)
}
