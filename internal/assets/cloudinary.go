// Package assets habla con el asset store externo (Cloudinary).
// Subir devuelve {url, publicId}; borrar recibe el publicId. No hay
// SDK de Go oficial liviano, pero el API REST son dos POST firmados.
package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/config"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"github.com/google/uuid"
)

// Store es el colaborador que consumen los servicios; en tests se
// reemplaza por un fake.
type Store interface {
	Upload(ctx context.Context, content io.Reader, folder string) (models.ImageRef, error)
	Delete(ctx context.Context, publicID string) error
}

type CloudinaryStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewCloudinaryStore(cfg *config.Config) *CloudinaryStore {
	return &CloudinaryStore{
		cloudName: cfg.CloudinaryCloudName,
		apiKey:    cfg.CloudinaryAPIKey,
		apiSecret: cfg.CloudinaryAPISecret,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// sign calcula la firma SHA1 que exige Cloudinary: los parámetros
// ordenados alfabéticamente como querystring + api_secret.
func (s *CloudinaryStore) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload sube una imagen y devuelve su URL pública + publicId. El
// publicId lo generamos nosotros para poder borrarlo después sin
// depender de la respuesta.
func (s *CloudinaryStore) Upload(ctx context.Context, content io.Reader, folder string) (models.ImageRef, error) {
	publicID := uuid.NewString()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := map[string]string{
		"folder":    folder,
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := s.sign(params)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		_ = mw.WriteField(k, v)
	}
	_ = mw.WriteField("api_key", s.apiKey)
	_ = mw.WriteField("signature", signature)

	fw, err := mw.CreateFormFile("file", publicID)
	if err != nil {
		return models.ImageRef{}, err
	}
	if _, err := io.Copy(fw, content); err != nil {
		return models.ImageRef{}, err
	}
	if err := mw.Close(); err != nil {
		return models.ImageRef{}, err
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return models.ImageRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.http.Do(req)
	if err != nil {
		return models.ImageRef{}, err
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ImageRef{}, err
	}
	if out.Error != nil {
		return models.ImageRef{}, fmt.Errorf("cloudinary upload: %s", out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return models.ImageRef{}, fmt.Errorf("cloudinary upload: status %d", resp.StatusCode)
	}

	return models.ImageRef{URL: out.SecureURL, PublicID: out.PublicID}, nil
}

// Delete destruye un asset por publicId.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := s.sign(params)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", s.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary destroy: status %d", resp.StatusCode)
	}
	return nil
}
