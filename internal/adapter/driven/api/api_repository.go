package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every API call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIRepositoryImpl implementa o MetricsAPIRepository sobre HTTP/JSON.
type APIRepositoryImpl struct {
	baseURL string
	client  *http.Client
}

// NewAPIRepository cria uma nova implementação do MetricsAPIRepository.
// baseURL is the server root; the /api prefix is added per call.
func NewAPIRepository(baseURL string, timeout time.Duration) repository.MetricsAPIRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIRepositoryImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// errorBody is the error envelope used by the API.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Login autentica o usuário e retorna o token de acesso.
func (r *APIRepositoryImpl) Login(ctx context.Context, email, password string) (entity.LoginResult, error) {
	var out entity.LoginResult
	err := r.do(ctx, http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return entity.LoginResult{}, err
	}
	if out.AccessToken == "" {
		return entity.LoginResult{}, fmt.Errorf("login response did not include an access token")
	}
	return out, nil
}

// CurrentUser resolve o usuário dono do token.
func (r *APIRepositoryImpl) CurrentUser(ctx context.Context, token string) (entity.User, error) {
	var out entity.User
	if err := r.do(ctx, http.MethodGet, "/api/me", token, nil, &out); err != nil {
		return entity.User{}, err
	}
	return out, nil
}

// QueryMetrics envia o estado da consulta e retorna a página de métricas.
func (r *APIRepositoryImpl) QueryMetrics(ctx context.Context, token string, query entity.QueryState) (entity.PageResult, error) {
	var out entity.PageResult
	if err := r.do(ctx, http.MethodPost, "/api/metrics", token, query.Request(), &out); err != nil {
		return entity.PageResult{}, err
	}
	return out.Normalize(query), nil
}

func (r *APIRepositoryImpl) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("error calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, errorDetail(raw), requestID)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("error decoding %s response: %w", path, err)
	}
	return nil
}

// errorDetail extracts {"detail": "..."}. Structured details are returned as raw JSON.
func errorDetail(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	return string(eb.Detail)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
